// Package extractor turns raw message text into structured action candidates
// for the conversational engine.
//
// Two implementations are provided: a deterministic keyword extractor with no
// external dependencies, and an OpenAI-backed extractor for richer phrasing.
// Both produce the same CorrectionCandidate shape; the engine treats the
// extractor as an opaque collaborator.
package extractor

import (
	"context"

	"github.com/CampusLoop/CoursePilot/internal/models"
)

// Hint carries prior conversation context into extraction so a bare answer
// ("john@gmail.com") can be attributed to the parameter that was just asked
// for.
type Hint struct {
	// OngoingAction is the action currently in flight, if any.
	OngoingAction models.ActionKind
	// NextParameter is the parameter the user was last prompted for.
	NextParameter string
}

// Extractor produces a CorrectionCandidate from one incoming message.
type Extractor interface {
	Extract(ctx context.Context, message string, hint Hint) (models.CorrectionCandidate, error)
}
