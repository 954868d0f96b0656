package engine

import (
	"log/slog"

	"github.com/CampusLoop/CoursePilot/internal/models"
)

// Classify decides how an extracted candidate relates to the stored ongoing
// action for a conversation:
//
//   - NewAction: no action is in flight, or the candidate declares a different
//     action kind with an explicit new-intent signal from the extractor. The
//     in-flight action, if any, is superseded.
//   - Continuation: the candidate only fills parameters that are still missing.
//   - Correction: the candidate re-supplies an already-collected parameter with
//     a different value, or carries an explicit correction marker alongside
//     parameter values.
//
// Tie-break: a candidate touching both an already-collected key and a
// still-missing key in the same turn is a Correction (the stronger signal);
// all supplied values are merged in one call either way.
//
// A candidate declaring the same kind as the stored action is never a
// NewAction: same action, just more or updated detail. A different kind
// without the explicit new-intent signal is also not enough to abandon the
// in-flight action; the classification is best-effort and must degrade to
// asking the user rather than silently discarding their progress.
func Classify(candidate models.CorrectionCandidate, ongoing *models.OngoingAction) models.Decision {
	if ongoing == nil {
		return models.DecisionNewAction
	}

	if candidate.Action != "" && candidate.Action != ongoing.Action && candidate.NewIntentDetected {
		slog.Debug("Classify: topic change detected", "stored", ongoing.Action, "candidate", candidate.Action)
		return models.DecisionNewAction
	}

	overwrites := false
	for key, value := range candidate.Parameters {
		if stored, collected := ongoing.CollectedParameters[key]; collected && stored != value {
			overwrites = true
			break
		}
	}

	if overwrites || (candidate.CorrectionMarker && len(candidate.Parameters) > 0) {
		return models.DecisionCorrection
	}
	return models.DecisionContinuation
}
