package extractor

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/CampusLoop/CoursePilot/internal/models"
)

// actionKeywords maps lower-case trigger words to action kinds. Multiple
// keywords can map to the same kind. Matching is deterministic; no LLM is
// involved in control decisions.
var actionKeywords = map[string]models.ActionKind{
	"invite": models.ActionInviteStudent,
	"add":    models.ActionInviteStudent,
	"enroll": models.ActionInviteStudent,

	"remove":   models.ActionRemoveStudent,
	"kick":     models.ActionRemoveStudent,
	"unenroll": models.ActionRemoveStudent,

	"announcement": models.ActionCreateAnnouncement,
	"announce":     models.ActionCreateAnnouncement,

	"assignment": models.ActionCreateAssignment,
	"homework":   models.ActionCreateAssignment,
}

// correctionCues are lexical markers that the user is fixing an earlier value
// rather than supplying a new one. Inherently fuzzy; the engine treats the
// result as best-effort.
var correctionCues = []string{
	"actually",
	"i meant",
	"i mean",
	"sorry",
	"not that",
	"instead",
	"my mistake",
}

var (
	emailRegex     = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	quotedRegex    = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
	courseRegex    = regexp.MustCompile(`(?i)(?:to|in|for|from) (?:class|course) ([a-z0-9][a-z0-9 \-]*?)(?:[.,!?]|$)`)
	dueDateRegex   = regexp.MustCompile(`(?i)\b(today|tomorrow|next week|next (?:sunday|monday|tuesday|wednesday|thursday|friday|saturday)|in \d+ weeks?|end of month|\d{4}-\d{2}-\d{2})\b`)
	dueTimeRegex   = regexp.MustCompile(`(?i)\b(noon|midnight|\d{1,2}(?::\d{2})? ?(?:am|pm))\b`)
	titledRegex    = regexp.MustCompile(`(?i)(?:titled|called|named) (.+?)(?:[.,!?]|$)`)
	wordSplitRegex = regexp.MustCompile(`[^a-z]+`)
)

// KeywordExtractor detects intents and parameters with keyword tables and
// pattern matching. It is the default extractor: cheap, deterministic, and
// good enough for the closed command set.
type KeywordExtractor struct{}

// NewKeywordExtractor creates a KeywordExtractor.
func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{}
}

// Extract implements Extractor.
func (e *KeywordExtractor) Extract(ctx context.Context, message string, hint Hint) (models.CorrectionCandidate, error) {
	text := strings.TrimSpace(message)
	lower := strings.ToLower(text)
	candidate := models.CorrectionCandidate{Parameters: make(map[string]string)}

	for _, cue := range correctionCues {
		if strings.Contains(lower, cue) {
			candidate.CorrectionMarker = true
			break
		}
	}

	for _, word := range wordSplitRegex.Split(lower, -1) {
		if kind, ok := actionKeywords[word]; ok {
			candidate.Action = kind
			candidate.NewIntentDetected = true
			break
		}
	}

	if email := emailRegex.FindString(text); email != "" {
		candidate.Parameters[models.ParamEmail] = email
	}
	if m := courseRegex.FindStringSubmatch(text); m != nil {
		candidate.Parameters[models.ParamCourseName] = strings.TrimSpace(m[1])
	}
	if m := titledRegex.FindStringSubmatch(text); m != nil {
		candidate.Parameters[models.ParamTitle] = strings.Trim(strings.TrimSpace(m[1]), `"'`)
	}
	if m := dueDateRegex.FindStringSubmatch(lower); m != nil {
		candidate.Parameters[models.ParamDueDate] = m[1]
	}
	if m := dueTimeRegex.FindStringSubmatch(lower); m != nil {
		candidate.Parameters[models.ParamDueTime] = m[1]
	}
	// A single quoted phrase with no recognized home doubles as the course
	// name on invite-like actions, or the title otherwise.
	if m := quotedRegex.FindStringSubmatch(text); m != nil {
		quoted := m[1]
		if quoted == "" {
			quoted = m[2]
		}
		if _, has := candidate.Parameters[models.ParamCourseName]; !has &&
			(candidate.Action == models.ActionInviteStudent || candidate.Action == models.ActionRemoveStudent) {
			candidate.Parameters[models.ParamCourseName] = quoted
		} else if _, has := candidate.Parameters[models.ParamTitle]; !has && candidate.Action != "" {
			candidate.Parameters[models.ParamTitle] = quoted
		}
	}

	// A bare answer with no detected intent and nothing extracted is the
	// response to whatever was last asked.
	if !candidate.NewIntentDetected && len(candidate.Parameters) == 0 && hint.NextParameter != "" && text != "" {
		answer := text
		if candidate.CorrectionMarker {
			answer = stripCorrectionCue(text)
		}
		if answer != "" {
			candidate.Parameters[hint.NextParameter] = answer
		}
	}

	slog.Debug("KeywordExtractor.Extract: done",
		"action", candidate.Action,
		"params", len(candidate.Parameters),
		"correction", candidate.CorrectionMarker,
		"new_intent", candidate.NewIntentDetected)
	return candidate, nil
}

// stripCorrectionCue removes a leading correction phrase so "actually, math"
// yields "math" as the answer value.
func stripCorrectionCue(text string) string {
	lower := strings.ToLower(text)
	for _, cue := range correctionCues {
		if idx := strings.Index(lower, cue); idx >= 0 {
			rest := text[idx+len(cue):]
			return strings.Trim(strings.TrimSpace(rest), ",. ")
		}
	}
	return text
}
