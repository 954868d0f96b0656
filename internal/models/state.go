// Package models defines conversation state structures for the action engine.
package models

import "time"

// OngoingAction represents the in-flight action for one conversation: the
// action under negotiation, the parameters collected so far, and the
// parameters still missing.
//
// Invariant: MissingParameters always equals the action's declared required
// list minus the keys of CollectedParameters, in declared order. It is
// recomputed on every mutation via MissingParameters(), never tracked
// independently.
type OngoingAction struct {
	ConversationID      string            `json:"conversation_id"`
	Action              ActionKind        `json:"action"`
	CollectedParameters map[string]string `json:"collected_parameters"`
	MissingParameters   []string          `json:"missing_parameters"`
	CreatedAt           time.Time         `json:"created_at"`
	LastUpdatedAt       time.Time         `json:"last_updated_at"`
}

// IsComplete reports whether all required parameters have been collected.
func (a *OngoingAction) IsComplete() bool {
	return len(a.MissingParameters) == 0
}
