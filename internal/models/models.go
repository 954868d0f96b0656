// Package models defines the core data structures for CoursePilot.
//
// It includes the closed set of conversational action kinds, the structures
// exchanged with the intent extractor and the action engine, and the API
// response envelope shared across modules.
package models

import (
	"errors"
)

// ActionKind identifies an operation the conversational engine can execute.
type ActionKind string

const (
	// ActionInviteStudent invites a student to a course by email.
	ActionInviteStudent ActionKind = "invite_student"
	// ActionRemoveStudent removes a student from a course.
	ActionRemoveStudent ActionKind = "remove_student"
	// ActionCreateAnnouncement posts an announcement to a course.
	ActionCreateAnnouncement ActionKind = "create_announcement"
	// ActionCreateAssignment creates an assignment with a due date.
	ActionCreateAssignment ActionKind = "create_assignment"
)

// Parameter names shared by the registry, the extractor, and the executor.
const (
	ParamEmail      = "email"
	ParamCourseName = "course_name"
	ParamTitle      = "title"
	ParamBody       = "body"
	ParamDueDate    = "due_date"
	ParamDueTime    = "due_time"
)

// requiredParameters declares, per action kind, the ordered list of parameters
// that must be collected before the action can execute. Order matters: the
// prompt generator asks for parameters in this order.
var requiredParameters = map[ActionKind][]string{
	ActionInviteStudent:      {ParamEmail, ParamCourseName},
	ActionRemoveStudent:      {ParamEmail, ParamCourseName},
	ActionCreateAnnouncement: {ParamCourseName, ParamTitle, ParamBody},
	ActionCreateAssignment:   {ParamCourseName, ParamTitle, ParamDueDate, ParamDueTime},
}

// ParameterValueType describes how a parameter value is interpreted.
type ParameterValueType string

const (
	// ParameterTypeText is a free-form string value.
	ParameterTypeText ParameterValueType = "text"
	// ParameterTypeDate is a calendar date, resolved to YYYY-MM-DD.
	ParameterTypeDate ParameterValueType = "date"
	// ParameterTypeTime is a time of day, resolved to 24-hour HH:MM.
	ParameterTypeTime ParameterValueType = "time"
)

// parameterTypes maps parameter names to their value type. Parameters not
// listed here are plain text.
var parameterTypes = map[string]ParameterValueType{
	ParamDueDate: ParameterTypeDate,
	ParamDueTime: ParameterTypeTime,
}

// Error variables for better error handling and testability
var (
	ErrUnknownActionKind    = errors.New("unknown action kind")
	ErrNoActiveAction       = errors.New("no active action for conversation")
	ErrActionIncomplete     = errors.New("action is missing required parameters")
	ErrUnresolvedExpression = errors.New("expression could not be resolved")
)

// IsValidActionKind checks if the given action kind is part of the closed set.
func IsValidActionKind(kind ActionKind) bool {
	_, ok := requiredParameters[kind]
	return ok
}

// RequiredParameters returns the declared ordered required-parameter list for
// an action kind. Returns ErrUnknownActionKind for kinds outside the set.
func RequiredParameters(kind ActionKind) ([]string, error) {
	required, ok := requiredParameters[kind]
	if !ok {
		return nil, ErrUnknownActionKind
	}
	// Copy so callers cannot mutate the registry.
	out := make([]string, len(required))
	copy(out, required)
	return out, nil
}

// ParameterType returns how values for the named parameter are interpreted.
func ParameterType(name string) ParameterValueType {
	if t, ok := parameterTypes[name]; ok {
		return t
	}
	return ParameterTypeText
}

// MissingParameters computes the required parameters of kind not present in
// collected, preserving the declared order. This is the single source of truth
// for the "missing" derivation; stored state never tracks it independently.
func MissingParameters(kind ActionKind, collected map[string]string) ([]string, error) {
	required, ok := requiredParameters[kind]
	if !ok {
		return nil, ErrUnknownActionKind
	}
	var missing []string
	for _, name := range required {
		if _, present := collected[name]; !present {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// CorrectionCandidate is the output of the intent/entity extractor for one
// incoming message. Action may be empty, meaning no new intent was detected
// and the parameters are a bare answer to the previous prompt.
type CorrectionCandidate struct {
	Action            ActionKind        `json:"action,omitempty"`
	Parameters        map[string]string `json:"parameters,omitempty"`
	CorrectionMarker  bool              `json:"correction_marker,omitempty"`  // explicit correction cue detected
	NewIntentDetected bool              `json:"new_intent_detected,omitempty"` // extractor is confident this is a fresh request
}

// Decision classifies an incoming candidate against the stored ongoing action.
type Decision string

const (
	// DecisionNewAction replaces any in-flight action with a fresh one.
	DecisionNewAction Decision = "new_action"
	// DecisionContinuation fills still-missing parameters only.
	DecisionContinuation Decision = "continuation"
	// DecisionCorrection overwrites at least one already-collected parameter.
	DecisionCorrection Decision = "correction"
)

// TurnResult is the outcome of one engine turn. Ready=true carries the full
// parameter map for execution and means the stored entry has been cleared;
// Ready=false carries the next prompt for the user.
type TurnResult struct {
	ConversationID string            `json:"conversation_id"`
	Ready          bool              `json:"ready"`
	Action         ActionKind        `json:"action,omitempty"`
	Parameters     map[string]string `json:"parameters,omitempty"`
	Prompt         string            `json:"prompt,omitempty"`
	Decision       Decision          `json:"decision,omitempty"`
	Notice         string            `json:"notice,omitempty"` // user-facing confirmation text (corrections, cancellations)
}
