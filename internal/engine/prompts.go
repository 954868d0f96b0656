package engine

import (
	"fmt"
	"strings"

	"github.com/CampusLoop/CoursePilot/internal/models"
)

// parameterQuestions maps parameter names to the follow-up question asked when
// that parameter is the next one missing. Parameters without an entry fall
// back to a generic question derived from the name.
var parameterQuestions = map[string]string{
	models.ParamEmail:      "What is the student's email address?",
	models.ParamCourseName: "Which course is this for?",
	models.ParamTitle:      "What should the title be?",
	models.ParamBody:       "What should it say?",
	models.ParamDueDate:    `When is it due? You can say things like "next friday" or "in 2 weeks".`,
	models.ParamDueTime:    `What time is it due? For example "5 pm" or "noon".`,
}

// actionLabels provides the human-readable phrase used when confirming or
// prompting about an action.
var actionLabels = map[models.ActionKind]string{
	models.ActionInviteStudent:      "inviting a student",
	models.ActionRemoveStudent:      "removing a student",
	models.ActionCreateAnnouncement: "creating an announcement",
	models.ActionCreateAssignment:   "creating an assignment",
}

// PromptNotUnderstood is returned when the extractor yields a kind outside the
// declared set, or no intent at all with nothing in flight. The turn never
// fails; the user is simply asked again.
const PromptNotUnderstood = "Sorry, I didn't understand that request. You can ask me to invite a student, create an announcement, or create an assignment."

// PromptCancelledPrevious is prepended when a topic change supersedes an
// in-flight action and cancel notices are enabled.
const PromptCancelledPrevious = "Cancelling your previous request."

// IsComplete reports whether the conversation's stored action has all required
// parameters. A conversation with no stored action is simply not complete;
// this is not an error.
func (s *ActionStore) IsComplete(conversationID string) bool {
	action, ok := s.Get(conversationID)
	return ok && action.IsComplete()
}

// NextPrompt generates the follow-up question for the next missing parameter,
// in the action's declared required order. Never asks for a parameter already
// supplied. Not meaningful once the action is complete; callers must finalize
// instead.
func NextPrompt(action *models.OngoingAction) string {
	if action == nil || action.IsComplete() {
		return ""
	}
	next := action.MissingParameters[0]
	if q, ok := parameterQuestions[next]; ok {
		return q
	}
	return fmt.Sprintf("What is the %s?", strings.ReplaceAll(next, "_", " "))
}

// startPrompt generates the first question after a fresh action start,
// acknowledging the detected action.
func startPrompt(action *models.OngoingAction) string {
	label, ok := actionLabels[action.Action]
	if !ok {
		return NextPrompt(action)
	}
	return fmt.Sprintf("Sure, %s. %s", label, NextPrompt(action))
}

// correctionNotice builds the confirmation text for an overwritten value so
// the caller can surface "using X instead of Y" to the user.
func correctionNotice(key, oldValue, newValue string) string {
	if oldValue == "" || oldValue == newValue {
		return ""
	}
	return fmt.Sprintf("Got it, using %s instead of %s.", newValue, oldValue)
}

// Finalize returns the full collected parameter map for execution by the
// action handler and clears the stored entry. Returns
// models.ErrActionIncomplete if parameters are still missing and
// models.ErrNoActiveAction if nothing is in flight.
func (s *ActionStore) Finalize(conversationID string) (models.ActionKind, map[string]string, error) {
	action, ok := s.Get(conversationID)
	if !ok {
		return "", nil, models.ErrNoActiveAction
	}
	if !action.IsComplete() {
		return "", nil, fmt.Errorf("%w: missing %s", models.ErrActionIncomplete, strings.Join(action.MissingParameters, ", "))
	}
	s.Complete(conversationID)
	return action.Action, action.CollectedParameters, nil
}
