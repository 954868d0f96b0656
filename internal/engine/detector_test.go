package engine

import (
	"testing"

	"github.com/CampusLoop/CoursePilot/internal/models"
)

func ongoingInvite(t *testing.T, collected map[string]string) *models.OngoingAction {
	t.Helper()
	missing, err := models.MissingParameters(models.ActionInviteStudent, collected)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return &models.OngoingAction{
		ConversationID:      "conv1",
		Action:              models.ActionInviteStudent,
		CollectedParameters: collected,
		MissingParameters:   missing,
	}
}

func TestClassifyNoOngoingIsNewAction(t *testing.T) {
	candidate := models.CorrectionCandidate{Action: models.ActionInviteStudent, NewIntentDetected: true}
	if got := Classify(candidate, nil); got != models.DecisionNewAction {
		t.Errorf("decision = %s, want new_action", got)
	}
}

func TestClassifyContinuationFillsMissingOnly(t *testing.T) {
	ongoing := ongoingInvite(t, map[string]string{models.ParamCourseName: "english"})
	candidate := models.CorrectionCandidate{Parameters: map[string]string{models.ParamEmail: "john@gmail.com"}}
	if got := Classify(candidate, ongoing); got != models.DecisionContinuation {
		t.Errorf("decision = %s, want continuation", got)
	}
}

func TestClassifyCorrectionOnOverwrite(t *testing.T) {
	ongoing := ongoingInvite(t, map[string]string{models.ParamEmail: "a@x.com"})
	candidate := models.CorrectionCandidate{Parameters: map[string]string{models.ParamEmail: "b@x.com"}}
	if got := Classify(candidate, ongoing); got != models.DecisionCorrection {
		t.Errorf("decision = %s, want correction", got)
	}
}

func TestClassifyCorrectionOnExplicitMarker(t *testing.T) {
	ongoing := ongoingInvite(t, map[string]string{models.ParamEmail: "a@x.com"})
	candidate := models.CorrectionCandidate{
		Parameters:       map[string]string{models.ParamCourseName: "math"},
		CorrectionMarker: true,
	}
	if got := Classify(candidate, ongoing); got != models.DecisionCorrection {
		t.Errorf("decision = %s, want correction", got)
	}
}

func TestClassifySameValueIsContinuation(t *testing.T) {
	// Re-supplying the identical value carries no correction signal.
	ongoing := ongoingInvite(t, map[string]string{models.ParamEmail: "a@x.com"})
	candidate := models.CorrectionCandidate{Parameters: map[string]string{models.ParamEmail: "a@x.com"}}
	if got := Classify(candidate, ongoing); got != models.DecisionContinuation {
		t.Errorf("decision = %s, want continuation", got)
	}
}

func TestClassifyTieBreakIsCorrection(t *testing.T) {
	// One turn touching both an already-collected key (changed) and a missing
	// key classifies as correction, the stronger signal.
	ongoing := ongoingInvite(t, map[string]string{models.ParamEmail: "a@x.com"})
	candidate := models.CorrectionCandidate{Parameters: map[string]string{
		models.ParamEmail:      "b@x.com",
		models.ParamCourseName: "english",
	}}
	if got := Classify(candidate, ongoing); got != models.DecisionCorrection {
		t.Errorf("decision = %s, want correction", got)
	}
}

func TestClassifyTopicChangeNeedsExplicitSignal(t *testing.T) {
	ongoing := ongoingInvite(t, map[string]string{models.ParamEmail: "a@x.com"})

	flagged := models.CorrectionCandidate{Action: models.ActionCreateAnnouncement, NewIntentDetected: true}
	if got := Classify(flagged, ongoing); got != models.DecisionNewAction {
		t.Errorf("flagged topic change: decision = %s, want new_action", got)
	}

	unflagged := models.CorrectionCandidate{
		Action:     models.ActionCreateAnnouncement,
		Parameters: map[string]string{models.ParamCourseName: "math"},
	}
	if got := Classify(unflagged, ongoing); got == models.DecisionNewAction {
		t.Error("unflagged kind guess should not abandon the in-flight action")
	}
}

func TestClassifySameKindNeverNewAction(t *testing.T) {
	ongoing := ongoingInvite(t, map[string]string{models.ParamEmail: "a@x.com"})
	candidate := models.CorrectionCandidate{
		Action:            models.ActionInviteStudent,
		NewIntentDetected: true,
		Parameters:        map[string]string{models.ParamCourseName: "english"},
	}
	if got := Classify(candidate, ongoing); got != models.DecisionContinuation {
		t.Errorf("decision = %s, want continuation for same-kind detail", got)
	}
}
