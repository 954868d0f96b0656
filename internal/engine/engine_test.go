package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/CampusLoop/CoursePilot/internal/models"
)

func newTestEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	clock := func() time.Time { return time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC) } // a Wednesday
	opts = append([]EngineOption{WithEngineClock(clock)}, opts...)
	return New(NewActionStore(), opts...)
}

func TestHandleTurnFullInviteScenario(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	first, err := e.HandleTurn(ctx, "conv1", models.CorrectionCandidate{
		Action:            models.ActionInviteStudent,
		NewIntentDetected: true,
		Parameters:        map[string]string{models.ParamCourseName: "english"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Ready {
		t.Fatal("turn should not be ready yet")
	}
	if first.Decision != models.DecisionNewAction {
		t.Errorf("decision = %s, want new_action", first.Decision)
	}
	if !strings.Contains(first.Prompt, "email") {
		t.Errorf("prompt should ask for the email, got %q", first.Prompt)
	}

	second, err := e.HandleTurn(ctx, "conv1", models.CorrectionCandidate{
		Parameters: map[string]string{models.ParamEmail: "john@gmail.com"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.Ready {
		t.Fatalf("turn should be ready, prompt=%q", second.Prompt)
	}
	if second.Parameters[models.ParamCourseName] != "english" || second.Parameters[models.ParamEmail] != "john@gmail.com" {
		t.Errorf("unexpected parameters: %v", second.Parameters)
	}
	if _, ok := e.Store().Get("conv1"); ok {
		t.Error("entry should be cleared once ready")
	}
}

func TestHandleTurnCorrectionNotice(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.HandleTurn(ctx, "conv1", models.CorrectionCandidate{
		Action:            models.ActionInviteStudent,
		NewIntentDetected: true,
		Parameters:        map[string]string{models.ParamEmail: "a@x.com"},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Tie-break turn: corrected email plus the missing course name.
	result, err := e.HandleTurn(ctx, "conv1", models.CorrectionCandidate{
		CorrectionMarker: true,
		Parameters: map[string]string{
			models.ParamEmail:      "b@x.com",
			models.ParamCourseName: "english",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Decision != models.DecisionCorrection {
		t.Errorf("decision = %s, want correction", result.Decision)
	}
	if !strings.Contains(result.Notice, "b@x.com") || !strings.Contains(result.Notice, "a@x.com") {
		t.Errorf("notice should confirm the overwrite, got %q", result.Notice)
	}
	if !result.Ready {
		t.Fatal("both values merged in one call should complete the action")
	}
	if result.Parameters[models.ParamEmail] != "b@x.com" {
		t.Errorf("email = %q, want corrected value", result.Parameters[models.ParamEmail])
	}
}

func TestHandleTurnTopicChangeSupersedes(t *testing.T) {
	e := newTestEngine(t, WithCancelNotice(true))
	ctx := context.Background()

	if _, err := e.HandleTurn(ctx, "conv1", models.CorrectionCandidate{
		Action:            models.ActionInviteStudent,
		NewIntentDetected: true,
		Parameters:        map[string]string{models.ParamEmail: "a@x.com"},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := e.HandleTurn(ctx, "conv1", models.CorrectionCandidate{
		Action:            models.ActionCreateAnnouncement,
		NewIntentDetected: true,
		Parameters:        map[string]string{models.ParamCourseName: "math"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Decision != models.DecisionNewAction {
		t.Errorf("decision = %s, want new_action", result.Decision)
	}
	if result.Notice != PromptCancelledPrevious {
		t.Errorf("notice = %q, want cancellation notice", result.Notice)
	}
	action, ok := e.Store().Get("conv1")
	if !ok || action.Action != models.ActionCreateAnnouncement {
		t.Fatalf("store should hold only the new action, got %+v", action)
	}
	if _, leaked := action.CollectedParameters[models.ParamEmail]; leaked {
		t.Error("superseded parameters leaked")
	}
}

func TestHandleTurnUnknownKind(t *testing.T) {
	e := newTestEngine(t)
	result, err := e.HandleTurn(context.Background(), "conv1", models.CorrectionCandidate{
		Action:            models.ActionKind("order_pizza"),
		NewIntentDetected: true,
	})
	if err != nil {
		t.Fatalf("the turn must not fail: %v", err)
	}
	if result.Ready {
		t.Error("unknown kind cannot be ready")
	}
	if result.Prompt != PromptNotUnderstood {
		t.Errorf("prompt = %q, want not-understood prompt", result.Prompt)
	}
	if _, ok := e.Store().Get("conv1"); ok {
		t.Error("nothing should be stored for an unknown kind")
	}
}

func TestHandleTurnNoIntentNoOngoing(t *testing.T) {
	e := newTestEngine(t)
	result, err := e.HandleTurn(context.Background(), "conv1", models.CorrectionCandidate{
		Parameters: map[string]string{models.ParamEmail: "a@x.com"},
	})
	if err != nil {
		t.Fatalf("the turn must not fail: %v", err)
	}
	if result.Prompt != PromptNotUnderstood {
		t.Errorf("prompt = %q, want not-understood prompt", result.Prompt)
	}
}

func TestHandleTurnResolvesDates(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	result, err := e.HandleTurn(ctx, "conv1", models.CorrectionCandidate{
		Action:            models.ActionCreateAssignment,
		NewIntentDetected: true,
		Parameters: map[string]string{
			models.ParamCourseName: "math",
			models.ParamTitle:      "Homework 3",
			models.ParamDueDate:    "next friday",
			models.ParamDueTime:    "5 pm",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Ready {
		t.Fatalf("expected ready, prompt=%q", result.Prompt)
	}
	if result.Parameters[models.ParamDueDate] != "2025-01-03" {
		t.Errorf("due_date = %q, want 2025-01-03", result.Parameters[models.ParamDueDate])
	}
	if result.Parameters[models.ParamDueTime] != "17:00" {
		t.Errorf("due_time = %q, want 17:00", result.Parameters[models.ParamDueTime])
	}
}

func TestHandleTurnUnresolvedDateReprompts(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	result, err := e.HandleTurn(ctx, "conv1", models.CorrectionCandidate{
		Action:            models.ActionCreateAssignment,
		NewIntentDetected: true,
		Parameters: map[string]string{
			models.ParamCourseName: "math",
			models.ParamTitle:      "Homework 3",
			models.ParamDueDate:    "whenever",
			models.ParamDueTime:    "5 pm",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Ready {
		t.Fatal("unresolved date must not complete the action")
	}
	if !strings.Contains(result.Prompt, "due") {
		t.Errorf("prompt should re-ask for the due date, got %q", result.Prompt)
	}
	action, _ := e.Store().Get("conv1")
	if _, present := action.CollectedParameters[models.ParamDueDate]; present {
		t.Error("unresolved value must not be merged")
	}
}

func TestHandleTurnPromptsInDeclaredOrder(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	turns := []struct {
		candidate models.CorrectionCandidate
		askFor    string
	}{
		{models.CorrectionCandidate{Action: models.ActionCreateAnnouncement, NewIntentDetected: true}, "course"},
		{models.CorrectionCandidate{Parameters: map[string]string{models.ParamCourseName: "math"}}, "title"},
		{models.CorrectionCandidate{Parameters: map[string]string{models.ParamTitle: "Exam moved"}}, "say"},
	}
	for i, turn := range turns {
		result, err := e.HandleTurn(ctx, "conv1", turn.candidate)
		if err != nil {
			t.Fatalf("turn %d: unexpected error: %v", i, err)
		}
		if result.Ready {
			t.Fatalf("turn %d: not ready yet", i)
		}
		if !strings.Contains(strings.ToLower(result.Prompt), turn.askFor) {
			t.Errorf("turn %d: prompt %q should mention %q", i, result.Prompt, turn.askFor)
		}
	}
}

func TestCancelAbandonsAction(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.HandleTurn(context.Background(), "conv1", models.CorrectionCandidate{
		Action:            models.ActionInviteStudent,
		NewIntentDetected: true,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e.Cancel("conv1")
	if _, ok := e.Store().Get("conv1"); ok {
		t.Error("cancel should clear the entry")
	}
}
