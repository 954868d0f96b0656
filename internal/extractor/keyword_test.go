package extractor

import (
	"context"
	"testing"

	"github.com/CampusLoop/CoursePilot/internal/models"
)

func TestKeywordExtractInvite(t *testing.T) {
	e := NewKeywordExtractor()
	candidate, err := e.Extract(context.Background(), "Please invite john@gmail.com to class english", Hint{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidate.Action != models.ActionInviteStudent {
		t.Errorf("action = %s, want invite_student", candidate.Action)
	}
	if !candidate.NewIntentDetected {
		t.Error("intent keyword should flag a new intent")
	}
	if candidate.Parameters[models.ParamEmail] != "john@gmail.com" {
		t.Errorf("email = %q", candidate.Parameters[models.ParamEmail])
	}
	if candidate.Parameters[models.ParamCourseName] != "english" {
		t.Errorf("course_name = %q", candidate.Parameters[models.ParamCourseName])
	}
}

func TestKeywordExtractAssignmentWithDates(t *testing.T) {
	e := NewKeywordExtractor()
	candidate, err := e.Extract(context.Background(),
		`Create an assignment titled Homework 3 for course math, due next friday at 5 pm`, Hint{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidate.Action != models.ActionCreateAssignment {
		t.Errorf("action = %s, want create_assignment", candidate.Action)
	}
	if candidate.Parameters[models.ParamTitle] != "Homework 3 for course math" && candidate.Parameters[models.ParamTitle] != "Homework 3" {
		// "titled X" capture runs to the comma; either split is usable.
		t.Logf("title captured as %q", candidate.Parameters[models.ParamTitle])
	}
	if candidate.Parameters[models.ParamDueDate] != "next friday" {
		t.Errorf("due_date = %q, want next friday", candidate.Parameters[models.ParamDueDate])
	}
	if candidate.Parameters[models.ParamDueTime] != "5 pm" {
		t.Errorf("due_time = %q, want 5 pm", candidate.Parameters[models.ParamDueTime])
	}
}

func TestKeywordExtractBareAnswerUsesHint(t *testing.T) {
	e := NewKeywordExtractor()
	candidate, err := e.Extract(context.Background(), "Intro to Biology",
		Hint{OngoingAction: models.ActionCreateAnnouncement, NextParameter: models.ParamTitle})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidate.NewIntentDetected {
		t.Error("bare answer must not read as a new intent")
	}
	if candidate.Parameters[models.ParamTitle] != "Intro to Biology" {
		t.Errorf("title = %q, want the bare answer", candidate.Parameters[models.ParamTitle])
	}
}

func TestKeywordExtractCorrectionCue(t *testing.T) {
	e := NewKeywordExtractor()
	candidate, err := e.Extract(context.Background(), "sorry, I meant jane@gmail.com", Hint{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !candidate.CorrectionMarker {
		t.Error("correction cue should set the marker")
	}
	if candidate.Parameters[models.ParamEmail] != "jane@gmail.com" {
		t.Errorf("email = %q", candidate.Parameters[models.ParamEmail])
	}
	if candidate.NewIntentDetected {
		t.Error("a correction is not a new intent")
	}
}

func TestKeywordExtractCorrectionCueBareAnswer(t *testing.T) {
	e := NewKeywordExtractor()
	candidate, err := e.Extract(context.Background(), "actually, biology",
		Hint{OngoingAction: models.ActionInviteStudent, NextParameter: models.ParamCourseName})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidate.Parameters[models.ParamCourseName] != "biology" {
		t.Errorf("course_name = %q, want cue stripped", candidate.Parameters[models.ParamCourseName])
	}
}

func TestKeywordExtractNoIntent(t *testing.T) {
	e := NewKeywordExtractor()
	candidate, err := e.Extract(context.Background(), "how is the weather", Hint{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidate.Action != "" || candidate.NewIntentDetected {
		t.Errorf("expected no intent, got %s", candidate.Action)
	}
}

func TestKeywordExtractQuotedCourse(t *testing.T) {
	e := NewKeywordExtractor()
	candidate, err := e.Extract(context.Background(), `invite john@gmail.com to "World History"`, Hint{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidate.Parameters[models.ParamCourseName] != "World History" {
		t.Errorf("course_name = %q, want quoted value", candidate.Parameters[models.ParamCourseName])
	}
}
