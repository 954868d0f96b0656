package models

import (
	"errors"
	"testing"
)

func TestRequiredParametersOrder(t *testing.T) {
	required, err := RequiredParameters(ActionInviteStudent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(required) != 2 || required[0] != ParamEmail || required[1] != ParamCourseName {
		t.Errorf("unexpected required list: %v", required)
	}
}

func TestRequiredParametersUnknownKind(t *testing.T) {
	_, err := RequiredParameters(ActionKind("launch_rocket"))
	if !errors.Is(err, ErrUnknownActionKind) {
		t.Errorf("expected ErrUnknownActionKind, got %v", err)
	}
}

func TestRequiredParametersCopyIsolation(t *testing.T) {
	first, _ := RequiredParameters(ActionCreateAnnouncement)
	first[0] = "mutated"
	second, _ := RequiredParameters(ActionCreateAnnouncement)
	if second[0] != ParamCourseName {
		t.Error("registry was mutated through returned slice")
	}
}

func TestMissingParameters(t *testing.T) {
	missing, err := MissingParameters(ActionInviteStudent, map[string]string{ParamCourseName: "english"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(missing) != 1 || missing[0] != ParamEmail {
		t.Errorf("expected [email], got %v", missing)
	}
}

func TestMissingParametersEmptyCollected(t *testing.T) {
	missing, err := MissingParameters(ActionCreateAssignment, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	required, _ := RequiredParameters(ActionCreateAssignment)
	if len(missing) != len(required) {
		t.Fatalf("expected full required list, got %v", missing)
	}
	for i := range required {
		if missing[i] != required[i] {
			t.Errorf("order mismatch at %d: %s != %s", i, missing[i], required[i])
		}
	}
}

func TestIsValidActionKind(t *testing.T) {
	if !IsValidActionKind(ActionCreateAnnouncement) {
		t.Error("create_announcement should be valid")
	}
	if IsValidActionKind(ActionKind("nonsense")) {
		t.Error("nonsense kind should be invalid")
	}
}

func TestParameterType(t *testing.T) {
	if ParameterType(ParamDueDate) != ParameterTypeDate {
		t.Error("due_date should be a date parameter")
	}
	if ParameterType(ParamDueTime) != ParameterTypeTime {
		t.Error("due_time should be a time parameter")
	}
	if ParameterType(ParamEmail) != ParameterTypeText {
		t.Error("email should be a text parameter")
	}
}

func TestInvitationValidate(t *testing.T) {
	inv := Invitation{CourseName: "english", Email: "john@gmail.com"}
	if err := inv.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	inv.Email = "not-an-email"
	if err := inv.Validate(); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
	inv.Email = "john@gmail.com"
	inv.CourseName = ""
	if err := inv.Validate(); !errors.Is(err, ErrEmptyCourseName) {
		t.Errorf("expected ErrEmptyCourseName, got %v", err)
	}
}

func TestAnnouncementValidate(t *testing.T) {
	a := Announcement{CourseName: "math", Title: "Exam moved", Body: "The exam is now on Friday."}
	if err := a.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	a.Title = ""
	if err := a.Validate(); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("expected ErrEmptyTitle, got %v", err)
	}
}

func TestAssignmentValidate(t *testing.T) {
	a := Assignment{CourseName: "math", Title: "Homework 3", DueDate: "2025-01-10", DueTime: "17:00"}
	if err := a.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	a.DueDate = "next friday"
	if err := a.Validate(); err == nil {
		t.Error("expected error for unresolved due date")
	}
}

func TestAPIResponseBuilder(t *testing.T) {
	resp := Error("boom")
	if resp.Status != string(APIStatusError) || resp.Message != "boom" {
		t.Errorf("unexpected response: %+v", resp)
	}
	ok := Success(map[string]string{"a": "b"})
	if ok.Status != string(APIStatusOK) || ok.Result == nil {
		t.Errorf("unexpected response: %+v", ok)
	}
}
