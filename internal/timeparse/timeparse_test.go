package timeparse

import (
	"errors"
	"testing"
	"time"

	"github.com/CampusLoop/CoursePilot/internal/models"
)

// 2025-01-01 is a Wednesday.
var wednesday = time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC)

func TestResolveDateRelativeForms(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"today", "2025-01-01"},
		{"tomorrow", "2025-01-02"},
		{"next week", "2025-01-08"},
		{"next friday", "2025-01-03"},
		{"Next Friday", "2025-01-03"},
		{"next wednesday", "2025-01-08"}, // today's weekday advances a full week
		{"next monday", "2025-01-06"},
		{"in 3 weeks", "2025-01-22"},
		{"in 1 week", "2025-01-08"},
		{"end of month", "2025-01-31"},
		{"2025-02-14", "2025-02-14"},
	}
	for _, tt := range tests {
		got, err := ResolveDate(tt.expr, wednesday)
		if err != nil {
			t.Errorf("ResolveDate(%q) unexpected error: %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveDate(%q) = %q, want %q", tt.expr, got, tt.want)
		}
	}
}

func TestResolveDateEndOfFebruary(t *testing.T) {
	feb := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	got, err := ResolveDate("end of month", feb)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2024-02-29" {
		t.Errorf("leap-year end of month = %q, want 2024-02-29", got)
	}
}

func TestResolveDateUnresolved(t *testing.T) {
	for _, expr := range []string{"someday", "next blursday", "in many weeks", ""} {
		_, err := ResolveDate(expr, wednesday)
		if !errors.Is(err, models.ErrUnresolvedExpression) {
			t.Errorf("ResolveDate(%q) expected ErrUnresolvedExpression, got %v", expr, err)
		}
	}
}

func TestResolveTime(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"5 pm", "17:00"},
		{"5 PM", "17:00"},
		{"12 pm", "12:00"},
		{"12 am", "00:00"},
		{"9:30 am", "09:30"},
		{"11:45 pm", "23:45"},
		{"noon", "12:00"},
		{"midnight", "00:00"},
		{"17:00", "17:00"},
	}
	for _, tt := range tests {
		got, err := ResolveTime(tt.expr)
		if err != nil {
			t.Errorf("ResolveTime(%q) unexpected error: %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveTime(%q) = %q, want %q", tt.expr, got, tt.want)
		}
	}
}

func TestResolveTimeUnresolved(t *testing.T) {
	for _, expr := range []string{"later", "13 pm", "5:70 pm", ""} {
		_, err := ResolveTime(expr)
		if !errors.Is(err, models.ErrUnresolvedExpression) {
			t.Errorf("ResolveTime(%q) expected ErrUnresolvedExpression, got %v", expr, err)
		}
	}
}
