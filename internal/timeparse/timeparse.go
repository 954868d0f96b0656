// Package timeparse resolves relative natural-language date and time
// expressions ("next friday", "in 3 weeks", "5 pm") into absolute values.
//
// All functions are pure and deterministic given a reference "now". Dates are
// computed from the caller's local calendar fields, not UTC-shifted, to avoid
// off-by-one errors at timezone boundaries.
package timeparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/CampusLoop/CoursePilot/internal/models"
)

// DateLayout is the textual form of all resolved dates.
const DateLayout = "2006-01-02"

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var (
	inWeeksRegex = regexp.MustCompile(`^in (\d+) weeks?$`)
	clockRegex   = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))? ?(am|pm)$`)
)

// ResolveDate converts a relative date expression into a YYYY-MM-DD string.
// Recognized forms: "today", "tomorrow", "next week", "next <weekday>",
// "in N weeks", "end of month". Unrecognized expressions return
// models.ErrUnresolvedExpression; callers should treat the parameter as still
// missing and re-prompt rather than fail.
func ResolveDate(expression string, now time.Time) (string, error) {
	expr := strings.ToLower(strings.TrimSpace(expression))

	switch expr {
	case "today":
		return now.Format(DateLayout), nil
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format(DateLayout), nil
	case "next week":
		return now.AddDate(0, 0, 7).Format(DateLayout), nil
	case "end of month":
		// First day of next month, minus one day.
		firstOfNext := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
		return firstOfNext.AddDate(0, 0, -1).Format(DateLayout), nil
	}

	if day, ok := strings.CutPrefix(expr, "next "); ok {
		if target, known := weekdays[day]; known {
			return nextWeekday(now, target).Format(DateLayout), nil
		}
	}

	if m := inWeeksRegex.FindStringSubmatch(expr); m != nil {
		weeks, err := strconv.Atoi(m[1])
		if err != nil {
			return "", fmt.Errorf("%w: %q", models.ErrUnresolvedExpression, expression)
		}
		return now.AddDate(0, 0, 7*weeks).Format(DateLayout), nil
	}

	// Already-absolute dates pass through unchanged.
	if _, err := time.Parse(DateLayout, expr); err == nil {
		return expr, nil
	}

	return "", fmt.Errorf("%w: %q", models.ErrUnresolvedExpression, expression)
}

// nextWeekday returns the next occurrence of target strictly after now's date.
// If the weekday falls on today it advances a full week: "next" always means
// strictly forward, never today or a past date.
func nextWeekday(now time.Time, target time.Weekday) time.Time {
	delta := (int(target) - int(now.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return now.AddDate(0, 0, delta)
}

// ResolveTime converts a time expression into a 24-hour HH:MM string.
// Recognized forms: "noon", "midnight", "<H> <AM|PM>", "<H>:<MM> <AM|PM>".
// Minutes default to 00 when omitted. Unrecognized expressions return
// models.ErrUnresolvedExpression.
func ResolveTime(expression string) (string, error) {
	expr := strings.ToLower(strings.TrimSpace(expression))

	switch expr {
	case "noon":
		return "12:00", nil
	case "midnight":
		return "00:00", nil
	}

	if m := clockRegex.FindStringSubmatch(expr); m != nil {
		hour, err := strconv.Atoi(m[1])
		if err != nil || hour < 1 || hour > 12 {
			return "", fmt.Errorf("%w: %q", models.ErrUnresolvedExpression, expression)
		}
		minute := 0
		if m[2] != "" {
			minute, err = strconv.Atoi(m[2])
			if err != nil || minute > 59 {
				return "", fmt.Errorf("%w: %q", models.ErrUnresolvedExpression, expression)
			}
		}
		// 12-hour to 24-hour: 12 PM stays 12, 12 AM becomes 0, other PM hours add 12.
		if m[3] == "pm" && hour != 12 {
			hour += 12
		} else if m[3] == "am" && hour == 12 {
			hour = 0
		}
		return fmt.Sprintf("%02d:%02d", hour, minute), nil
	}

	// Already-absolute 24-hour times pass through unchanged.
	if _, err := time.Parse("15:04", expr); err == nil {
		return expr, nil
	}

	return "", fmt.Errorf("%w: %q", models.ErrUnresolvedExpression, expression)
}
