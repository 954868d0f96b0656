package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/CampusLoop/CoursePilot/internal/models"
)

// DetectDSNType reports "postgres" for PostgreSQL-style connection strings and
// "sqlite" otherwise, so callers can pick a backend from a single DSN setting.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=") || strings.Contains(dsn, "dbname=") {
		return "postgres"
	}
	return "sqlite"
}

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func scanCourses(rows *sql.Rows) ([]models.Course, error) {
	var out []models.Course
	for rows.Next() {
		var c models.Course
		if err := rows.Scan(&c.ID, &c.Name, &c.OwnerID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan course row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate course rows: %w", err)
	}
	return out, nil
}

func scanInvitations(rows *sql.Rows) ([]models.Invitation, error) {
	var out []models.Invitation
	for rows.Next() {
		var inv models.Invitation
		if err := rows.Scan(&inv.ID, &inv.CourseName, &inv.Email, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invitation row: %w", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invitation rows: %w", err)
	}
	return out, nil
}

func scanAnnouncements(rows *sql.Rows) ([]models.Announcement, error) {
	var out []models.Announcement
	for rows.Next() {
		var a models.Announcement
		if err := rows.Scan(&a.ID, &a.CourseName, &a.Title, &a.Body, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan announcement row: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate announcement rows: %w", err)
	}
	return out, nil
}

func scanAssignments(rows *sql.Rows) ([]models.Assignment, error) {
	var out []models.Assignment
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.ID, &a.CourseName, &a.Title, &a.DueDate, &a.DueTime, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment row: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignment rows: %w", err)
	}
	return out, nil
}

func scanTurnRecords(rows *sql.Rows) ([]models.TurnRecord, error) {
	var out []models.TurnRecord
	for rows.Next() {
		var r models.TurnRecord
		var decision, action string
		if err := rows.Scan(&r.ID, &r.ConversationID, &r.Message, &decision, &action, &r.Ready, &r.Prompt, &r.Time); err != nil {
			return nil, fmt.Errorf("failed to scan turn record row: %w", err)
		}
		r.Decision = models.Decision(decision)
		r.Action = models.ActionKind(action)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate turn record rows: %w", err)
	}
	return out, nil
}
