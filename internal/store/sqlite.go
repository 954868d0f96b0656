package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/CampusLoop/CoursePilot/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore is a Store backed by a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN. The DSN is a
// file path to the database file; the directory is created if needed.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("SQLiteStore.NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("SQLiteStore failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("SQLiteStore failed to open connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLiteStore ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("SQLiteStore failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLiteStore migrations applied")

	return &SQLiteStore{db: db}, nil
}

// AddCourse inserts or replaces a course by name.
func (s *SQLiteStore) AddCourse(c models.Course) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT INTO courses (id, name, owner_id, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET owner_id = excluded.owner_id`,
		c.ID, c.Name, nilIfEmpty(c.OwnerID), c.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore.AddCourse failed", "error", err, "name", c.Name)
		return fmt.Errorf("failed to insert course %s: %w", c.Name, err)
	}
	return nil
}

// GetCourses returns all courses sorted by name.
func (s *SQLiteStore) GetCourses() ([]models.Course, error) {
	rows, err := s.db.Query(`SELECT id, name, COALESCE(owner_id, ''), created_at FROM courses ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()
	return scanCourses(rows)
}

// GetCourseByName returns the named course, or nil if absent.
func (s *SQLiteStore) GetCourseByName(name string) (*models.Course, error) {
	row := s.db.QueryRow(`SELECT id, name, COALESCE(owner_id, ''), created_at FROM courses WHERE name = ?`, name)
	var c models.Course
	if err := row.Scan(&c.ID, &c.Name, &c.OwnerID, &c.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan course row: %w", err)
	}
	return &c, nil
}

// AddInvitation inserts an invitation.
func (s *SQLiteStore) AddInvitation(inv models.Invitation) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT INTO invitations (id, course_name, email, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.CourseName, inv.Email, inv.Status, inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore.AddInvitation failed", "error", err, "email", inv.Email)
		return fmt.Errorf("failed to insert invitation for %s: %w", inv.Email, err)
	}
	return nil
}

// GetInvitations returns invitations, optionally filtered by course name.
func (s *SQLiteStore) GetInvitations(courseName string) ([]models.Invitation, error) {
	query := `SELECT id, course_name, email, status, created_at, updated_at FROM invitations`
	args := []interface{}{}
	if courseName != "" {
		query += ` WHERE course_name = ?`
		args = append(args, courseName)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invitations: %w", err)
	}
	defer rows.Close()
	return scanInvitations(rows)
}

// RevokeInvitation marks matching invitations revoked.
func (s *SQLiteStore) RevokeInvitation(courseName, email string) error {
	_, err := s.db.Exec(`UPDATE invitations SET status = ? WHERE course_name = ? AND email = ?`,
		models.InvitationStatusRevoked, courseName, email)
	if err != nil {
		return fmt.Errorf("failed to revoke invitation for %s: %w", email, err)
	}
	return nil
}

// AddAnnouncement inserts an announcement.
func (s *SQLiteStore) AddAnnouncement(a models.Announcement) error {
	if err := a.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT INTO announcements (id, course_name, title, body, created_at) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.CourseName, a.Title, a.Body, a.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore.AddAnnouncement failed", "error", err, "course", a.CourseName)
		return fmt.Errorf("failed to insert announcement for %s: %w", a.CourseName, err)
	}
	return nil
}

// GetAnnouncements returns announcements, optionally filtered by course name.
func (s *SQLiteStore) GetAnnouncements(courseName string) ([]models.Announcement, error) {
	query := `SELECT id, course_name, title, body, created_at FROM announcements`
	args := []interface{}{}
	if courseName != "" {
		query += ` WHERE course_name = ?`
		args = append(args, courseName)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query announcements: %w", err)
	}
	defer rows.Close()
	return scanAnnouncements(rows)
}

// AddAssignment inserts an assignment.
func (s *SQLiteStore) AddAssignment(a models.Assignment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT INTO assignments (id, course_name, title, due_date, due_time, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.CourseName, a.Title, a.DueDate, nilIfEmpty(a.DueTime), a.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore.AddAssignment failed", "error", err, "course", a.CourseName)
		return fmt.Errorf("failed to insert assignment for %s: %w", a.CourseName, err)
	}
	return nil
}

// GetAssignments returns assignments, optionally filtered by course name.
func (s *SQLiteStore) GetAssignments(courseName string) ([]models.Assignment, error) {
	query := `SELECT id, course_name, title, due_date, COALESCE(due_time, ''), created_at FROM assignments`
	args := []interface{}{}
	if courseName != "" {
		query += ` WHERE course_name = ?`
		args = append(args, courseName)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()
	return scanAssignments(rows)
}

// AddTurnRecord inserts a turn audit entry.
func (s *SQLiteStore) AddTurnRecord(r models.TurnRecord) error {
	_, err := s.db.Exec(`INSERT INTO turn_records (id, conversation_id, message, decision, action, ready, prompt, time) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ConversationID, r.Message, nilIfEmpty(string(r.Decision)), nilIfEmpty(string(r.Action)), r.Ready, nilIfEmpty(r.Prompt), r.Time)
	if err != nil {
		return fmt.Errorf("failed to insert turn record: %w", err)
	}
	return nil
}

// GetTurnRecords returns turn records, optionally filtered by conversation id.
func (s *SQLiteStore) GetTurnRecords(conversationID string) ([]models.TurnRecord, error) {
	query := `SELECT id, conversation_id, message, COALESCE(decision, ''), COALESCE(action, ''), ready, COALESCE(prompt, ''), time FROM turn_records`
	args := []interface{}{}
	if conversationID != "" {
		query += ` WHERE conversation_id = ?`
		args = append(args, conversationID)
	}
	query += ` ORDER BY time`
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query turn records: %w", err)
	}
	defer rows.Close()
	return scanTurnRecords(rows)
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
