package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/CampusLoop/CoursePilot/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore is a Store backed by PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("PostgresStore failed to open connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("PostgresStore ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("PostgresStore failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgresStore migrations applied")

	return &PostgresStore{db: db}, nil
}

// AddCourse inserts or updates a course by name.
func (s *PostgresStore) AddCourse(c models.Course) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT INTO courses (id, name, owner_id, created_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET owner_id = EXCLUDED.owner_id`,
		c.ID, c.Name, nilIfEmpty(c.OwnerID), c.CreatedAt)
	if err != nil {
		slog.Error("PostgresStore.AddCourse failed", "error", err, "name", c.Name)
		return fmt.Errorf("failed to insert course %s: %w", c.Name, err)
	}
	return nil
}

// GetCourses returns all courses sorted by name.
func (s *PostgresStore) GetCourses() ([]models.Course, error) {
	rows, err := s.db.Query(`SELECT id, name, COALESCE(owner_id, ''), created_at FROM courses ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()
	return scanCourses(rows)
}

// GetCourseByName returns the named course, or nil if absent.
func (s *PostgresStore) GetCourseByName(name string) (*models.Course, error) {
	row := s.db.QueryRow(`SELECT id, name, COALESCE(owner_id, ''), created_at FROM courses WHERE name = $1`, name)
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
func (s *PostgresStore) AddInvitation(inv models.Invitation) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT INTO invitations (id, course_name, email, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		inv.ID, inv.CourseName, inv.Email, inv.Status, inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		slog.Error("PostgresStore.AddInvitation failed", "error", err, "email", inv.Email)
		return fmt.Errorf("failed to insert invitation for %s: %w", inv.Email, err)
	}
	return nil
}

// GetInvitations returns invitations, optionally filtered by course name.
func (s *PostgresStore) GetInvitations(courseName string) ([]models.Invitation, error) {
	query := `SELECT id, course_name, email, status, created_at, updated_at FROM invitations`
	args := []interface{}{}
	if courseName != "" {
		query += ` WHERE course_name = $1`
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
func (s *PostgresStore) RevokeInvitation(courseName, email string) error {
	_, err := s.db.Exec(`UPDATE invitations SET status = $1 WHERE course_name = $2 AND email = $3`,
		models.InvitationStatusRevoked, courseName, email)
	if err != nil {
		return fmt.Errorf("failed to revoke invitation for %s: %w", email, err)
	}
	return nil
}

// AddAnnouncement inserts an announcement.
func (s *PostgresStore) AddAnnouncement(a models.Announcement) error {
	if err := a.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT INTO announcements (id, course_name, title, body, created_at) VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.CourseName, a.Title, a.Body, a.CreatedAt)
	if err != nil {
		slog.Error("PostgresStore.AddAnnouncement failed", "error", err, "course", a.CourseName)
		return fmt.Errorf("failed to insert announcement for %s: %w", a.CourseName, err)
	}
	return nil
}

// GetAnnouncements returns announcements, optionally filtered by course name.
func (s *PostgresStore) GetAnnouncements(courseName string) ([]models.Announcement, error) {
	query := `SELECT id, course_name, title, body, created_at FROM announcements`
	args := []interface{}{}
	if courseName != "" {
		query += ` WHERE course_name = $1`
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
func (s *PostgresStore) AddAssignment(a models.Assignment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT INTO assignments (id, course_name, title, due_date, due_time, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.CourseName, a.Title, a.DueDate, nilIfEmpty(a.DueTime), a.CreatedAt)
	if err != nil {
		slog.Error("PostgresStore.AddAssignment failed", "error", err, "course", a.CourseName)
		return fmt.Errorf("failed to insert assignment for %s: %w", a.CourseName, err)
	}
	return nil
}

// GetAssignments returns assignments, optionally filtered by course name.
func (s *PostgresStore) GetAssignments(courseName string) ([]models.Assignment, error) {
	query := `SELECT id, course_name, title, due_date, COALESCE(due_time, ''), created_at FROM assignments`
	args := []interface{}{}
	if courseName != "" {
		query += ` WHERE course_name = $1`
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
func (s *PostgresStore) AddTurnRecord(r models.TurnRecord) error {
	_, err := s.db.Exec(`INSERT INTO turn_records (id, conversation_id, message, decision, action, ready, prompt, time) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.ConversationID, r.Message, nilIfEmpty(string(r.Decision)), nilIfEmpty(string(r.Action)), r.Ready, nilIfEmpty(r.Prompt), r.Time)
	if err != nil {
		return fmt.Errorf("failed to insert turn record: %w", err)
	}
	return nil
}

// GetTurnRecords returns turn records, optionally filtered by conversation id.
func (s *PostgresStore) GetTurnRecords(conversationID string) ([]models.TurnRecord, error) {
	query := `SELECT id, conversation_id, message, COALESCE(decision, ''), COALESCE(action, ''), ready, COALESCE(prompt, ''), time FROM turn_records`
	args := []interface{}{}
	if conversationID != "" {
		query += ` WHERE conversation_id = $1`
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
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
