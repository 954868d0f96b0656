// Package store provides storage backends for CoursePilot.
//
// It persists classroom entities (courses, invitations, announcements,
// assignments) and the audit log of processed conversation turns. Three
// backends are provided: in-memory, SQLite, and PostgreSQL. The engine's
// ongoing-action state is deliberately not persisted here; it lives in memory
// with a staleness window (see internal/engine).
package store

import (
	"sort"
	"sync"

	"github.com/CampusLoop/CoursePilot/internal/models"
)

// Opts holds configuration options for store implementations.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store implementations.
type Option func(*Opts)

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// Store defines the persistence operations used by the action executor and
// the API handlers.
type Store interface {
	AddCourse(c models.Course) error
	GetCourses() ([]models.Course, error)
	GetCourseByName(name string) (*models.Course, error)

	AddInvitation(inv models.Invitation) error
	GetInvitations(courseName string) ([]models.Invitation, error)
	RevokeInvitation(courseName, email string) error

	AddAnnouncement(a models.Announcement) error
	GetAnnouncements(courseName string) ([]models.Announcement, error)

	AddAssignment(a models.Assignment) error
	GetAssignments(courseName string) ([]models.Assignment, error)

	AddTurnRecord(r models.TurnRecord) error
	GetTurnRecords(conversationID string) ([]models.TurnRecord, error)

	Close() error
}

// InMemoryStore is a Store kept entirely in process memory, used in tests and
// single-node deployments without a database.
type InMemoryStore struct {
	mu            sync.RWMutex
	courses       map[string]models.Course
	invitations   []models.Invitation
	announcements []models.Announcement
	assignments   []models.Assignment
	turns         []models.TurnRecord
}

// NewInMemoryStore creates an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{courses: make(map[string]models.Course)}
}

// AddCourse stores a course keyed by name; adding the same name again
// overwrites the prior entry.
func (s *InMemoryStore) AddCourse(c models.Course) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses[c.Name] = c
	return nil
}

// GetCourses returns all courses sorted by name.
func (s *InMemoryStore) GetCourses() ([]models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	courses := make([]models.Course, 0, len(s.courses))
	for _, c := range s.courses {
		courses = append(courses, c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Name < courses[j].Name })
	return courses, nil
}

// GetCourseByName returns the named course, or nil if absent.
func (s *InMemoryStore) GetCourseByName(name string) (*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.courses[name]; ok {
		return &c, nil
	}
	return nil, nil
}

// AddInvitation stores an invitation.
func (s *InMemoryStore) AddInvitation(inv models.Invitation) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invitations = append(s.invitations, inv)
	return nil
}

// GetInvitations returns invitations, optionally filtered by course name.
func (s *InMemoryStore) GetInvitations(courseName string) ([]models.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Invitation
	for _, inv := range s.invitations {
		if courseName == "" || inv.CourseName == courseName {
			out = append(out, inv)
		}
	}
	return out, nil
}

// RevokeInvitation marks matching invitations revoked.
func (s *InMemoryStore) RevokeInvitation(courseName, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.invitations {
		if s.invitations[i].CourseName == courseName && s.invitations[i].Email == email {
			s.invitations[i].Status = models.InvitationStatusRevoked
		}
	}
	return nil
}

// AddAnnouncement stores an announcement.
func (s *InMemoryStore) AddAnnouncement(a models.Announcement) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.announcements = append(s.announcements, a)
	return nil
}

// GetAnnouncements returns announcements, optionally filtered by course name.
func (s *InMemoryStore) GetAnnouncements(courseName string) ([]models.Announcement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Announcement
	for _, a := range s.announcements {
		if courseName == "" || a.CourseName == courseName {
			out = append(out, a)
		}
	}
	return out, nil
}

// AddAssignment stores an assignment.
func (s *InMemoryStore) AddAssignment(a models.Assignment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments = append(s.assignments, a)
	return nil
}

// GetAssignments returns assignments, optionally filtered by course name.
func (s *InMemoryStore) GetAssignments(courseName string) ([]models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Assignment
	for _, a := range s.assignments {
		if courseName == "" || a.CourseName == courseName {
			out = append(out, a)
		}
	}
	return out, nil
}

// AddTurnRecord appends a turn audit entry.
func (s *InMemoryStore) AddTurnRecord(r models.TurnRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, r)
	return nil
}

// GetTurnRecords returns turn records, optionally filtered by conversation id.
func (s *InMemoryStore) GetTurnRecords(conversationID string) ([]models.TurnRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.TurnRecord
	for _, r := range s.turns {
		if conversationID == "" || r.ConversationID == conversationID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
