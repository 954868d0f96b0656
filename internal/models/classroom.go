// Package models defines classroom entities persisted by the store.
package models

import (
	"errors"
	"net/mail"
	"time"
)

// Validation constants for classroom input validation
const (
	// MaxCourseNameLength defines the maximum allowed length for course names
	MaxCourseNameLength = 200
	// MaxTitleLength defines the maximum allowed length for announcement and assignment titles
	MaxTitleLength = 300
	// MaxBodyLength defines the maximum allowed length for announcement bodies
	MaxBodyLength = 8192
)

var (
	ErrEmptyCourseName   = errors.New("course name cannot be empty")
	ErrCourseNameTooLong = errors.New("course name exceeds maximum length")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrEmptyTitle        = errors.New("title cannot be empty")
	ErrTitleTooLong      = errors.New("title exceeds maximum length")
	ErrEmptyBody         = errors.New("body cannot be empty")
	ErrBodyTooLong       = errors.New("body exceeds maximum length")
)

// Course represents a class managed through CoursePilot.
type Course struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks course fields before persistence.
func (c *Course) Validate() error {
	if c.Name == "" {
		return ErrEmptyCourseName
	}
	if len(c.Name) > MaxCourseNameLength {
		return ErrCourseNameTooLong
	}
	return nil
}

// InvitationStatus represents the lifecycle of a course invitation.
type InvitationStatus string

const (
	// InvitationStatusPending indicates the invitation email has been sent.
	InvitationStatusPending InvitationStatus = "pending"
	// InvitationStatusAccepted indicates the student joined the course.
	InvitationStatusAccepted InvitationStatus = "accepted"
	// InvitationStatusRevoked indicates the invitation was withdrawn.
	InvitationStatusRevoked InvitationStatus = "revoked"
)

// IsValidInvitationStatus checks if the given invitation status is valid.
func IsValidInvitationStatus(status InvitationStatus) bool {
	switch status {
	case InvitationStatusPending, InvitationStatusAccepted, InvitationStatusRevoked:
		return true
	default:
		return false
	}
}

// Invitation represents a student invited to a course.
type Invitation struct {
	ID         string           `json:"id"`
	CourseName string           `json:"course_name"`
	Email      string           `json:"email"`
	Status     InvitationStatus `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// Validate checks invitation fields before persistence.
func (i *Invitation) Validate() error {
	if i.CourseName == "" {
		return ErrEmptyCourseName
	}
	if _, err := mail.ParseAddress(i.Email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// Announcement represents a message posted to a course.
type Announcement struct {
	ID         string    `json:"id"`
	CourseName string    `json:"course_name"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks announcement fields before persistence.
func (a *Announcement) Validate() error {
	if a.CourseName == "" {
		return ErrEmptyCourseName
	}
	if a.Title == "" {
		return ErrEmptyTitle
	}
	if len(a.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if a.Body == "" {
		return ErrEmptyBody
	}
	if len(a.Body) > MaxBodyLength {
		return ErrBodyTooLong
	}
	return nil
}

// Assignment represents coursework with a due date.
type Assignment struct {
	ID         string    `json:"id"`
	CourseName string    `json:"course_name"`
	Title      string    `json:"title"`
	DueDate    string    `json:"due_date"` // YYYY-MM-DD
	DueTime    string    `json:"due_time"` // HH:MM, 24-hour
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks assignment fields before persistence.
func (a *Assignment) Validate() error {
	if a.CourseName == "" {
		return ErrEmptyCourseName
	}
	if a.Title == "" {
		return ErrEmptyTitle
	}
	if len(a.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if _, err := time.Parse("2006-01-02", a.DueDate); err != nil {
		return errors.New("due_date must be in YYYY-MM-DD format")
	}
	if a.DueTime != "" {
		if _, err := time.Parse("15:04", a.DueTime); err != nil {
			return errors.New("due_time must be in HH:MM format")
		}
	}
	return nil
}

// TurnRecord is an audit entry for one processed engine turn.
type TurnRecord struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	Message        string     `json:"message"`
	Decision       Decision   `json:"decision,omitempty"`
	Action         ActionKind `json:"action,omitempty"`
	Ready          bool       `json:"ready"`
	Prompt         string     `json:"prompt,omitempty"`
	Time           int64      `json:"time"`
}
