// Package actions executes completed classroom actions. The engine collects
// parameters over a conversation; once an action is complete the executor
// persists the resulting entity and delivers any notifications.
package actions

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/CampusLoop/CoursePilot/internal/models"
	"github.com/CampusLoop/CoursePilot/internal/notify"
	"github.com/CampusLoop/CoursePilot/internal/store"
	"github.com/CampusLoop/CoursePilot/internal/util"
)

// Opts holds configuration options for the Executor.
type Opts struct {
	AlertNumber string
	Clock       func() time.Time
}

// Option defines a configuration option for the Executor.
type Option func(*Opts)

// WithAlertNumber sets a phone number that receives an SMS alert whenever an
// announcement or assignment is created.
func WithAlertNumber(number string) Option {
	return func(o *Opts) { o.AlertNumber = number }
}

// WithClock overrides the time source, used in tests.
func WithClock(clock func() time.Time) Option {
	return func(o *Opts) { o.Clock = clock }
}

// Executor dispatches completed actions to the store and notifier.
type Executor struct {
	store       store.Store
	notifier    notify.Notifier
	alertNumber string
	now         func() time.Time
}

// NewExecutor creates an Executor backed by the given store and notifier.
func NewExecutor(st store.Store, n notify.Notifier, opts ...Option) *Executor {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if n == nil {
		n = notify.NoopNotifier{}
	}
	return &Executor{
		store:       st,
		notifier:    n,
		alertNumber: cfg.AlertNumber,
		now:         cfg.Clock,
	}
}

// Execute performs the given action with its completed parameter set and
// returns a human-readable confirmation. The parameter map must contain every
// required parameter for the kind; the engine guarantees this before calling.
func (e *Executor) Execute(ctx context.Context, kind models.ActionKind, params map[string]string) (string, error) {
	slog.Debug("Executor.Execute invoked", "action", kind)
	switch kind {
	case models.ActionInviteStudent:
		return e.inviteStudent(ctx, params)
	case models.ActionRemoveStudent:
		return e.removeStudent(ctx, params)
	case models.ActionCreateAnnouncement:
		return e.createAnnouncement(ctx, params)
	case models.ActionCreateAssignment:
		return e.createAssignment(ctx, params)
	default:
		return "", fmt.Errorf("cannot execute action %q: %w", kind, models.ErrUnknownActionKind)
	}
}

// ensureCourse creates a course row on first reference so that actions can
// target courses that were never explicitly registered.
func (e *Executor) ensureCourse(name string) error {
	c, err := e.store.GetCourseByName(name)
	if err != nil {
		return fmt.Errorf("failed to look up course %s: %w", name, err)
	}
	if c != nil {
		return nil
	}
	return e.store.AddCourse(models.Course{
		ID:        util.GenerateCourseID(),
		Name:      name,
		CreatedAt: e.now(),
	})
}

func (e *Executor) inviteStudent(ctx context.Context, params map[string]string) (string, error) {
	email := params[models.ParamEmail]
	course := params[models.ParamCourseName]

	if err := e.ensureCourse(course); err != nil {
		return "", err
	}
	now := e.now()
	inv := models.Invitation{
		ID:         util.GenerateInvitationID(),
		CourseName: course,
		Email:      email,
		Status:     models.InvitationStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := e.store.AddInvitation(inv); err != nil {
		return "", err
	}

	subject := fmt.Sprintf("Invitation to join %s", course)
	body := fmt.Sprintf("You have been invited to join the course %s. Reply to this email to accept.", course)
	if err := e.notifier.SendEmail(ctx, email, subject, body); err != nil {
		slog.Error("Executor.inviteStudent: invitation email failed", "email", email, "error", err)
		return "", fmt.Errorf("invitation saved but email delivery failed: %w", err)
	}

	slog.Info("Executor.inviteStudent: invitation sent", "email", email, "course", course)
	return fmt.Sprintf("Invited %s to %s.", email, course), nil
}

func (e *Executor) removeStudent(ctx context.Context, params map[string]string) (string, error) {
	email := params[models.ParamEmail]
	course := params[models.ParamCourseName]

	if err := e.store.RevokeInvitation(course, email); err != nil {
		return "", err
	}

	subject := fmt.Sprintf("Removed from %s", course)
	body := fmt.Sprintf("You have been removed from the course %s.", course)
	if err := e.notifier.SendEmail(ctx, email, subject, body); err != nil {
		slog.Error("Executor.removeStudent: removal email failed", "email", email, "error", err)
		return "", fmt.Errorf("removal saved but email delivery failed: %w", err)
	}

	slog.Info("Executor.removeStudent: student removed", "email", email, "course", course)
	return fmt.Sprintf("Removed %s from %s.", email, course), nil
}

func (e *Executor) createAnnouncement(ctx context.Context, params map[string]string) (string, error) {
	course := params[models.ParamCourseName]
	title := params[models.ParamTitle]
	body := params[models.ParamBody]

	if err := e.ensureCourse(course); err != nil {
		return "", err
	}
	ann := models.Announcement{
		ID:         util.GenerateAnnouncementID(),
		CourseName: course,
		Title:      title,
		Body:       body,
		CreatedAt:  e.now(),
	}
	if err := e.store.AddAnnouncement(ann); err != nil {
		return "", err
	}

	if e.alertNumber != "" {
		alert := fmt.Sprintf("New announcement in %s: %s", course, title)
		if err := e.notifier.SendSMS(ctx, e.alertNumber, alert); err != nil {
			// Announcement is already persisted; alert delivery is best effort.
			slog.Warn("Executor.createAnnouncement: SMS alert failed", "error", err)
		}
	}

	slog.Info("Executor.createAnnouncement: announcement posted", "course", course, "title", title)
	return fmt.Sprintf("Posted announcement %q to %s.", title, course), nil
}

func (e *Executor) createAssignment(ctx context.Context, params map[string]string) (string, error) {
	course := params[models.ParamCourseName]
	title := params[models.ParamTitle]
	dueDate := params[models.ParamDueDate]
	dueTime := params[models.ParamDueTime]

	if err := e.ensureCourse(course); err != nil {
		return "", err
	}
	asg := models.Assignment{
		ID:         util.GenerateAssignmentID(),
		CourseName: course,
		Title:      title,
		DueDate:    dueDate,
		DueTime:    dueTime,
		CreatedAt:  e.now(),
	}
	if err := e.store.AddAssignment(asg); err != nil {
		return "", err
	}

	if e.alertNumber != "" {
		alert := fmt.Sprintf("New assignment in %s: %s, due %s", course, title, dueDate)
		if dueTime != "" {
			alert += " at " + dueTime
		}
		if err := e.notifier.SendSMS(ctx, e.alertNumber, alert); err != nil {
			slog.Warn("Executor.createAssignment: SMS alert failed", "error", err)
		}
	}

	slog.Info("Executor.createAssignment: assignment created", "course", course, "title", title, "due_date", dueDate)
	due := dueDate
	if dueTime != "" {
		due += " " + dueTime
	}
	return fmt.Sprintf("Created assignment %q in %s, due %s.", title, course, due), nil
}

// RemindDueAssignments sends an SMS reminder for every assignment due on the
// given date. It is wired to the daily reminder job.
func (e *Executor) RemindDueAssignments(ctx context.Context, date string) (int, error) {
	if e.alertNumber == "" {
		return 0, nil
	}
	assignments, err := e.store.GetAssignments("")
	if err != nil {
		return 0, fmt.Errorf("failed to load assignments for reminders: %w", err)
	}
	sent := 0
	for _, a := range assignments {
		if a.DueDate != date {
			continue
		}
		msg := fmt.Sprintf("Reminder: %q in %s is due today", a.Title, a.CourseName)
		if a.DueTime != "" {
			msg += " at " + a.DueTime
		}
		if err := e.notifier.SendSMS(ctx, e.alertNumber, msg); err != nil {
			slog.Error("Executor.RemindDueAssignments: reminder failed", "assignment", a.ID, "error", err)
			continue
		}
		sent++
	}
	slog.Debug("Executor.RemindDueAssignments completed", "date", date, "sent", sent)
	return sent, nil
}
