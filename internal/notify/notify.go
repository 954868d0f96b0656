// Package notify delivers outbound notifications for executed classroom
// actions: invitation and removal emails, and SMS alerts for announcements
// and assignment reminders.
package notify

import "context"

// EmailSender sends an email notification.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender sends an SMS notification.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Notifier combines the delivery channels used by the action executor.
type Notifier interface {
	EmailSender
	SMSSender
}

// compositeNotifier joins independently configured email and SMS channels.
type compositeNotifier struct {
	email EmailSender
	sms   SMSSender
}

// NewCompositeNotifier builds a Notifier from separately configured channels.
// A nil channel is replaced with a no-op sender, so either side can be left
// unconfigured.
func NewCompositeNotifier(email EmailSender, sms SMSSender) Notifier {
	if email == nil {
		email = NoopNotifier{}
	}
	if sms == nil {
		sms = NoopNotifier{}
	}
	return &compositeNotifier{email: email, sms: sms}
}

func (c *compositeNotifier) SendEmail(ctx context.Context, to, subject, body string) error {
	return c.email.SendEmail(ctx, to, subject, body)
}

func (c *compositeNotifier) SendSMS(ctx context.Context, to, body string) error {
	return c.sms.SendSMS(ctx, to, body)
}

// NoopNotifier discards all notifications. Used when no delivery channel is
// configured.
type NoopNotifier struct{}

// SendEmail discards the email.
func (NoopNotifier) SendEmail(ctx context.Context, to, subject, body string) error { return nil }

// SendSMS discards the SMS.
func (NoopNotifier) SendSMS(ctx context.Context, to, body string) error { return nil }

// SentEmail records one email delivered through MockNotifier.
type SentEmail struct {
	To      string
	Subject string
	Body    string
}

// SentSMS records one SMS delivered through MockNotifier.
type SentSMS struct {
	To   string
	Body string
}

// MockNotifier records notifications for tests.
type MockNotifier struct {
	Emails []SentEmail
	SMS    []SentSMS
	Err    error
}

// NewMockNotifier creates an empty MockNotifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) SendEmail(ctx context.Context, to, subject, body string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Emails = append(m.Emails, SentEmail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *MockNotifier) SendSMS(ctx context.Context, to, body string) error {
	if m.Err != nil {
		return m.Err
	}
	m.SMS = append(m.SMS, SentSMS{To: to, Body: body})
	return nil
}
