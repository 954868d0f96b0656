// Package api provides HTTP handlers and the main API server logic for CoursePilot.
//
// It exposes RESTful endpoints for posting conversation messages, inspecting
// ongoing actions, and reading the classroom entities created by completed
// actions. The API integrates the engine, extractor, executor, store,
// messaging, and scheduler modules.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/CampusLoop/CoursePilot/internal/actions"
	"github.com/CampusLoop/CoursePilot/internal/engine"
	"github.com/CampusLoop/CoursePilot/internal/extractor"
	"github.com/CampusLoop/CoursePilot/internal/messaging"
	"github.com/CampusLoop/CoursePilot/internal/notify"
	"github.com/CampusLoop/CoursePilot/internal/scheduler"
	"github.com/CampusLoop/CoursePilot/internal/store"
	"github.com/CampusLoop/CoursePilot/internal/whatsapp"
)

// Default configuration constants
const (
	// DefaultAddr is the default API listen address
	DefaultAddr = ":8080"
	// DefaultSweepCron runs the stale conversation sweep every five minutes
	DefaultSweepCron = "*/5 * * * *"
	// DefaultReminderCron sends assignment due reminders each morning
	DefaultReminderCron = "0 8 * * *"
	// DefaultJobTimeout bounds scheduled job execution
	DefaultJobTimeout = 30 * time.Second
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr         string
	AlertNumber  string
	CancelNotice bool
	WhatsApp     bool
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the API listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithAlertNumber sets the phone number that receives SMS alerts and
// assignment reminders.
func WithAlertNumber(number string) Option {
	return func(o *Opts) { o.AlertNumber = number }
}

// WithCancelNotice enables the user-facing notice when a new request
// supersedes an in-flight one.
func WithCancelNotice() Option {
	return func(o *Opts) { o.CancelNotice = true }
}

// WithWhatsApp enables the WhatsApp channel; conversations then also arrive
// over WhatsApp in addition to the REST endpoint.
func WithWhatsApp() Option {
	return func(o *Opts) { o.WhatsApp = true }
}

// Server holds the wired modules behind the HTTP handlers.
type Server struct {
	addr        string
	st          store.Store
	engine      *engine.Engine
	respHandler *messaging.ResponseHandler
	msgService  messaging.Service
}

// NewServer creates a Server over pre-built collaborators. Run builds the
// full production wiring; tests call NewServer directly.
func NewServer(st store.Store, eng *engine.Engine, respHandler *messaging.ResponseHandler, msgService messaging.Service, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	return &Server{
		addr:        cfg.Addr,
		st:          st,
		engine:      eng,
		respHandler: respHandler,
		msgService:  msgService,
	}
}

// Handler builds the HTTP routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/messages", s.messagesHandler)
	mux.HandleFunc("/conversations/", s.conversationHandler)
	mux.HandleFunc("/turns", s.turnsHandler)
	mux.HandleFunc("/courses", s.coursesHandler)
	mux.HandleFunc("/invitations", s.invitationsHandler)
	mux.HandleFunc("/announcements", s.announcementsHandler)
	mux.HandleFunc("/assignments", s.assignmentsHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// Run wires all modules from options and serves the API until the listener
// fails. It owns the production composition: store selection by DSN,
// extractor selection by API key, notification channels, the background
// sweep, and optionally the WhatsApp response loop.
func Run(waOpts []whatsapp.Option, storeOpts []store.Option, extOpts []extractor.OpenAIOption, apiOpts []Option) error {
	var cfg Opts
	for _, opt := range apiOpts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	st, err := buildStore(storeOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	ext := buildExtractor(extOpts)
	notifier := buildNotifier()

	var actionStoreOpts []engine.StoreOption
	if v := os.Getenv("COURSEPILOT_STALENESS_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err != nil {
			slog.Warn("api.Run: invalid COURSEPILOT_STALENESS_WINDOW, using default", "value", v, "error", err)
		} else {
			actionStoreOpts = append(actionStoreOpts, engine.WithStalenessWindow(d))
		}
	}
	actionStore := engine.NewActionStore(actionStoreOpts...)
	engOpts := []engine.EngineOption{}
	if cfg.CancelNotice {
		engOpts = append(engOpts, engine.WithCancelNotice(true))
	}
	eng := engine.New(actionStore, engOpts...)

	var execOpts []actions.Option
	if cfg.AlertNumber != "" {
		execOpts = append(execOpts, actions.WithAlertNumber(cfg.AlertNumber))
	}
	exec := actions.NewExecutor(st, notifier, execOpts...)

	respHandler := messaging.NewResponseHandler(eng, ext, exec, st)

	sched := scheduler.NewScheduler()
	defer sched.Stop()
	if err := sched.AddJob(DefaultSweepCron, func() {
		removed := actionStore.SweepExpired()
		if removed > 0 {
			slog.Debug("api.Run: swept stale conversations", "removed", removed)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule staleness sweep: %w", err)
	}
	if err := sched.AddJob(DefaultReminderCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultJobTimeout)
		defer cancel()
		today := time.Now().Format("2006-01-02")
		if _, err := exec.RemindDueAssignments(ctx, today); err != nil {
			slog.Error("api.Run: assignment reminder job failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule assignment reminders: %w", err)
	}

	var msgService messaging.Service
	if cfg.WhatsApp {
		waClient, err := whatsapp.NewClient(waOpts...)
		if err != nil {
			return fmt.Errorf("failed to initialize WhatsApp client: %w", err)
		}
		svc := messaging.NewWhatsAppService(waClient)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := svc.Start(ctx); err != nil {
			return fmt.Errorf("failed to start WhatsApp service: %w", err)
		}
		defer svc.Stop()
		go respHandler.Run(ctx, svc)
		msgService = svc
		slog.Info("api.Run: WhatsApp channel enabled")
	}

	server := NewServer(st, eng, respHandler, msgService, apiOpts...)
	slog.Info("CoursePilot API running", "addr", server.addr)
	return http.ListenAndServe(server.addr, server.Handler())
}

// buildStore picks a backend from the configured DSN: Postgres or SQLite when
// a DSN is set, in-memory otherwise.
func buildStore(storeOpts []store.Option) (store.Store, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Info("api.buildStore: no DSN configured, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(cfg.DSN) == "postgres" {
		return store.NewPostgresStore(storeOpts...)
	}
	return store.NewSQLiteStore(storeOpts...)
}

// buildNotifier assembles delivery channels from the environment: SMTP email
// when SMTP_HOST is set, Twilio SMS when TWILIO_ACCOUNT_SID is set. Missing
// channels degrade to no-ops.
func buildNotifier() notify.Notifier {
	var email notify.EmailSender
	if os.Getenv("SMTP_HOST") != "" {
		smtpClient, err := notify.NewSMTPClient()
		if err != nil {
			slog.Warn("api.buildNotifier: SMTP configured but unusable", "error", err)
		} else {
			email = smtpClient
			slog.Info("api.buildNotifier: email notifications enabled")
		}
	}
	var sms notify.SMSSender
	if os.Getenv("TWILIO_ACCOUNT_SID") != "" {
		twilioClient, err := notify.NewTwilioClient()
		if err != nil {
			slog.Warn("api.buildNotifier: Twilio configured but unusable", "error", err)
		} else {
			sms = twilioClient
			slog.Info("api.buildNotifier: SMS notifications enabled")
		}
	}
	return notify.NewCompositeNotifier(email, sms)
}

// buildExtractor uses the OpenAI extractor when a key is configured and falls
// back to the deterministic keyword extractor otherwise.
func buildExtractor(extOpts []extractor.OpenAIOption) extractor.Extractor {
	ext, err := extractor.NewOpenAIExtractor(extOpts...)
	if err != nil {
		slog.Info("api.buildExtractor: OpenAI extractor unavailable, using keyword extractor", "reason", err)
		return extractor.NewKeywordExtractor()
	}
	slog.Info("api.buildExtractor: using OpenAI extractor")
	return ext
}
