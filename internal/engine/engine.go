package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/CampusLoop/CoursePilot/internal/models"
	"github.com/CampusLoop/CoursePilot/internal/timeparse"
)

// EngineOpts holds configuration options for the Engine.
type EngineOpts struct {
	CancelNotice bool
	Now          func() time.Time
}

// EngineOption defines a configuration option for the Engine.
type EngineOption func(*EngineOpts)

// WithCancelNotice controls whether superseding an in-flight action produces a
// user-facing "cancelling previous request" notice. Default is off: the
// engine favors responsiveness to the user's latest clear intent and drops
// abandoned state silently.
func WithCancelNotice(enabled bool) EngineOption {
	return func(o *EngineOpts) { o.CancelNotice = enabled }
}

// WithEngineClock injects the reference time used to resolve relative date
// expressions, primarily for tests.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(o *EngineOpts) { o.Now = now }
}

// Engine combines classification, merge, and completion check into a single
// per-turn entry point over an ActionStore. It holds no conversation state of
// its own; the store is injected so tests run against a fresh one.
type Engine struct {
	store        *ActionStore
	cancelNotice bool
	now          func() time.Time
}

// New creates an Engine over the given ActionStore.
func New(store *ActionStore, opts ...EngineOption) *Engine {
	cfg := EngineOpts{Now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{store: store, cancelNotice: cfg.CancelNotice, now: cfg.Now}
}

// Store exposes the underlying ActionStore for inspection endpoints and the
// periodic staleness sweep.
func (e *Engine) Store() *ActionStore {
	return e.store
}

// HandleTurn processes one extracted candidate for a conversation: classifies
// it against the stored ongoing action, merges or replaces state, and either
// returns the full parameter map ready for execution (clearing the stored
// entry) or the next prompt for the user. Every outcome is recoverable at the
// turn level; the worst case is asking the user again.
func (e *Engine) HandleTurn(ctx context.Context, conversationID string, candidate models.CorrectionCandidate) (models.TurnResult, error) {
	if err := ctx.Err(); err != nil {
		return models.TurnResult{}, err
	}

	result := models.TurnResult{ConversationID: conversationID}
	params := e.resolveParameters(candidate.Parameters)

	ongoing, _ := e.store.Get(conversationID)
	decision := Classify(candidate, ongoing)
	slog.Debug("Engine.HandleTurn: classified", "conversationID", conversationID, "decision", decision, "candidate_action", candidate.Action, "params", len(params))

	var entry *models.OngoingAction
	switch decision {
	case models.DecisionNewAction:
		if !models.IsValidActionKind(candidate.Action) {
			slog.Warn("Engine.HandleTurn: unrecognized action kind", "conversationID", conversationID, "kind", candidate.Action)
			result.Prompt = PromptNotUnderstood
			return result, nil
		}
		if ongoing != nil && e.cancelNotice {
			result.Notice = PromptCancelledPrevious
		}
		started, err := e.store.Start(conversationID, candidate.Action, params)
		if err != nil {
			return result, err
		}
		entry = started
		result.Decision = models.DecisionNewAction

	case models.DecisionContinuation, models.DecisionCorrection:
		if decision == models.DecisionCorrection {
			result.Notice = firstCorrectionNotice(ongoing, params)
		}
		merged, err := e.store.MergeParameters(conversationID, params)
		if errors.Is(err, models.ErrNoActiveAction) {
			// The entry expired between Get and merge. Treat the turn as a
			// fresh start so the user is asked again rather than failed.
			slog.Debug("Engine.HandleTurn: entry expired mid-turn, restarting", "conversationID", conversationID)
			if !models.IsValidActionKind(candidate.Action) {
				result.Notice = ""
				result.Prompt = PromptNotUnderstood
				return result, nil
			}
			merged, err = e.store.Start(conversationID, candidate.Action, params)
			decision = models.DecisionNewAction
		}
		if err != nil {
			return result, err
		}
		entry = merged
		result.Decision = decision
	}

	result.Action = entry.Action
	if entry.IsComplete() {
		kind, collected, err := e.store.Finalize(conversationID)
		if err != nil {
			return result, err
		}
		result.Ready = true
		result.Action = kind
		result.Parameters = collected
		slog.Info("Engine.HandleTurn: action ready", "conversationID", conversationID, "action", kind)
		return result, nil
	}

	if decision == models.DecisionNewAction {
		result.Prompt = startPrompt(entry)
	} else {
		result.Prompt = NextPrompt(entry)
	}
	slog.Debug("Engine.HandleTurn: prompting for next parameter", "conversationID", conversationID, "missing", entry.MissingParameters)
	return result, nil
}

// Cancel abandons any in-flight action for the conversation. Idempotent.
func (e *Engine) Cancel(conversationID string) {
	e.store.Complete(conversationID)
}

// resolveParameters resolves date- and time-typed parameter values to their
// absolute forms. Unresolved values are dropped so the parameter stays missing
// and the next prompt asks for it again.
func (e *Engine) resolveParameters(params map[string]string) map[string]string {
	resolved := make(map[string]string, len(params))
	for key, value := range params {
		switch models.ParameterType(key) {
		case models.ParameterTypeDate:
			date, err := timeparse.ResolveDate(value, e.now())
			if err != nil {
				slog.Debug("Engine.resolveParameters: dropping unresolved date", "key", key, "value", value)
				continue
			}
			resolved[key] = date
		case models.ParameterTypeTime:
			clock, err := timeparse.ResolveTime(value)
			if err != nil {
				slog.Debug("Engine.resolveParameters: dropping unresolved time", "key", key, "value", value)
				continue
			}
			resolved[key] = clock
		default:
			resolved[key] = value
		}
	}
	return resolved
}

// firstCorrectionNotice finds the first overwritten parameter, in the action's
// declared order, and builds the user-facing confirmation for it.
func firstCorrectionNotice(ongoing *models.OngoingAction, params map[string]string) string {
	if ongoing == nil {
		return ""
	}
	required, err := models.RequiredParameters(ongoing.Action)
	if err != nil {
		return ""
	}
	for _, key := range required {
		newValue, supplied := params[key]
		if !supplied {
			continue
		}
		if oldValue, collected := ongoing.CollectedParameters[key]; collected {
			if notice := correctionNotice(key, oldValue, newValue); notice != "" {
				return notice
			}
		}
	}
	return ""
}
