// Package engine implements the multi-turn conversational action engine: a
// keyed store of in-flight actions, a correction detector, and a completion
// and prompt generator. The engine consumes candidates produced by an external
// intent extractor; it performs no language understanding itself.
package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/CampusLoop/CoursePilot/internal/models"
)

// DefaultStalenessWindow is the idle time after which an in-flight action is
// silently discarded. Expiry is not an error: a stale follow-up is treated as
// a fresh start.
const DefaultStalenessWindow = 30 * time.Minute

// Opts holds configuration options for the ActionStore.
type Opts struct {
	StalenessWindow time.Duration
	Now             func() time.Time
}

// StoreOption defines a configuration option for the ActionStore.
type StoreOption func(*Opts)

// WithStalenessWindow sets the idle window after which entries expire.
func WithStalenessWindow(d time.Duration) StoreOption {
	return func(o *Opts) { o.StalenessWindow = d }
}

// WithClock injects the time source, primarily for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(o *Opts) { o.Now = now }
}

// ActionStore holds, per conversation, the in-flight action and the parameters
// collected so far. It is safe for concurrent use: operations on the same
// conversation are serialized through a per-key mutex, while operations on
// distinct conversations never block one another.
type ActionStore struct {
	mu        sync.Mutex // guards entries and locks maps only
	entries   map[string]*models.OngoingAction
	locks     map[string]*sync.Mutex
	staleness time.Duration
	now       func() time.Time
}

// NewActionStore creates an ActionStore, applying any provided options.
func NewActionStore(opts ...StoreOption) *ActionStore {
	cfg := Opts{
		StalenessWindow: DefaultStalenessWindow,
		Now:             time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("ActionStore created", "staleness_window", cfg.StalenessWindow)
	return &ActionStore{
		entries:   make(map[string]*models.OngoingAction),
		locks:     make(map[string]*sync.Mutex),
		staleness: cfg.StalenessWindow,
		now:       cfg.Now,
	}
}

// lockConversation acquires the per-conversation mutex and returns its unlock
// function. The map mutex is held only long enough to find or create the key
// lock, so distinct conversations proceed in parallel.
func (s *ActionStore) lockConversation(conversationID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[conversationID] = lock
	}
	s.mu.Unlock()
	lock.Lock()
	return lock.Unlock
}

// getEntry returns the live entry for conversationID, evicting it first if it
// has passed the staleness window. Caller must hold the conversation lock.
func (s *ActionStore) getEntry(conversationID string) *models.OngoingAction {
	s.mu.Lock()
	entry, ok := s.entries[conversationID]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	if s.now().Sub(entry.LastUpdatedAt) > s.staleness {
		slog.Debug("ActionStore evicting stale entry", "conversationID", conversationID, "action", entry.Action)
		s.mu.Lock()
		delete(s.entries, conversationID)
		s.mu.Unlock()
		return nil
	}
	return entry
}

// Start creates the entry for conversationID, silently replacing any prior
// one: starting a new action always supersedes the action in flight. Initial
// parameters may be nil. Returns models.ErrUnknownActionKind for kinds outside
// the declared set.
func (s *ActionStore) Start(conversationID string, kind models.ActionKind, initial map[string]string) (*models.OngoingAction, error) {
	unlock := s.lockConversation(conversationID)
	defer unlock()

	collected := make(map[string]string, len(initial))
	for k, v := range initial {
		collected[k] = v
	}
	missing, err := models.MissingParameters(kind, collected)
	if err != nil {
		slog.Warn("ActionStore.Start: unknown action kind", "conversationID", conversationID, "kind", kind)
		return nil, err
	}

	now := s.now()
	entry := &models.OngoingAction{
		ConversationID:      conversationID,
		Action:              kind,
		CollectedParameters: collected,
		MissingParameters:   missing,
		CreatedAt:           now,
		LastUpdatedAt:       now,
	}
	s.mu.Lock()
	s.entries[conversationID] = entry
	s.mu.Unlock()

	slog.Debug("ActionStore.Start: entry stored", "conversationID", conversationID, "action", kind, "missing", len(missing))
	return copyAction(entry), nil
}

// Get retrieves the current OngoingAction for conversationID, or ok=false if
// none exists or the entry has expired.
func (s *ActionStore) Get(conversationID string) (*models.OngoingAction, bool) {
	unlock := s.lockConversation(conversationID)
	defer unlock()

	entry := s.getEntry(conversationID)
	if entry == nil {
		return nil, false
	}
	return copyAction(entry), true
}

// MergeParameters overwrites or adds each supplied key in the entry's
// collected parameters (last-write-wins) and recomputes the missing list.
// Returns models.ErrNoActiveAction if conversationID has no live entry.
func (s *ActionStore) MergeParameters(conversationID string, params map[string]string) (*models.OngoingAction, error) {
	unlock := s.lockConversation(conversationID)
	defer unlock()

	entry := s.getEntry(conversationID)
	if entry == nil {
		slog.Debug("ActionStore.MergeParameters: no active action", "conversationID", conversationID)
		return nil, models.ErrNoActiveAction
	}

	for k, v := range params {
		entry.CollectedParameters[k] = v
	}
	missing, err := models.MissingParameters(entry.Action, entry.CollectedParameters)
	if err != nil {
		return nil, err
	}
	entry.MissingParameters = missing
	entry.LastUpdatedAt = s.now()

	slog.Debug("ActionStore.MergeParameters: merged", "conversationID", conversationID, "merged_keys", len(params), "missing", len(missing))
	return copyAction(entry), nil
}

// Complete removes the entry for conversationID once the action has been
// executed or abandoned. Idempotent on a missing id.
func (s *ActionStore) Complete(conversationID string) {
	unlock := s.lockConversation(conversationID)
	defer unlock()

	s.mu.Lock()
	delete(s.entries, conversationID)
	s.mu.Unlock()
	slog.Debug("ActionStore.Complete: entry cleared", "conversationID", conversationID)
}

// SweepExpired evicts all entries idle past the staleness window and returns
// the number removed. Intended for a periodic background sweep; expiry is also
// applied on access.
func (s *ActionStore) SweepExpired() int {
	now := s.now()
	s.mu.Lock()
	var stale []string
	for id, entry := range s.entries {
		if now.Sub(entry.LastUpdatedAt) > s.staleness {
			stale = append(stale, id)
		}
	}
	s.mu.Unlock()

	// Evict under the per-conversation lock so a concurrent turn for the same
	// conversation cannot observe a half-removed entry.
	removed := 0
	for _, id := range stale {
		unlock := s.lockConversation(id)
		s.mu.Lock()
		entry, ok := s.entries[id]
		if ok && now.Sub(entry.LastUpdatedAt) > s.staleness {
			delete(s.entries, id)
			removed++
		}
		s.mu.Unlock()
		unlock()
	}
	if removed > 0 {
		slog.Info("ActionStore.SweepExpired: evicted stale conversations", "count", removed)
	}
	return removed
}

// Len reports the number of live entries. Used by stats reporting and tests.
func (s *ActionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// copyAction returns a deep copy so callers cannot mutate stored state.
func copyAction(a *models.OngoingAction) *models.OngoingAction {
	collected := make(map[string]string, len(a.CollectedParameters))
	for k, v := range a.CollectedParameters {
		collected[k] = v
	}
	missing := make([]string, len(a.MissingParameters))
	copy(missing, a.MissingParameters)
	out := *a
	out.CollectedParameters = collected
	out.MissingParameters = missing
	return &out
}
