package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/backend"
)

// Handle is the capability a request uses to act on its session: the
// provider for identity and the backend client bound to the session's
// cookies.
type Handle struct {
	ID       string
	Provider *Provider
	API      *backend.Client

	store    Store
	mu       sync.Mutex
	lastSeen time.Time
}

// SaveCookies persists the backend cookies currently held by the client
func (h *Handle) SaveCookies(ctx context.Context) error {
	return SaveCookies(ctx, h.store, h.ID, h.API.Cookies())
}

func (h *Handle) touch(now time.Time) {
	h.mu.Lock()
	h.lastSeen = now
	h.mu.Unlock()
}

func (h *Handle) idleSince(cutoff time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastSeen.Before(cutoff)
}

// Manager owns the live session handles of the process
type Manager struct {
	store   Store
	backend backend.Options
	idle    time.Duration
	logger  zerolog.Logger

	mu      sync.Mutex
	handles map[string]*Handle

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// anonymousIdle bounds how long a handle without a user is kept
const anonymousIdle = 5 * time.Minute

// NewManager creates a manager. Handles unused for longer than idle are
// dropped by Sweep; handles without a user go after anonymousIdle. All
// handles share one backend transport and differ only by cookie jar.
func NewManager(store Store, opts backend.Options, idle time.Duration, logger zerolog.Logger) *Manager {
	if opts.Transport == nil {
		opts.Transport = backend.NewTransport(opts.InsecureSkipVerify)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		store:   store,
		backend: opts,
		idle:    idle,
		logger:  logger,
		handles: make(map[string]*Handle),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Open returns the live handle for id, creating it when needed. A new
// handle restores the backend cookies of the session and starts its
// mount-time revalidation in the background.
func (m *Manager) Open(ctx context.Context, id string) (*Handle, error) {
	now := time.Now()

	m.mu.Lock()
	if h, ok := m.handles[id]; ok {
		m.mu.Unlock()
		h.touch(now)
		return h, nil
	}
	m.mu.Unlock()

	cookies, err := LoadCookies(ctx, m.store, id)
	if err != nil {
		m.logger.Warn().Err(err).Str("session_id", id).Msg("Failed to restore backend cookies")
	}

	opts := m.backend
	opts.Cookies = cookies
	api, err := backend.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	h := &Handle{
		ID:       id,
		API:      api,
		Provider: NewProvider(id, api, m.store, m.logger),
		store:    m.store,
		lastSeen: now,
	}

	m.mu.Lock()
	if existing, ok := m.handles[id]; ok {
		// Lost a race with a concurrent Open
		m.mu.Unlock()
		existing.touch(now)
		return existing, nil
	}
	m.handles[id] = h
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.revalidate(h)
	}()

	return h, nil
}

func (m *Manager) revalidate(h *Handle) {
	state, err := h.Provider.RefetchUser(m.ctx)
	switch {
	case errors.Is(err, ErrSuperseded):
		return
	case err != nil:
		m.logger.Warn().Err(err).Str("session_id", h.ID).Msg("Session revalidation failed")
		return
	}

	if err := h.SaveCookies(m.ctx); err != nil {
		m.logger.Warn().Err(err).Str("session_id", h.ID).Msg("Failed to persist backend cookies")
	}

	event := m.logger.Debug().Str("session_id", h.ID).Bool("authenticated", state.User != nil)
	if state.User != nil {
		event = event.Str("role", state.User.Role.String())
	}
	event.Msg("Session revalidated")
}

// Logout logs the session out and, on success, tears its handle down.
// A failed logout leaves the handle in place.
func (m *Manager) Logout(ctx context.Context, h *Handle) error {
	if err := h.Provider.Logout(ctx); err != nil {
		return err
	}

	if err := SaveCookies(ctx, m.store, h.ID, nil); err != nil {
		m.logger.Warn().Err(err).Str("session_id", h.ID).Msg("Failed to clear backend cookies")
	}

	m.mu.Lock()
	if m.handles[h.ID] == h {
		delete(m.handles, h.ID)
	}
	m.mu.Unlock()
	return nil
}

// Sweep drops handles idle since before now minus the idle window, and
// settled handles without a user idle for anonymousIdle, and returns how
// many were dropped. Their stored state is kept; reopening revalidates it.
func (m *Manager) Sweep(now time.Time) int {
	cutoff := now.Add(-m.idle)
	anonymousCutoff := now.Add(-min(m.idle, anonymousIdle))

	m.mu.Lock()
	defer m.mu.Unlock()

	dropped := 0
	for id, h := range m.handles {
		expired := h.idleSince(cutoff)
		if !expired && h.idleSince(anonymousCutoff) {
			state := h.Provider.State()
			expired = state.User == nil && !state.Loading
		}
		if expired {
			delete(m.handles, id)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of live handles
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handles)
}

// Close cancels in-flight revalidations and waits for them to finish
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()

	m.mu.Lock()
	m.handles = make(map[string]*Handle)
	m.mu.Unlock()

	if t, ok := m.backend.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
}
