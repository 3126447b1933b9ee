package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/models"
)

// ErrSuperseded is returned by RefetchUser when a newer call, or a
// successful logout, started after it. Its result was discarded.
var ErrSuperseded = errors.New("refetch superseded by a newer call")

// LogoutRejectedError is returned when the backend answers logout with a
// non-2xx status. The session stays logged in.
type LogoutRejectedError struct {
	Status int
}

func (e *LogoutRejectedError) Error() string {
	return fmt.Sprintf("logout rejected by backend (status %d)", e.Status)
}

// UserSource is the part of the backend the provider talks to
type UserSource interface {
	CurrentUser(ctx context.Context) (*models.APIResponse[*models.User], error)
	Logout(ctx context.Context) (int, error)
}

// State is what consumers read: who the user is and whether that is known
// yet. Loading is true only while a revalidation is in flight.
type State struct {
	User    *models.User      `json:"user"`
	Errors  []models.APIError `json:"errors"`
	Loading bool              `json:"loading"`
}

func (s State) clone() State {
	out := State{User: s.User.Clone(), Loading: s.Loading}
	out.Errors = append([]models.APIError{}, s.Errors...)
	return out
}

// Provider is the single writer of a session's State
type Provider struct {
	sessionID string
	source    UserSource
	store     Store
	logger    zerolog.Logger

	mu      sync.Mutex
	state   State
	gen     uint64
	changed chan struct{}
}

// NewProvider creates a provider in its mount state: loading, no user.
func NewProvider(sessionID string, source UserSource, store Store, logger zerolog.Logger) *Provider {
	return &Provider{
		sessionID: sessionID,
		source:    source,
		store:     store,
		logger:    logger.With().Str("session_id", sessionID).Logger(),
		state:     State{Errors: []models.APIError{}, Loading: true},
		changed:   make(chan struct{}),
	}
}

// Snapshot returns a copy of the current state and a channel that is
// closed on the next change.
func (p *Provider) Snapshot() (State, <-chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.clone(), p.changed
}

// State returns a copy of the current state
func (p *Provider) State() State {
	s, _ := p.Snapshot()
	return s
}

// setLocked replaces the state and wakes waiters. p.mu must be held.
func (p *Provider) setLocked(s State) {
	if s.Errors == nil {
		s.Errors = []models.APIError{}
	}
	p.state = s
	close(p.changed)
	p.changed = make(chan struct{})
}

// RefetchUser revalidates the session against the backend. Only the most
// recently started call applies its result; older calls return
// ErrSuperseded. A transport or server failure ends loading, keeps the
// current user and is returned.
func (p *Provider) RefetchUser(ctx context.Context) (State, error) {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.setLocked(State{User: p.state.User, Loading: true})
	p.mu.Unlock()

	resp, err := p.source.CurrentUser(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen {
		p.logger.Debug().Uint64("generation", gen).Msg("Discarding superseded refetch")
		return p.state.clone(), ErrSuperseded
	}

	if err != nil {
		p.setLocked(State{User: p.state.User, Loading: false})
		return p.state.clone(), fmt.Errorf("failed to fetch current user: %w", err)
	}

	if resp.HasErrors {
		p.setLocked(State{Errors: resp.Errors, Loading: false})
		return p.state.clone(), nil
	}

	user := resp.Data
	if user != nil {
		if err := saveSnapshot(ctx, p.store, p.sessionID, user); err != nil {
			p.logger.Warn().Err(err).Msg("Failed to persist user snapshot")
		}
	}
	p.setLocked(State{User: user, Errors: resp.Errors, Loading: false})
	return p.state.clone(), nil
}

// Logout ends the backend session. On a 2xx status the user, errors and
// stored snapshot are cleared. Any other status yields a
// *LogoutRejectedError and the state is left as it was.
func (p *Provider) Logout(ctx context.Context) error {
	status, err := p.source.Logout(ctx)
	if err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	if status < 200 || status > 299 {
		return &LogoutRejectedError{Status: status}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// In-flight refetches belong to the old backend session. The snapshot
	// is removed under the lock so none of them can write it back.
	p.gen++
	if err := p.store.Delete(ctx, p.sessionID, SnapshotKey); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to clear user snapshot")
	}
	p.setLocked(State{Loading: false})
	return nil
}
