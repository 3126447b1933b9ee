package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/backend"
)

func newFakeBackend(t *testing.T, logoutStatus int) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var fetches atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/get-current-user", func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		cookie, err := r.Cookie("session")
		if err != nil || cookie.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"data": null, "errors": [{"property": "", "message": "not logged in"}], "hasErrors": true}`))
			return
		}
		w.Write([]byte(`{"data": {"id": 1, "userName": "ada", "role": "Donor"}, "errors": [], "hasErrors": false}`))
	})
	mux.HandleFunc("/api/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(logoutStatus)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &fetches
}

func waitSettled(t *testing.T, p *Provider) State {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		state, changed := p.Snapshot()
		if !state.Loading {
			return state
		}
		select {
		case <-changed:
		case <-deadline:
			t.Fatal("provider still loading")
		}
	}
}

func TestManagerOpen_RestoresCookiesAndRevalidates(t *testing.T) {
	srv, _ := newFakeBackend(t, http.StatusOK)
	store := newMemoryStore()
	ctx := context.Background()
	require.NoError(t, SaveCookies(ctx, store, testSessionID, []*http.Cookie{{Name: "session", Value: "abc"}}))

	m := NewManager(store, backend.Options{BaseURL: srv.URL}, time.Hour, zerolog.Nop())
	defer m.Close()

	h, err := m.Open(ctx, testSessionID)
	require.NoError(t, err)
	assert.Equal(t, testSessionID, h.ID)

	state := waitSettled(t, h.Provider)
	require.NotNil(t, state.User)
	assert.Equal(t, "ada", state.User.UserName)
}

func TestManagerOpen_ReusesLiveHandle(t *testing.T) {
	srv, fetches := newFakeBackend(t, http.StatusOK)
	m := NewManager(newMemoryStore(), backend.Options{BaseURL: srv.URL}, time.Hour, zerolog.Nop())
	defer m.Close()

	first, err := m.Open(context.Background(), testSessionID)
	require.NoError(t, err)
	waitSettled(t, first.Provider)

	second, err := m.Open(context.Background(), testSessionID)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), fetches.Load())
	assert.Equal(t, 1, m.Len())
}

func TestManagerOpen_WithoutCookiesIsUnauthenticated(t *testing.T) {
	srv, _ := newFakeBackend(t, http.StatusOK)
	m := NewManager(newMemoryStore(), backend.Options{BaseURL: srv.URL}, time.Hour, zerolog.Nop())
	defer m.Close()

	h, err := m.Open(context.Background(), testSessionID)
	require.NoError(t, err)

	state := waitSettled(t, h.Provider)
	assert.Nil(t, state.User)
	assert.Len(t, state.Errors, 1)
}

func TestManagerLogout_DropsHandleOnSuccess(t *testing.T) {
	srv, _ := newFakeBackend(t, http.StatusOK)
	store := newMemoryStore()
	ctx := context.Background()
	require.NoError(t, SaveCookies(ctx, store, testSessionID, []*http.Cookie{{Name: "session", Value: "abc"}}))

	m := NewManager(store, backend.Options{BaseURL: srv.URL}, time.Hour, zerolog.Nop())
	defer m.Close()

	h, err := m.Open(ctx, testSessionID)
	require.NoError(t, err)
	waitSettled(t, h.Provider)

	require.NoError(t, m.Logout(ctx, h))
	assert.Equal(t, 0, m.Len())
	assert.False(t, store.has(testSessionID, CookiesKey))
	assert.False(t, store.has(testSessionID, SnapshotKey))
}

func TestManagerLogout_KeepsHandleOnRejection(t *testing.T) {
	srv, _ := newFakeBackend(t, http.StatusServiceUnavailable)
	store := newMemoryStore()
	ctx := context.Background()
	require.NoError(t, SaveCookies(ctx, store, testSessionID, []*http.Cookie{{Name: "session", Value: "abc"}}))

	m := NewManager(store, backend.Options{BaseURL: srv.URL}, time.Hour, zerolog.Nop())
	defer m.Close()

	h, err := m.Open(ctx, testSessionID)
	require.NoError(t, err)
	waitSettled(t, h.Provider)

	var rejected *LogoutRejectedError
	require.ErrorAs(t, m.Logout(ctx, h), &rejected)
	assert.Equal(t, 1, m.Len())
	assert.NotNil(t, h.Provider.State().User)
	assert.True(t, store.has(testSessionID, CookiesKey))
}

func TestManagerSweep_DropsIdleHandles(t *testing.T) {
	srv, _ := newFakeBackend(t, http.StatusOK)
	m := NewManager(newMemoryStore(), backend.Options{BaseURL: srv.URL}, time.Minute, zerolog.Nop())
	defer m.Close()

	h, err := m.Open(context.Background(), testSessionID)
	require.NoError(t, err)
	waitSettled(t, h.Provider)

	assert.Equal(t, 0, m.Sweep(time.Now()))
	assert.Equal(t, 1, m.Sweep(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 0, m.Len())
}

func TestManagerSweep_DropsAnonymousHandlesEarly(t *testing.T) {
	srv, _ := newFakeBackend(t, http.StatusOK)
	store := newMemoryStore()
	ctx := context.Background()
	require.NoError(t, SaveCookies(ctx, store, testSessionID, []*http.Cookie{{Name: "session", Value: "abc"}}))

	m := NewManager(store, backend.Options{BaseURL: srv.URL}, time.Hour, zerolog.Nop())
	defer m.Close()
	assert.NotNil(t, m.backend.Transport)

	signedIn, err := m.Open(ctx, testSessionID)
	require.NoError(t, err)
	anonymous, err := m.Open(ctx, "01J9Z8Y7X6W5V4T3S2R1Q0P9N9")
	require.NoError(t, err)
	require.NotNil(t, waitSettled(t, signedIn.Provider).User)
	require.Nil(t, waitSettled(t, anonymous.Provider).User)

	assert.Equal(t, 0, m.Sweep(time.Now()))
	assert.Equal(t, 1, m.Sweep(time.Now().Add(anonymousIdle+time.Minute)))
	assert.Equal(t, 1, m.Len())

	reopened, err := m.Open(ctx, testSessionID)
	require.NoError(t, err)
	assert.Same(t, signedIn, reopened)
}
