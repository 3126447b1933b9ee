// Package session holds per-browser authentication state: the persistent
// session slot, the provider that revalidates the current user against the
// backend, and the manager that hands out session handles.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/models"
)

const (
	// SnapshotKey holds the last backend-confirmed user of the session
	SnapshotKey = "currentUser"

	// CookiesKey holds the backend session cookies
	CookiesKey = "backendCookies"
)

// ErrNotFound is returned by Store.Load when the key is absent
var ErrNotFound = errors.New("session key not found")

// Store is the persistent key/value slot of a session. Values are opaque
// serialized payloads.
type Store interface {
	Load(ctx context.Context, sessionID, key string) ([]byte, error)
	Save(ctx context.Context, sessionID, key string, value []byte) error
	Delete(ctx context.Context, sessionID, key string) error

	// Purge removes every entry last written before the cutoff and
	// returns how many were removed
	Purge(ctx context.Context, before time.Time) (int64, error)
}

// LoadSnapshot reads the cached user of a session for optimistic
// rendering. The snapshot is never authoritative; a nil user and nil error
// mean nothing is cached.
func LoadSnapshot(ctx context.Context, store Store, sessionID string) (*models.User, error) {
	data, err := store.Load(ctx, sessionID, SnapshotKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user snapshot: %w", err)
	}
	return &user, nil
}

func saveSnapshot(ctx context.Context, store Store, sessionID string, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user snapshot: %w", err)
	}
	return store.Save(ctx, sessionID, SnapshotKey, data)
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LoadCookies returns the backend cookies saved for a session
func LoadCookies(ctx context.Context, store Store, sessionID string) ([]*http.Cookie, error) {
	data, err := store.Load(ctx, sessionID, CookiesKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode backend cookies: %w", err)
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return cookies, nil
}

// SaveCookies stores the backend cookies of a session. An empty list
// removes the entry.
func SaveCookies(ctx context.Context, store Store, sessionID string, cookies []*http.Cookie) error {
	if len(cookies) == 0 {
		return store.Delete(ctx, sessionID, CookiesKey)
	}

	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to encode backend cookies: %w", err)
	}
	return store.Save(ctx, sessionID, CookiesKey, data)
}
