package session

import (
	"context"
	"sync"
	"time"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/models"
)

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: map[string]map[string][]byte{}}
}

func (s *memoryStore) Load(_ context.Context, sessionID, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[sessionID][key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte{}, v...), nil
}

func (s *memoryStore) Save(_ context.Context, sessionID, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries[sessionID] == nil {
		s.entries[sessionID] = map[string][]byte{}
	}
	s.entries[sessionID][key] = append([]byte{}, value...)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, sessionID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries[sessionID], key)
	return nil
}

func (s *memoryStore) Purge(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (s *memoryStore) has(sessionID, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[sessionID][key]
	return ok
}

type fetchResult struct {
	resp *models.APIResponse[*models.User]
	err  error
}

// scriptedSource hands each CurrentUser call a channel the test resolves
type scriptedSource struct {
	calls chan chan fetchResult

	logoutStatus int
	logoutErr    error
}

func newScriptedSource() *scriptedSource {
	return &scriptedSource{calls: make(chan chan fetchResult, 8), logoutStatus: 200}
}

func (s *scriptedSource) CurrentUser(ctx context.Context) (*models.APIResponse[*models.User], error) {
	reply := make(chan fetchResult, 1)
	s.calls <- reply
	select {
	case r := <-reply:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *scriptedSource) Logout(context.Context) (int, error) {
	return s.logoutStatus, s.logoutErr
}

// next waits for the next CurrentUser call
func (s *scriptedSource) next() chan fetchResult {
	select {
	case reply := <-s.calls:
		return reply
	case <-time.After(2 * time.Second):
		panic("no CurrentUser call arrived")
	}
}

// staticSource answers every call with the same response
type staticSource struct {
	resp         *models.APIResponse[*models.User]
	err          error
	logoutStatus int
}

func (s staticSource) CurrentUser(context.Context) (*models.APIResponse[*models.User], error) {
	return s.resp, s.err
}

func (s staticSource) Logout(context.Context) (int, error) {
	return s.logoutStatus, nil
}

func donor() *models.User {
	return &models.User{ID: 1, FirstName: "Ada", UserName: "ada", Role: models.RoleDonor, BloodType: "O+"}
}

func okResponse(u *models.User) *models.APIResponse[*models.User] {
	return &models.APIResponse[*models.User]{Data: u, Errors: []models.APIError{}}
}
