package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	configDirName   = "bloodbridge"
	sessionFileName = "session.json"
)

type fileEntry struct {
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// fileData is the on-disk layout: session id -> key -> entry
type fileData struct {
	Sessions map[string]map[string]fileEntry `json:"sessions"`
}

// FileStore keeps session entries in a JSON file. It is meant for a single
// local user, such as the CLI.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// DefaultFilePath returns ~/.config/bloodbridge/session.json
func DefaultFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", configDirName, sessionFileName), nil
}

// NewFileStore creates a store backed by the file at path. The file is
// created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) read() (*fileData, error) {
	data := &fileData{Sessions: map[string]map[string]fileEntry{}}

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	if data.Sessions == nil {
		data.Sessions = map[string]map[string]fileEntry{}
	}
	return data, nil
}

func (s *FileStore) write(data *fileData) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session file: %w", err)
	}

	// Session cookies live here
	if err := os.WriteFile(s.path, raw, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context, sessionID, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}

	entry, ok := data.Sessions[sessionID][key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(entry.Value), nil
}

func (s *FileStore) Save(_ context.Context, sessionID, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return err
	}

	entries := data.Sessions[sessionID]
	if entries == nil {
		entries = map[string]fileEntry{}
		data.Sessions[sessionID] = entries
	}
	entries[key] = fileEntry{Value: string(value), UpdatedAt: time.Now().UTC()}

	return s.write(data)
}

func (s *FileStore) Delete(_ context.Context, sessionID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return err
	}

	entries, ok := data.Sessions[sessionID]
	if !ok {
		return nil
	}
	if _, ok := entries[key]; !ok {
		return nil
	}

	delete(entries, key)
	if len(entries) == 0 {
		delete(data.Sessions, sessionID)
	}
	return s.write(data)
}

func (s *FileStore) Purge(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return 0, err
	}

	var removed int64
	for sessionID, entries := range data.Sessions {
		for key, entry := range entries {
			if entry.UpdatedAt.Before(before) {
				delete(entries, key)
				removed++
			}
		}
		if len(entries) == 0 {
			delete(data.Sessions, sessionID)
		}
	}

	if removed == 0 {
		return 0, nil
	}
	return removed, s.write(data)
}
