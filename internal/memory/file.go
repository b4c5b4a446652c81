package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore keeps every user's facts in memory and rewrites the whole JSON
// file on each change. One mutex covers the map and the flush.
type FileStore struct {
	mu    sync.Mutex
	path  string
	facts map[string]map[string]string
}

// NewFileStore loads the fact file at path. A missing or unparseable file
// yields an empty store.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating memory directory: %w", err)
	}
	return &FileStore{path: path, facts: load(path)}, nil
}

func load(path string) map[string]map[string]string {
	facts := make(map[string]map[string]string)

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("memory: reading fact file", "path", path, "error", err)
		}
		return facts
	}

	if err := json.Unmarshal(data, &facts); err != nil {
		slog.Warn("memory: fact file is corrupt, starting empty", "path", path, "error", err)
		return make(map[string]map[string]string)
	}
	if facts == nil {
		facts = make(map[string]map[string]string)
	}
	for userID, user := range facts {
		if user == nil {
			delete(facts, userID)
		}
	}
	return facts
}

func (s *FileStore) Remember(_ context.Context, userID, key, value string) error {
	k := Normalize(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	user, hadUser := s.facts[userID]
	if user == nil {
		user = make(map[string]string)
		s.facts[userID] = user
	}
	prev, hadKey := user[k]
	user[k] = strings.TrimSpace(value)

	if err := s.flush(); err != nil {
		// Undo so memory never holds what the file does not.
		switch {
		case hadKey:
			user[k] = prev
		case !hadUser:
			delete(s.facts, userID)
		default:
			delete(user, k)
		}
		return err
	}
	return nil
}

func (s *FileStore) Recall(_ context.Context, userID, key string) (string, bool, error) {
	k := Normalize(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.facts[userID][k]
	return v, ok, nil
}

func (s *FileStore) List(_ context.Context, userID string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.facts[userID]))
	maps.Copy(out, s.facts[userID])
	return out, nil
}

func (s *FileStore) Forget(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.facts[userID]
	if !ok {
		return nil
	}
	delete(s.facts, userID)
	if err := s.flush(); err != nil {
		s.facts[userID] = user
		return err
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// flush must be called with s.mu held.
func (s *FileStore) flush() error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.facts); err != nil {
		return fmt.Errorf("encoding facts: %w", err)
	}
	if err := writeFileAtomic(s.path, buf.Bytes()); err != nil {
		return fmt.Errorf("writing fact file: %w", err)
	}
	return nil
}

// writeFileAtomic writes data to a temp file beside path and renames it over
// path, so readers see either the old or the new content.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
