package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"mnemo/internal/db"
)

// SQLiteStore keeps facts in the facts table of a SQLite database.
type SQLiteStore struct {
	mu       sync.Mutex
	database *db.DB
	q        *db.Queries
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening fact database: %w", err)
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrating fact database: %w", err)
	}
	return &SQLiteStore{database: database, q: db.New(database.Conn())}, nil
}

func (s *SQLiteStore) Remember(ctx context.Context, userID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.q.UpsertFact(ctx, db.UpsertFactParams{
		UserID: userID,
		Key:    Normalize(key),
		Value:  strings.TrimSpace(value),
	})
}

func (s *SQLiteStore) Recall(ctx context.Context, userID, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.q.GetFact(ctx, db.GetFactParams{UserID: userID, Key: Normalize(key)})
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *SQLiteStore) List(ctx context.Context, userID string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.q.ListFacts(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, f := range rows {
		out[f.Key] = f.Value
	}
	return out, nil
}

func (s *SQLiteStore) Forget(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.q.DeleteFacts(ctx, userID)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.database.Close()
}
