package memory

import (
	"context"
	"errors"
	"fmt"

	"mnemo/internal/config"
)

// ErrUnknownBackend is returned by Open for an unsupported memory backend.
var ErrUnknownBackend = errors.New("unknown memory backend")

// Store is a durable per-user fact store. Keys are normalized with Normalize
// on every call; values are trimmed on write.
type Store interface {
	// Remember upserts a fact and flushes it to stable storage before returning.
	Remember(ctx context.Context, userID, key, value string) error

	// Recall returns the stored value and whether it exists.
	Recall(ctx context.Context, userID, key string) (string, bool, error)

	// List returns a copy of the user's facts.
	List(ctx context.Context, userID string) (map[string]string, error)

	// Forget deletes every fact owned by the user.
	Forget(ctx context.Context, userID string) error

	Close() error
}

// Open builds the Store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.MemoryConfig) (Store, error) {
	switch cfg.Backend {
	case "file", "":
		return NewFileStore(cfg.Path)
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath)
	case "redis":
		return NewRedisStore(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
