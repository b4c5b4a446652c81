package history

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"mnemo/internal/eventstream"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// TimeFormat is the layout of Event.TS: UTC with microseconds and a Z suffix.
const TimeFormat = "2006-01-02T15:04:05.000000Z"

// Event is one logged turn. Field order is the on-disk key order.
type Event struct {
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
	Message string `json:"message"`
	TS      string `json:"ts"`
}

// Log is an append-only JSONL conversation log shared by all users.
type Log struct {
	mu        sync.RWMutex
	path      string
	now       func() time.Time
	publisher eventstream.Publisher
}

type Option func(*Log)

// WithPublisher publishes every appended event and every non-empty compaction.
// Publish errors are logged only.
func WithPublisher(p eventstream.Publisher) Option {
	return func(l *Log) { l.publisher = p }
}

// WithClock overrides the time source used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// Open returns a Log backed by the file at path. Nothing is created until
// the first append.
func Open(path string, opts ...Option) *Log {
	l := &Log{path: path, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Log) Path() string { return l.path }

// Append writes ev as one line at the end of the log, stamping TS if empty.
func (l *Log) Append(ctx context.Context, ev Event) error {
	if ev.TS == "" {
		ev.TS = l.now().UTC().Format(TimeFormat)
	}

	var line bytes.Buffer
	enc := json.NewEncoder(&line)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ev); err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	if err := l.write(line.Bytes()); err != nil {
		return err
	}

	if l.publisher != nil {
		event := eventstream.NewTurnAppendedEvent(ev.UserID, ev.Role, ev.Message, ev.TS)
		if err := l.publisher.PublishTurn(ctx, event); err != nil {
			slog.Warn("history: publishing turn", "user_id", ev.UserID, "error", err)
		}
	}
	return nil
}

func (l *Log) write(line []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("appending to log: %w", err)
	}
	return f.Close()
}

// Window returns the user's most recent limit events, oldest first.
func (l *Log) Window(_ context.Context, userID string, limit int) ([]Event, error) {
	if limit <= 0 {
		return []Event{}, nil
	}

	// Grows on demand; limit may far exceed the number of events.
	ring := make([]Event, 0, min(limit, 256))
	n := 0
	err := l.scan(func(ev Event) {
		if !visible(ev, userID) {
			return
		}
		if len(ring) < limit {
			ring = append(ring, ev)
		} else {
			ring[n%limit] = ev
		}
		n++
	})
	if err != nil {
		return nil, err
	}

	if n <= limit {
		return ring, nil
	}
	start := n % limit
	out := make([]Event, 0, limit)
	out = append(out, ring[start:]...)
	return append(out, ring[:start]...), nil
}

// Export returns every event of the user, oldest first.
func (l *Log) Export(_ context.Context, userID string) ([]Event, error) {
	out := []Event{}
	err := l.scan(func(ev Event) {
		if visible(ev, userID) {
			out = append(out, ev)
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func visible(ev Event, userID string) bool {
	return ev.UserID == userID && (ev.Role == RoleUser || ev.Role == RoleAssistant)
}

// scan calls fn for every parseable line. A missing log has no lines.
func (l *Log) scan(fn func(Event)) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for lineNo := 1; ; lineNo++ {
		line, err := r.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			var ev Event
			if jerr := json.Unmarshal(line, &ev); jerr != nil {
				slog.Debug("history: skipping unparseable line", "path", l.path, "line", lineNo, "error", jerr)
			} else {
				fn(ev)
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading log: %w", err)
		}
	}
}

// Compact rewrites the log without the user's events and reports how many
// lines were removed. A line belongs to the user when it is a JSON object
// whose user_id is the user's id, whatever its other fields hold; every
// other line is kept as is.
func (l *Log) Compact(ctx context.Context, userID string) (int, error) {
	removed, err := l.compact(userID)
	if err != nil || removed == 0 {
		return removed, err
	}

	if l.publisher != nil {
		if err := l.publisher.PublishCleared(ctx, eventstream.NewHistoryClearedEvent(userID, removed)); err != nil {
			slog.Warn("history: publishing clear", "user_id", userID, "error", err)
		}
	}
	return removed, nil
}

func (l *Log) compact(userID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading log: %w", err)
	}

	var (
		kept    bytes.Buffer
		removed int
	)
	for len(data) > 0 {
		line := data
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i+1], data[i+1:]
		} else {
			data = nil
		}

		if owner, ok := lineOwner(line); ok && owner == userID {
			removed++
			continue
		}
		kept.Write(line)
		if line[len(line)-1] != '\n' {
			kept.WriteByte('\n')
		}
	}

	if removed == 0 {
		return 0, nil
	}
	if err := replaceFile(l.path, kept.Bytes()); err != nil {
		return 0, fmt.Errorf("rewriting log: %w", err)
	}
	return removed, nil
}

// lineOwner reads only the user_id of a log line.
func lineOwner(line []byte) (string, bool) {
	var rec map[string]json.RawMessage
	if err := json.Unmarshal(line, &rec); err != nil {
		return "", false
	}
	raw, ok := rec["user_id"]
	if !ok {
		return "", false
	}
	var userID string
	if err := json.Unmarshal(raw, &userID); err != nil {
		return "", false
	}
	return userID, true
}

func replaceFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
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
