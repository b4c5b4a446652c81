// Package llm produces free-text answers from OpenAI-compatible chat endpoints.
package llm

import (
	"context"
	"errors"
)

// ErrUnavailable means no answer could be produced: no key configured, the
// provider failed, or it returned an empty reply.
var ErrUnavailable = errors.New("answer generator unavailable")

// Generator turns a prompt into a reply.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
