package llm

import (
	"context"
	"errors"
	"log/slog"

	"mnemo/internal/config"
)

// Chain asks each generator in order and returns the first non-empty reply.
// Failures fall through to the next generator without retrying.
type Chain struct {
	generators []Generator
}

func NewChain(generators ...Generator) *Chain {
	return &Chain{generators: generators}
}

// NewChainFromConfig builds one provider per name in cfg.Providers. Names
// without an [llm.<name>] section are skipped.
func NewChainFromConfig(cfg *config.Config, opts ...OpenAIOption) *Chain {
	var gens []Generator
	for _, name := range cfg.Providers {
		c, ok := cfg.LLMs[name]
		if !ok {
			slog.Warn("llm: provider has no config section", "provider", name)
			continue
		}
		p := FromConfig(name, c, opts...)
		slog.Debug("llm: provider configured", "provider", p.Name(), "model", p.Model())
		gens = append(gens, p)
	}
	return NewChain(gens...)
}

func (c *Chain) Len() int { return len(c.generators) }

func (c *Chain) Generate(ctx context.Context, prompt string) (string, error) {
	var errs []error
	for i, g := range c.generators {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := g.Generate(ctx, prompt)
		if err == nil && text != "" {
			return text, nil
		}
		if err == nil {
			err = ErrUnavailable
		}
		if !errors.Is(err, ErrUnavailable) {
			slog.Warn("llm: generator failed", "index", i, "error", err)
		}
		errs = append(errs, err)
	}
	return "", errors.Join(append([]error{ErrUnavailable}, errs...)...)
}
