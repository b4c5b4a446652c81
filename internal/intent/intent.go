// Package intent classifies an utterance as a memory write, a memory read,
// or general chat.
package intent

import (
	"regexp"
	"strings"
)

type Kind int

const (
	KindChat Kind = iota
	KindRemember
	KindRecall
)

func (k Kind) String() string {
	switch k {
	case KindRemember:
		return "remember"
	case KindRecall:
		return "recall"
	default:
		return "chat"
	}
}

// Intent is the classification of one message. Key and Value are raw
// captures; callers normalize keys.
type Intent struct {
	Kind  Kind
	Key   string
	Value string
}

type grammar struct {
	kind    Kind
	pattern *regexp.Regexp
}

var defaultGrammars = []grammar{
	{
		kind:    KindRemember,
		pattern: regexp.MustCompile(`(?i)^\s*(?:please\s+)?(?:remember\s+(?:that\s+)?)?my\s+(.+?)\s+(?:is|=)\s+(.+?)\s*$`),
	},
	{
		kind:    KindRecall,
		pattern: regexp.MustCompile(`(?i)^\s*(?:what|when)(?:\s+is|['’]s)\s+my\s+(.+?)\s*\??\s*$`),
	},
}

// Classifier evaluates its grammars in order; the first match wins.
type Classifier struct {
	grammars []grammar
}

func New() *Classifier {
	return &Classifier{grammars: defaultGrammars}
}

func (c *Classifier) Classify(message string) Intent {
	for _, g := range c.grammars {
		m := g.pattern.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		in := Intent{Kind: g.kind, Key: strings.TrimSpace(m[1])}
		if len(m) > 2 {
			in.Value = strings.TrimSpace(m[2])
		}
		return in
	}
	return Intent{Kind: KindChat}
}
