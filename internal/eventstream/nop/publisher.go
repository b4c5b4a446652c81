package nop

import (
	"context"

	"mnemo/internal/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishTurn validates input and otherwise does nothing.
func (p *Publisher) PublishTurn(_ context.Context, event *eventstream.TurnAppendedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	return nil
}

func (p *Publisher) PublishCleared(_ context.Context, event *eventstream.HistoryClearedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	return nil
}

func (p *Publisher) Close() error {
	return nil
}
