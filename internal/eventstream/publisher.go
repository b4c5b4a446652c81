package eventstream

import "context"

// Publisher publishes conversation log changes to an event stream backend.
type Publisher interface {
	PublishTurn(ctx context.Context, event *TurnAppendedEvent) error
	PublishCleared(ctx context.Context, event *HistoryClearedEvent) error
	Close() error
}
