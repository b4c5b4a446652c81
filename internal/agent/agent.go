package agent

import "context"

type ReplyKind string

const (
	ReplyPrompt    ReplyKind = "prompt"
	ReplyAck       ReplyKind = "ack"
	ReplyFound     ReplyKind = "found"
	ReplyNotFound  ReplyKind = "not_found"
	ReplyGenerated ReplyKind = "generated"
	ReplyFallback  ReplyKind = "fallback"
	ReplyError     ReplyKind = "error"
)

type Reply struct {
	Kind ReplyKind `json:"kind"`
	Text string    `json:"text"`
}

// Runner answers one user message.
type Runner interface {
	Run(ctx context.Context, userID string, message string) (Reply, error)
}
