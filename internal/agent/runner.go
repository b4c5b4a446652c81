package agent

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"mnemo/internal/history"
	"mnemo/internal/intent"
	"mnemo/internal/llm"
	"mnemo/internal/memory"
	"mnemo/internal/trace"
)

// EventLog is the part of history.Log the runner writes to.
type EventLog interface {
	Append(ctx context.Context, ev history.Event) error
}

type RunnerOption func(*ChatRunner)

// WithGenerator sets the answer generator for general chat. Without one
// every chat message gets the fallback reply.
func WithGenerator(g llm.Generator) RunnerOption {
	return func(r *ChatRunner) { r.generator = withTrace(g) }
}

func WithClassifier(c *intent.Classifier) RunnerOption {
	return func(r *ChatRunner) { r.classifier = c }
}

// ChatRunner routes a message to the fact store or the generator and
// records both sides of the turn in the event log.
type ChatRunner struct {
	store      memory.Store
	log        EventLog
	classifier *intent.Classifier
	generator  llm.Generator
}

func NewChatRunner(store memory.Store, log EventLog, opts ...RunnerOption) *ChatRunner {
	r := &ChatRunner{
		store:      store,
		log:        log,
		classifier: intent.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run never fails because of storage or generator errors; those degrade the
// reply. It only returns ctx's error when ctx is already done.
func (r *ChatRunner) Run(ctx context.Context, userID string, message string) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}

	msg := strings.TrimSpace(message)
	if msg == "" {
		return Reply{Kind: ReplyPrompt, Text: emptyMessageReply}, nil
	}

	ctx, span := trace.Tracer().Start(ctx, "agent.chat.run",
		oteltrace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("user.message.length", len(msg)),
		),
	)
	defer span.End()

	r.record(ctx, userID, history.RoleUser, msg)

	in := r.classifier.Classify(msg)
	span.SetAttributes(attribute.String("mnemo.intent", in.Kind.String()))

	var reply Reply
	switch in.Kind {
	case intent.KindRemember:
		reply = r.remember(ctx, userID, in.Key, in.Value)
	case intent.KindRecall:
		reply = r.recall(ctx, userID, in.Key)
	default:
		reply = r.chat(ctx, userID, msg)
	}
	span.SetAttributes(attribute.String("mnemo.reply.kind", string(reply.Kind)))

	r.record(ctx, userID, history.RoleAssistant, reply.Text)
	return reply, nil
}

func (r *ChatRunner) remember(ctx context.Context, userID, key, value string) Reply {
	if err := r.store.Remember(ctx, userID, key, value); err != nil {
		slog.Error("agent: saving fact", "user_id", userID, "key", memory.Normalize(key), "error", err)
		return Reply{Kind: ReplyError, Text: saveFailedReply}
	}
	return Reply{Kind: ReplyAck, Text: ackText(key, strings.TrimSpace(value))}
}

func (r *ChatRunner) recall(ctx context.Context, userID, key string) Reply {
	value, ok, err := r.store.Recall(ctx, userID, key)
	if err != nil {
		slog.Warn("agent: reading fact", "user_id", userID, "key", memory.Normalize(key), "error", err)
		ok = false
	}
	if ok && value != "" {
		return Reply{Kind: ReplyFound, Text: foundText(key, value)}
	}
	return Reply{Kind: ReplyNotFound, Text: notFoundText(key)}
}

func (r *ChatRunner) chat(ctx context.Context, userID, msg string) Reply {
	if r.generator == nil {
		return Reply{Kind: ReplyFallback, Text: fallbackText(msg)}
	}

	facts, err := r.store.List(ctx, userID)
	if err != nil {
		slog.Warn("agent: listing facts", "user_id", userID, "error", err)
		facts = nil
	}

	text, err := r.generator.Generate(ctx, BuildPrompt(facts, msg))
	if err != nil || text == "" {
		slog.Debug("agent: generator unavailable, using fallback", "user_id", userID, "error", err)
		return Reply{Kind: ReplyFallback, Text: fallbackText(msg)}
	}
	return Reply{Kind: ReplyGenerated, Text: text}
}

func (r *ChatRunner) record(ctx context.Context, userID, role, message string) {
	err := r.log.Append(ctx, history.Event{UserID: userID, Role: role, Message: message})
	if err != nil {
		slog.Error("agent: appending to history", "user_id", userID, "role", role, "error", err)
	}
}
