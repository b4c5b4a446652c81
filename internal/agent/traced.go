package agent

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"mnemo/internal/llm"
	"mnemo/internal/trace"
)

type tracedGenerator struct {
	llm.Generator
}

func withTrace(g llm.Generator) llm.Generator {
	if g == nil {
		return nil
	}
	return &tracedGenerator{Generator: g}
}

func (t *tracedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := trace.Tracer().Start(ctx, "llm.generate",
		oteltrace.WithAttributes(
			attribute.Int("gen_ai.prompt.length", len(prompt)),
		),
	)
	defer span.End()

	sc := span.SpanContext()
	slog.Debug("generator span started", "trace_id", sc.TraceID(), "span_id", sc.SpanID())

	text, err := t.Generator.Generate(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return text, err
	}

	span.SetAttributes(attribute.Int("gen_ai.completion.length", len(text)))
	return text, nil
}
