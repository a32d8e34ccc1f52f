// Tracing instrumentation for the engine.
package engine

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/openclaw/agenthook/internal/engine"

// startRunSpan starts a span for a single-agent run.
func startRunSpan(ctx context.Context, agentName, event string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "run."+agentName)
	span.SetAttributes(
		attribute.String("run.agent", agentName),
		attribute.String("run.event", event),
	)
	return ctx, span
}

// startEventSpan starts a span for an event-wide invocation.
func startEventSpan(ctx context.Context, event string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "event."+event)
	span.SetAttributes(attribute.String("event.type", event))
	return ctx, span
}

// endSpan ends the span, recording err if set.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
	span.End()
}
