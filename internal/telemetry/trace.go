package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// NewTracerProvider builds a trace.TracerProvider that exports the
// spans started with it to stdout.
func NewTracerProvider(ctx context.Context) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	return tp, nil
}

// SessionSpan starts the span covering one session from accept to
// present/presentError. Callers must End() the returned span once the
// session's view has presented its response.
func SessionSpan(ctx context.Context, tracer trace.Tracer, sessionID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "multiplex.session", trace.WithAttributes(
		attribute.String("session.id", sessionID),
	))
}
