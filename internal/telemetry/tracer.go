package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for dispatch and load spans.
const (
	AttrTag      = "adapter.tag"
	AttrFunction = "call.function"
	AttrArgc     = "call.argc"
	AttrAsync    = "call.async"
	AttrHandle   = "load.handle"
	AttrPath     = "load.path"
)

// StartCall opens a span for one dispatch.
func StartCall(ctx context.Context, function string, argc int) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "omnicall.call",
		trace.WithAttributes(
			attribute.String(AttrFunction, function),
			attribute.Int(AttrArgc, argc),
		))
}

// StartLoad opens a span for one load operation.
func StartLoad(ctx context.Context, tag, path string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "omnicall.load",
		trace.WithAttributes(
			attribute.String(AttrTag, tag),
			attribute.String(AttrPath, path),
		))
}

// EndSpan records the error, if any, and ends the span.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
