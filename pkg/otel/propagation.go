package otel

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// InjectTraceContext writes W3C traceparent/tracestate headers for the
// current span into an outbound HTTP request, so a catalog service that
// honors trace context can join this invocation's trace.
//
// If ctx carries no active span, the headers are simply not set and req is
// left unchanged.
func InjectTraceContext(ctx context.Context, req *http.Request) {
	if req == nil {
		return
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
}

// ExtractTraceContext reads W3C traceparent/tracestate headers from an
// inbound event envelope's metadata, if the upstream publisher attached
// them, so this invocation's spans become children of the originating
// trace instead of starting a new root.
//
// If no traceparent is present, the original context is returned unchanged
// and any spans created from it become root spans.
func ExtractTraceContext(ctx context.Context, traceparent, tracestate string) context.Context {
	if traceparent == "" {
		return ctx
	}

	carrier := propagation.MapCarrier{"traceparent": traceparent}
	if tracestate != "" {
		carrier["tracestate"] = tracestate
	}

	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
