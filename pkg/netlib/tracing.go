package netlib

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig defines the configuration options for the OpenTelemetry
// tracing middleware.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "netlib")
	TracerName string
	// SkipTargets lists request targets to skip tracing for
	SkipTargets []string
	// Propagator is the propagation format (default: TraceContext)
	Propagator propagation.TextMapPropagator
}

// DefaultTracingConfig returns a TracingConfig with sensible defaults.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		TracerName:  "netlib",
		SkipTargets: []string{"/health", "/metrics"},
		Propagator:  propagation.TraceContext{},
	}
}

// Tracing returns a middleware that adds OpenTelemetry tracing to each
// exchange using default configuration.
func Tracing() Middleware {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig returns a middleware that creates a span per exchange
// and extracts parent trace context from the request headers.
func TracingWithConfig(config TracingConfig) Middleware {
	if config.TracerName == "" {
		config.TracerName = "netlib"
	}
	if config.Propagator == nil {
		config.Propagator = propagation.TraceContext{}
	}

	skipMap := make(map[string]bool, len(config.SkipTargets))
	for _, target := range config.SkipTargets {
		skipMap[target] = true
	}

	tracer := otel.Tracer(config.TracerName)

	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *Context) error {
			if skipMap[ctx.Target()] {
				return next.ServeHTTP(ctx)
			}

			carrier := &requestHeaderCarrier{ctx: ctx}
			parentCtx := config.Propagator.Extract(ctx.Context(), carrier)

			spanCtx, span := tracer.Start(
				parentCtx,
				ctx.Method()+" "+ctx.Target(),
				trace.WithSpanKind(trace.SpanKindServer),
			)
			defer span.End()

			span.SetAttributes(
				attribute.String("http.method", ctx.Method()),
				attribute.String("http.target", ctx.Target()),
				attribute.Int("http.request_content_length", len(ctx.Body())),
			)

			originalCtx := ctx.Context()
			ctx.WithContext(spanCtx)
			err := next.ServeHTTP(ctx)
			ctx.WithContext(originalCtx)

			span.SetAttributes(attribute.Int("http.status_code", ctx.Status()))
			switch {
			case err != nil:
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			case ctx.Status() >= 400:
				span.SetStatus(codes.Error, "HTTP error")
			default:
				span.SetStatus(codes.Ok, "")
			}

			return err
		})
	}
}

// requestHeaderCarrier adapts the inbound header list to
// propagation.TextMapCarrier. It is read-only; trace context is never
// injected back into a request.
type requestHeaderCarrier struct {
	ctx *Context
}

func (c *requestHeaderCarrier) Get(key string) string {
	return c.ctx.RequestHeader(key)
}

func (c *requestHeaderCarrier) Set(_, _ string) {}

func (c *requestHeaderCarrier) Keys() []string {
	headers := c.ctx.RequestHeaders()
	keys := make([]string, 0, len(headers))
	for _, h := range headers {
		keys = append(keys, h[0])
	}
	return keys
}
