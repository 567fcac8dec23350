package framework

import (
	"context"
	"io"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/akademiaqa/api-contract-tests/framework"

// Tracing owns the tracer provider for a run. Each test gets one span, and every request
// it sends carries that span's trace context.
type Tracing struct {
	provider trace.TracerProvider
	shutdown func(context.Context) error
}

// NoTracing returns a Tracing that records nothing.
func NoTracing() *Tracing {
	return &Tracing{
		provider: noop.NewTracerProvider(),
		shutdown: func(context.Context) error { return nil },
	}
}

// NewTracing exports finished spans to w as JSON, one span at a time as they end.
func NewTracing(w io.Writer) (*Tracing, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	return &Tracing{provider: tp, shutdown: tp.Shutdown}, nil
}

func (t *Tracing) tracer() trace.Tracer {
	return t.provider.Tracer(tracerName)
}

// Shutdown flushes and stops the exporter.
func (t *Tracing) Shutdown(ctx context.Context) error {
	return t.shutdown(ctx)
}
