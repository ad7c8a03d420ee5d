package tracing

import (
	"context"
	"testing"

	"companion-cli/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInit_DisabledIsNoop(t *testing.T) {
	p, err := Init(context.Background(), config.TracingConfig{})
	require.NoError(t, err)
	_, span := p.Tracer.Start(context.Background(), "x")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_RecordsSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	p := NewProvider(sdktrace.WithSpanProcessor(rec), "companion-test")
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })

	_, span := p.Tracer.Start(context.Background(), "capture.submit")
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "capture.submit", ended[0].Name())
}
