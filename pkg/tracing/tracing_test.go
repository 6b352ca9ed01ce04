package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTracer_Disabled(t *testing.T) {
	cfg := DefaultConfig("test-service")
	cfg.Enabled = false

	shutdown, err := InitTracer(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracer_Enabled(t *testing.T) {
	// The batcher exports asynchronously, so an unreachable endpoint is fine.
	cfg := Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		OTLPEndpoint:   "127.0.0.1:0",
		SampleRate:     1.0,
		Enabled:        true,
	}

	shutdown, err := InitTracer(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok, "expected *sdktrace.TracerProvider, got %T", otel.GetTracerProvider())

	_ = shutdown(context.Background())
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), samplerFor(1.0).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.5).Description(), "TraceIDRatioBased")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("my-service")

	assert.Equal(t, "my-service", cfg.ServiceName)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 1.0, cfg.SampleRate)
	assert.Equal(t, "localhost:4318", cfg.OTLPEndpoint)
}

func TestRecorder_CapturesSpans(t *testing.T) {
	rec, shutdown := NewRecorder()
	defer shutdown(context.Background()) //nolint:errcheck

	_, span := Start(context.Background(), "test", "load", attribute.Int("page", 2))
	End(span, nil)

	_, failing := Start(context.Background(), "test", "submit")
	End(failing, errors.New("boom"))

	spans := rec.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "load", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.Int("page", 2))
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, "submit", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "boom", spans[1].Status().Description)
}
