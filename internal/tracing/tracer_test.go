package tracing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.False(t, cfg.Enabled, "tracing should be disabled by default")
	require.Equal(t, "file", cfg.Exporter)
	require.Empty(t, cfg.FilePath)
	require.Equal(t, DefaultOTLPEndpoint, cfg.OTLPEndpoint)
	require.Equal(t, 1.0, cfg.SampleRate)
	require.Equal(t, "lexkit", cfg.ServiceName)
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(Config{})
	require.NoError(t, err)
	require.False(t, provider.Enabled())

	ctx, span := provider.Tracer().Start(context.Background(), SpanTokenize)
	require.NotNil(t, ctx)
	require.False(t, span.SpanContext().IsValid(), "no-op spans carry no context")
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_FileExporterWritesOnEnd(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces", "lexkit.jsonl")

	provider, err := NewProvider(Config{
		Enabled:     true,
		Exporter:    "file",
		FilePath:    tracePath,
		ServiceName: "test-service",
	})
	require.NoError(t, err)
	require.True(t, provider.Enabled())

	_, span := provider.Tracer().Start(context.Background(), SpanCompile)
	require.True(t, span.SpanContext().IsValid())
	span.End()

	content, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	require.Contains(t, string(content), `"name":"lexkit.compile"`)

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_StdoutAndNone(t *testing.T) {
	for _, exporter := range []string{"stdout", "none", ""} {
		provider, err := NewProvider(Config{Enabled: true, Exporter: exporter})
		require.NoError(t, err, exporter)
		require.True(t, provider.Enabled(), exporter)
		_, span := provider.Tracer().Start(context.Background(), SpanRun)
		span.End()
		require.NoError(t, provider.Shutdown(context.Background()), exporter)
	}
}

func TestNewProvider_Errors(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: "file"})
	require.ErrorIs(t, err, ErrFilePathRequired)

	_, err = NewProvider(Config{Enabled: true, Exporter: "zipkin"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported exporter type: zipkin")
}
