package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func readRecords(t *testing.T, path string) []SpanRecord {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []SpanRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec SpanRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec), "line %q", scanner.Text())
		out = append(out, rec)
	}
	require.NoError(t, scanner.Err())
	return out
}

func TestFileExporter_AppendsToExistingFile(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")
	require.NoError(t, os.WriteFile(tracePath, []byte(`{"name":"earlier"}`+"\n"), 0o600))

	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	stub := tracetest.SpanStub{Name: SpanLoad, StartTime: time.Now(), EndTime: time.Now().Add(time.Millisecond)}
	require.NoError(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
	require.NoError(t, exporter.Shutdown(context.Background()))

	recs := readRecords(t, tracePath)
	require.Len(t, recs, 2)
	require.Equal(t, "earlier", recs[0].Name)
	require.Equal(t, SpanLoad, recs[1].Name)
}

func TestFileExporter_RecordFields(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")
	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	start := time.Now()
	stub := tracetest.SpanStub{
		Name:      SpanTokenize,
		StartTime: start,
		EndTime:   start.Add(1500 * time.Microsecond),
		Status:    sdktrace.Status{Code: codes.Error, Description: "unclosed region"},
		Attributes: []attribute.KeyValue{
			attribute.String(AttrSourcePath, "main.src"),
			attribute.Int(AttrTokens, 42),
			attribute.Bool(AttrCacheHit, true),
		},
		Events: []sdktrace.Event{{
			Name:       EventDiagnostic,
			Time:       start,
			Attributes: []attribute.KeyValue{attribute.String("severity", "ERROR")},
		}},
	}
	require.NoError(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
	require.NoError(t, exporter.Shutdown(context.Background()))

	recs := readRecords(t, tracePath)
	require.Len(t, recs, 1)
	rec := recs[0]
	require.Equal(t, SpanTokenize, rec.Name)
	require.Equal(t, "ERROR", rec.Status)
	require.Equal(t, "unclosed region", rec.StatusMsg)
	require.InDelta(t, 1.5, rec.DurationMs, 0.001)
	require.Empty(t, rec.ParentID)
	require.Equal(t, "main.src", rec.Attributes[AttrSourcePath])
	require.EqualValues(t, 42, rec.Attributes[AttrTokens])
	require.Equal(t, true, rec.Attributes[AttrCacheHit])
	require.Len(t, rec.Events, 1)
	require.Equal(t, "ERROR", rec.Events[0].Attributes["severity"])
}

func TestFileExporter_ExportAfterShutdownIsNoop(t *testing.T) {
	exporter, err := NewFileExporter(filepath.Join(t.TempDir(), "traces.jsonl"))
	require.NoError(t, err)
	require.NoError(t, exporter.Shutdown(context.Background()))
	require.NoError(t, exporter.Shutdown(context.Background()))

	stub := tracetest.SpanStub{Name: SpanRun}
	require.NoError(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
}

func TestFileExporter_ConcurrentExports(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")
	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	const workers, perWorker = 8, 50
	errs := make(chan error, workers*perWorker)
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				stub := tracetest.SpanStub{
					Name:       SpanTokenize,
					Attributes: []attribute.KeyValue{attribute.Int("worker", w), attribute.Int("i", i)},
				}
				errs <- exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()})
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	require.NoError(t, exporter.Shutdown(context.Background()))

	require.Len(t, readRecords(t, tracePath), workers*perWorker)
}
