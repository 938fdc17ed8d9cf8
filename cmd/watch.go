package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/lexkit/internal/diag"
	"github.com/zjrosen/lexkit/internal/log"
	"github.com/zjrosen/lexkit/internal/presentation"
	"github.com/zjrosen/lexkit/internal/pubsub"
	"github.com/zjrosen/lexkit/internal/source"
	"github.com/zjrosen/lexkit/internal/tracing"
	"github.com/zjrosen/lexkit/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Tokenize a source file again whenever it or its declarations change",
	Long: `Tokenize a source file, then watch it together with the declaration document
and every document it includes. Each change triggers a new scan; unchanged
declarations reuse the cached tokenizer.

Stops on interrupt.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringArray("tag", nil, "add a tag to a type, as type=tag (repeatable)")
	watchCmd.Flags().StringArray("balance", nil, "check that tokens tagged open and close nest, as open:close (repeatable)")
	watchCmd.Flags().StringArray("even", nil, "check that tokens carrying the tag occur an even number of times (repeatable)")
	rootCmd.AddCommand(watchCmd)
}

// syncWriter serialises writes from the scan loop and the diagnostic
// listener.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// watchRun is the scope every scan event carries: the source that scan
// read and, once it finished, its result.
type watchRun struct {
	file *source.File
	res  *scanResult
}

// watcherConfig watches path and its declarations with the configured
// debounce, or the watcher default when none is configured.
func watcherConfig(path, declPath string, debounce time.Duration) watcher.Config {
	wc := watcher.DefaultConfig(path, declPath)
	if debounce > 0 {
		wc.DebounceDur = debounce
	}
	return wc
}

// printScanEvents subscribes to sub and prints each diagnostic located in
// the source of the scan that reported it, then a summary line when that
// scan finishes. The returned channel closes once the subscription ends.
func printScanEvents(ctx context.Context, sub pubsub.Subscriber[diag.Scoped[*watchRun]], w io.Writer) <-chan struct{} {
	ch := sub.Subscribe(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		f := presentation.NewFormatter(w)
		pubsub.Listen(ctx, ch, func(ev pubsub.Event[diag.Scoped[*watchRun]]) {
			run := ev.Payload.Scope
			switch ev.Kind {
			case pubsub.KindDiagnostic:
				_ = f.FormatDiagnostics(run.file, []diag.Diagnostic{ev.Payload.Diagnostic})
			case pubsub.KindScan:
				_, _ = fmt.Fprintf(w, "%s %s: %d tokens, %d warnings, %d errors (cache hit: %t)\n",
					ev.At.Format("15:04:05"), run.file.Name, len(run.res.tokens),
					run.res.diags.Count(diag.Warning), run.res.diags.Count(diag.Error), run.res.compiled.CacheHit)
			}
		})
	}()
	return done
}

func runWatch(cmd *cobra.Command, args []string) error {
	declPath, err := declarationsPath()
	if err != nil {
		return err
	}
	path := args[0]
	if path == "-" {
		return errors.New("watch needs a file, not stdin")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	errOut := &syncWriter{w: cmd.ErrOrStderr()}
	opts := scanFlags(cmd)

	broadcaster := diag.NewBroadcaster[*watchRun](1024)
	listening := printScanEvents(ctx, broadcaster, errOut)
	defer func() {
		broadcaster.Close()
		<-listening
	}()

	w, err := watcher.New(watcherConfig(path, declPath, cfg.Watch.Debounce))
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	rescan := func(changed []string) {
		runCtx, span := startRun(ctx, "watch")
		defer span.End()
		if len(changed) > 0 {
			span.AddEvent(tracing.EventReload, trace.WithAttributes(attribute.StringSlice("paths", changed)))
		}

		name, src, err := readSource(nil, path)
		if err != nil {
			tracing.RecordError(span, err)
			_, _ = fmt.Fprintln(errOut, err)
			return
		}
		run := &watchRun{file: source.NewFile(name, src)}

		res, err := scan(runCtx, declPath, name, src, opts, broadcaster.Sink(run))
		if err != nil {
			tracing.RecordError(span, err)
			_, _ = fmt.Fprintln(errOut, err)
			return
		}
		if err := w.SetFiles(append([]string{path}, res.compiled.Files...)...); err != nil {
			log.ErrorErr(log.CatWatcher, "updating watched files", err)
		}

		run.res = res
		broadcaster.Finish(run)
		if err := writeTokens(out, tracing.RunIDFromContext(runCtx), res); err != nil {
			_, _ = fmt.Fprintln(errOut, err)
		}
	}

	rescan(nil)

	changes, err := w.Start()
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case change := <-changes:
			log.Info(log.CatWatcher, "rescanning", "paths", change.Paths)
			rescan(change.Paths)
		}
	}
}
