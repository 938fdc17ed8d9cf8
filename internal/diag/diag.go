// Package diag carries the non-fatal diagnostics a scan reports about the
// text it reads. The lexer never fails on content; it reports here.
package diag

import (
	"context"
	"fmt"
	"sync"

	"github.com/zjrosen/lexkit/internal/log"
	"github.com/zjrosen/lexkit/internal/pubsub"
	"github.com/zjrosen/lexkit/internal/token"
)

// Severity ranks a diagnostic.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Diagnostic describes a recoverable issue found while scanning.
// Token is nil when the issue is not tied to a single token.
type Diagnostic struct {
	Token    *token.Token
	Message  string
	Severity Severity
	Fatal    bool
}

// Offset returns the source offset of the attached token, or -1.
func (d Diagnostic) Offset() int {
	if d.Token == nil {
		return -1
	}
	return d.Token.Offset
}

func (d Diagnostic) String() string {
	if d.Token == nil {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s @%d: %s", d.Severity, d.Token.Offset, d.Message)
}

// Warn builds a non-fatal warning attached to tok.
func Warn(tok token.Token, format string, args ...any) Diagnostic {
	return Diagnostic{Token: &tok, Message: fmt.Sprintf(format, args...), Severity: Warning}
}

// Err builds a non-fatal error attached to tok.
func Err(tok token.Token, format string, args ...any) Diagnostic {
	return Diagnostic{Token: &tok, Message: fmt.Sprintf(format, args...), Severity: Error}
}

// Sink receives diagnostics.
type Sink interface {
	Report(d Diagnostic)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Diagnostic)

func (f SinkFunc) Report(d Diagnostic) { f(d) }

// Discard drops every diagnostic.
var Discard Sink = SinkFunc(func(Diagnostic) {})

// Collector accumulates diagnostics. It is safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	c.items = append(c.items, d)
	c.mu.Unlock()
}

// Diagnostics returns a copy of everything reported so far.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of diagnostics reported.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Count returns how many diagnostics have the given severity.
func (c *Collector) Count(sev Severity) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.items {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// HasErrors reports whether any ERROR or fatal diagnostic was reported.
func (c *Collector) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.items {
		if d.Severity == Error || d.Fatal {
			return true
		}
	}
	return false
}

// Reset forgets every diagnostic.
func (c *Collector) Reset() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

// Tee forwards every diagnostic to each sink in order.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(d Diagnostic) {
		for _, s := range sinks {
			if s != nil {
				s.Report(d)
			}
		}
	})
}

// LogSink writes each diagnostic to the lexer log category.
var LogSink Sink = SinkFunc(func(d Diagnostic) {
	fields := []any{"severity", d.Severity, "offset", d.Offset()}
	if d.Severity == Error {
		log.Error(log.CatLexer, d.Message, fields...)
		return
	}
	log.Warn(log.CatLexer, d.Message, fields...)
})

// Scoped is a diagnostic together with the scan that reported it.
type Scoped[S any] struct {
	Scope      S
	Diagnostic Diagnostic
}

// Broadcaster publishes diagnostics to live subscribers. Each scan reports
// through its own Sink so subscribers can tell scans apart even when they
// fall behind.
type Broadcaster[S any] struct {
	broker *pubsub.Broker[Scoped[S]]
}

// NewBroadcaster creates a broadcaster whose subscribers buffer up to
// buffer events.
func NewBroadcaster[S any](buffer int) *Broadcaster[S] {
	return &Broadcaster[S]{broker: pubsub.NewBrokerWithBuffer[Scoped[S]](buffer)}
}

// Sink returns a sink publishing every diagnostic under scope.
func (b *Broadcaster[S]) Sink(scope S) Sink {
	return SinkFunc(func(d Diagnostic) {
		b.broker.Publish(pubsub.KindDiagnostic, Scoped[S]{Scope: scope, Diagnostic: d})
	})
}

// Finish publishes a scan event for scope, after every diagnostic it
// reported.
func (b *Broadcaster[S]) Finish(scope S) {
	b.broker.Publish(pubsub.KindScan, Scoped[S]{Scope: scope})
}

// Subscribe returns a channel of events published from now on.
func (b *Broadcaster[S]) Subscribe(ctx context.Context) <-chan pubsub.Event[Scoped[S]] {
	return b.broker.Subscribe(ctx)
}

// Close closes every subscription.
func (b *Broadcaster[S]) Close() {
	b.broker.Close()
}
