// Package pubsub fans events out to any number of live subscribers.
package pubsub

import (
	"context"
	"time"
)

// Kind names what an event reports.
type Kind string

const (
	KindLog        Kind = "log"        // a formatted log line
	KindDiagnostic Kind = "diagnostic" // a content-time diagnostic from a scan
	KindScan       Kind = "scan"       // a completed tokenize run
)

// Event is a published payload stamped with its kind and time.
type Event[T any] struct {
	Kind    Kind
	Payload T
	At      time.Time
}

// Subscriber hands out subscription channels.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Listen calls fn for every event received on ch until ctx is done or ch
// is closed.
func Listen[T any](ctx context.Context, ch <-chan Event[T], fn func(Event[T])) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			fn(ev)
		}
	}
}
