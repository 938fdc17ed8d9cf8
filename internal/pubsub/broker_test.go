package pubsub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBroker_DeliversToEverySubscriber(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx := context.Background()
	chans := []<-chan Event[string]{broker.Subscribe(ctx), broker.Subscribe(ctx)}
	require.Equal(t, 2, broker.SubscriberCount())

	broker.Publish(KindDiagnostic, "unknown character")

	for i, ch := range chans {
		select {
		case ev := <-ch:
			require.Equal(t, KindDiagnostic, ev.Kind, "subscriber %d", i)
			require.Equal(t, "unknown character", ev.Payload, "subscriber %d", i)
			require.False(t, ev.At.IsZero(), "subscriber %d", i)
		case <-time.After(100 * time.Millisecond):
			require.Fail(t, "timeout waiting for event", "subscriber %d", i)
		}
	}
}

func TestBroker_ContextCancelUnsubscribes(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := broker.Subscribe(ctx)
	require.Equal(t, 1, broker.SubscriberCount())

	cancel()
	require.Eventually(t, func() bool { return broker.SubscriberCount() == 0 },
		time.Second, 5*time.Millisecond)

	_, ok := <-ch
	require.False(t, ok, "channel should be closed after cancel")
}

func TestBroker_FullBufferDropsAndCounts(t *testing.T) {
	broker := NewBrokerWithBuffer[int](1)
	defer broker.Close()

	ch := broker.Subscribe(context.Background())

	done := make(chan struct{})
	go func() {
		broker.Publish(KindScan, 1)
		broker.Publish(KindScan, 2)
		broker.Publish(KindScan, 3)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		require.Fail(t, "Publish blocked")
	}

	ev := <-ch
	require.Equal(t, 1, ev.Payload)
	require.Equal(t, int64(2), broker.Dropped())
}

func TestBroker_CloseIsIdempotent(t *testing.T) {
	broker := NewBroker[string]()
	ch := broker.Subscribe(context.Background())

	broker.Close()
	broker.Close()

	_, ok := <-ch
	require.False(t, ok)
	require.Equal(t, 0, broker.SubscriberCount())

	late := broker.Subscribe(context.Background())
	_, ok = <-late
	require.False(t, ok, "subscribing after close yields a closed channel")

	broker.Publish(KindLog, "ignored")
}

func TestListen_StopsWhenChannelCloses(t *testing.T) {
	broker := NewBroker[string]()
	ch := broker.Subscribe(context.Background())

	var (
		mu  sync.Mutex
		got []string
	)
	finished := make(chan struct{})
	go func() {
		Listen(context.Background(), ch, func(ev Event[string]) {
			mu.Lock()
			got = append(got, ev.Payload)
			mu.Unlock()
		})
		close(finished)
	}()

	broker.Publish(KindLog, "a")
	broker.Publish(KindLog, "b")
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 5*time.Millisecond)

	broker.Close()
	select {
	case <-finished:
	case <-time.After(time.Second):
		require.Fail(t, "Listen did not return after close")
	}
	require.Equal(t, []string{"a", "b"}, got)
}
