package sender

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherKeepsPerKeyOrder(t *testing.T) {
	d := NewDispatcher(Options{Workers: 4, QueueSize: 128})

	var (
		mu  sync.Mutex
		got = map[int64][]int{}
	)
	keys := []int64{-1001, 7, 42}
	for i := 0; i < 30; i++ {
		for _, key := range keys {
			key, i := key, i
			require.NoError(t, d.Enqueue(context.Background(), key, "send.text", "sendMessage", func() error {
				mu.Lock()
				got[key] = append(got[key], i)
				mu.Unlock()
				return nil
			}))
		}
	}
	d.Close()

	for _, key := range keys {
		require.Len(t, got[key], 30)
		for i, v := range got[key] {
			assert.Equalf(t, i, v, "key %d out of order", key)
		}
	}
	assert.Zero(t, d.ErrorCount())
}

func TestDispatcherFullQueueBlocksUntilDrained(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 1})
	release := make(chan struct{})
	started := make(chan struct{})

	var (
		mu  sync.Mutex
		got []string
	)
	record := func(name string) func() error {
		return func() error {
			mu.Lock()
			got = append(got, name)
			mu.Unlock()
			return nil
		}
	}

	require.NoError(t, d.Enqueue(context.Background(), 42, "summary", "", func() error {
		close(started)
		<-release
		return record("summary")()
	}))
	<-started
	require.NoError(t, d.Enqueue(context.Background(), 42, "listing", "", record("listing1")))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Enqueue(ctx, 42, "listing", "", record("dropped")), context.DeadlineExceeded)

	done := make(chan error, 1)
	go func() {
		done <- d.Enqueue(context.Background(), 42, "listing", "", record("listing2"))
	}()
	close(release)
	require.NoError(t, <-done)

	d.Close()
	assert.Equal(t, []string{"summary", "listing1", "listing2"}, got)
}

func TestDispatcherClosed(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1})
	d.Close()
	d.Close()
	assert.ErrorIs(t, d.Enqueue(context.Background(), 1, "d", "", func() error { return nil }), ErrQueueClosed)
}

func TestDispatcherCountsFailures(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond})
	calls := 0
	require.NoError(t, d.Enqueue(context.Background(), 3, "send.text", "sendMessage", func() error {
		calls++
		return errors.New("telegram: bad request (400)")
	}))
	d.Close()

	assert.Equal(t, 1, calls, "non-network errors are not retried")
	assert.Equal(t, uint64(1), d.ErrorCount())
}

func TestDispatcherRetriesNetworkErrors(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond})
	calls := 0
	require.NoError(t, d.Enqueue(context.Background(), 3, "send.text", "sendMessage", func() error {
		calls++
		if calls < 3 {
			return syscall.ECONNRESET
		}
		return nil
	}))
	d.Close()

	assert.Equal(t, 3, calls)
	assert.Zero(t, d.ErrorCount())
}
