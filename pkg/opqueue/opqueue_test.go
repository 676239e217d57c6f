package opqueue_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/hunkstage/pkg/opqueue"
)

func TestQueue_SerialisesSameKindAndKey(t *testing.T) {
	t.Parallel()

	q := opqueue.New(nil)

	var (
		running atomic.Int32
		peak    atomic.Int32
		wg      sync.WaitGroup
	)

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			err := q.Do(context.Background(), opqueue.KindIndex, "/repo", func(context.Context) error {
				n := running.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}

				time.Sleep(5 * time.Millisecond)
				running.Add(-1)

				return nil
			})
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), peak.Load())
}

func TestQueue_DifferentKeysRunConcurrently(t *testing.T) {
	t.Parallel()

	q := opqueue.New(nil)

	inside := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- q.Do(context.Background(), opqueue.KindIndex, "/a", func(context.Context) error {
			close(inside)
			<-release

			return nil
		})
	}()

	<-inside

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// Another key and another kind on the same key are both free.
	require.NoError(t, q.Do(ctx, opqueue.KindIndex, "/b", func(context.Context) error { return nil }))
	require.NoError(t, q.Do(ctx, opqueue.Kind("notes"), "/a", func(context.Context) error { return nil }))

	close(release)
	require.NoError(t, <-done)
}

func TestQueue_WaitHonoursContext(t *testing.T) {
	t.Parallel()

	q := opqueue.New(nil)

	inside := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = q.Do(context.Background(), opqueue.KindIndex, "/repo", func(context.Context) error {
			close(inside)
			<-release

			return nil
		})
	}()

	<-inside
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	called := false
	err := q.Do(ctx, opqueue.KindIndex, "/repo", func(context.Context) error {
		called = true

		return nil
	})

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, called)
	assert.Contains(t, err.Error(), "wait for index on /repo")
}

func TestQueue_ReturnsOperationError(t *testing.T) {
	t.Parallel()

	q := opqueue.New(nil)
	boom := errors.New("boom")

	err := q.Do(context.Background(), opqueue.KindIndex, "/repo", func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)

	// The slot is released after a failure.
	require.NoError(t, q.Do(context.Background(), opqueue.KindIndex, "/repo", func(context.Context) error { return nil }))
}
