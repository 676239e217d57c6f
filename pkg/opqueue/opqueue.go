// Package opqueue serialises repository operations: for every operation
// kind and key (usually a repository path) at most one operation runs at a
// time. Different kinds or keys proceed independently.
package opqueue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Kind names a class of operations that must not overlap on the same key.
type Kind string

// KindIndex covers everything that rewrites the index: patch sessions,
// cached applies and resets.
const KindIndex Kind = "index"

type slot struct {
	kind Kind
	key  string
}

// Queue hands out one weighted semaphore per (kind, key).
// The zero value is not usable; call New.
type Queue struct {
	mu     sync.Mutex
	slots  map[slot]*semaphore.Weighted
	logger *slog.Logger
}

// New creates an empty Queue. A nil logger means slog.Default().
func New(logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}

	return &Queue{
		slots:  make(map[slot]*semaphore.Weighted),
		logger: logger,
	}
}

func (q *Queue) semaphore(kind Kind, key string) *semaphore.Weighted {
	q.mu.Lock()
	defer q.mu.Unlock()

	s := slot{kind: kind, key: key}

	sem, ok := q.slots[s]
	if !ok {
		sem = semaphore.NewWeighted(1)
		q.slots[s] = sem
	}

	return sem
}

// Do runs fn once no other operation of the same kind and key is running.
// Waiting stops when ctx is done; fn is then not called.
func (q *Queue) Do(ctx context.Context, kind Kind, key string, fn func(context.Context) error) error {
	sem := q.semaphore(kind, key)

	if !sem.TryAcquire(1) {
		q.logger.DebugContext(ctx, "waiting for operation slot", "kind", kind, "key", key)

		if err := sem.Acquire(ctx, 1); err != nil {
			return fmt.Errorf("wait for %s on %s: %w", kind, key, err)
		}
	}
	defer sem.Release(1)

	return fn(ctx)
}
