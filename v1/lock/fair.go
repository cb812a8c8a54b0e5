package lock

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// maxReaders bounds concurrent readers on a fair lock. A writer takes the
// whole weight, so it excludes every reader and every other writer.
const maxReaders = 1 << 30

// fairRW grants the lock in arrival order. semaphore.Weighted serves waiters
// FIFO and a queued writer blocks every request behind it.
type fairRW struct {
	sem *semaphore.Weighted
}

func newFairRW() *fairRW {
	return &fairRW{sem: semaphore.NewWeighted(maxReaders)}
}

func (l *fairRW) rlock(ctx context.Context) error { return l.sem.Acquire(ctx, 1) }

func (l *fairRW) tryRLock() bool { return l.sem.TryAcquire(1) }

func (l *fairRW) runlock() { l.sem.Release(1) }

func (l *fairRW) lock(ctx context.Context) error { return l.sem.Acquire(ctx, maxReaders) }

func (l *fairRW) tryLock() bool { return l.sem.TryAcquire(maxReaders) }

func (l *fairRW) unlock() { l.sem.Release(maxReaders) }
