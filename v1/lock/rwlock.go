package lock

import "context"

type primitive interface {
	rlock(ctx context.Context) error
	tryRLock() bool
	runlock()
	lock(ctx context.Context) error
	tryLock() bool
	unlock()
}

// RWLock is a named reader/writer lock. It can be held by any number of
// readers or by a single writer. Blocking acquisitions give up when ctx is
// done and leave the lock untouched in that case.
//
// Like sync.RWMutex an RWLock has no owner: it is not reentrant on its own.
// Guard layers reentrancy on top by tracking holdings in the context.
type RWLock struct {
	name string
	fair bool
	rw   primitive
}

func newRWLock(name string, fair bool) *RWLock {
	l := &RWLock{name: name, fair: fair}
	if fair {
		l.rw = newFairRW()
	} else {
		l.rw = newBargingRW()
	}
	return l
}

// Name returns the registry name of the lock.
func (l *RWLock) Name() string { return l.name }

// Fair reports whether the lock grants acquisitions in arrival order.
func (l *RWLock) Fair() bool { return l.fair }

// RLock acquires the lock for reading, blocking until it is available or ctx
// is done.
func (l *RWLock) RLock(ctx context.Context) error { return l.rw.rlock(ctx) }

// TryRLock acquires the read lock only if no writer holds it.
func (l *RWLock) TryRLock() bool { return l.rw.tryRLock() }

// RUnlock releases one read acquisition.
func (l *RWLock) RUnlock() { l.rw.runlock() }

// Lock acquires the lock for writing, blocking until it is available or ctx
// is done.
func (l *RWLock) Lock(ctx context.Context) error { return l.rw.lock(ctx) }

// TryLock acquires the write lock only if nobody holds the lock.
func (l *RWLock) TryLock() bool { return l.rw.tryLock() }

// Unlock releases the write lock.
func (l *RWLock) Unlock() { l.rw.unlock() }

// ReadHandle returns the read side of the lock.
func (l *RWLock) ReadHandle() Handle { return Handle{l: l, op: OperationRead} }

// WriteHandle returns the write side of the lock.
func (l *RWLock) WriteHandle() Handle { return Handle{l: l, op: OperationWrite} }

// Handle returns the side of the lock matching op.
func (l *RWLock) Handle(op Operation) Handle { return Handle{l: l, op: op} }

// Handle is one side of an RWLock.
type Handle struct {
	l  *RWLock
	op Operation
}

// Lock returns the lock the handle belongs to.
func (h Handle) Lock() *RWLock { return h.l }

// Operation returns the side the handle acquires.
func (h Handle) Operation() Operation { return h.op }

// Acquire blocks until the side is held or ctx is done.
func (h Handle) Acquire(ctx context.Context) error {
	if h.op == OperationWrite {
		return h.l.Lock(ctx)
	}
	return h.l.RLock(ctx)
}

// TryAcquire acquires the side without waiting.
func (h Handle) TryAcquire() bool {
	if h.op == OperationWrite {
		return h.l.TryLock()
	}
	return h.l.TryRLock()
}

// Release undoes one successful Acquire or TryAcquire.
func (h Handle) Release() {
	if h.op == OperationWrite {
		h.l.Unlock()
		return
	}
	h.l.RUnlock()
}
