package lock

import (
	"context"
	"sync"
)

// bargingRW is the non-fair read/write lock. Waiters park on a broadcast
// channel that is closed whenever the lock state changes in their favour, and
// whoever re-checks first wins. A waiting writer holds back newly arriving
// readers so a steady stream of readers cannot starve it.
type bargingRW struct {
	mu             sync.Mutex
	readers        int
	writer         bool
	writersWaiting int
	notify         chan struct{}
}

func newBargingRW() *bargingRW {
	return &bargingRW{}
}

// wait returns the channel closed on the next state change. Callers hold mu.
func (l *bargingRW) wait() <-chan struct{} {
	if l.notify == nil {
		l.notify = make(chan struct{})
	}
	return l.notify
}

// broadcast wakes every parked waiter. Callers hold mu.
func (l *bargingRW) broadcast() {
	if l.notify != nil {
		close(l.notify)
		l.notify = nil
	}
}

func (l *bargingRW) tryRLock() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writer {
		return false
	}
	l.readers++
	return true
}

func (l *bargingRW) rlock(ctx context.Context) error {
	for {
		l.mu.Lock()
		if !l.writer && l.writersWaiting == 0 {
			l.readers++
			l.mu.Unlock()
			return nil
		}
		ch := l.wait()
		l.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *bargingRW) runlock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.readers <= 0 {
		panic("lock: RUnlock of unlocked RWLock")
	}
	l.readers--
	if l.readers == 0 {
		l.broadcast()
	}
}

func (l *bargingRW) tryLock() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writer || l.readers > 0 {
		return false
	}
	l.writer = true
	return true
}

func (l *bargingRW) lock(ctx context.Context) error {
	l.mu.Lock()
	queued := false
	for {
		if !l.writer && l.readers == 0 {
			l.writer = true
			if queued {
				l.writersWaiting--
			}
			l.mu.Unlock()
			return nil
		}
		if !queued {
			l.writersWaiting++
			queued = true
		}
		ch := l.wait()
		l.mu.Unlock()
		select {
		case <-ch:
			l.mu.Lock()
		case <-ctx.Done():
			l.mu.Lock()
			l.writersWaiting--
			if l.writersWaiting == 0 {
				// readers held back by this writer may proceed
				l.broadcast()
			}
			l.mu.Unlock()
			return ctx.Err()
		}
	}
}

func (l *bargingRW) unlock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.writer {
		panic("lock: Unlock of unlocked RWLock")
	}
	l.writer = false
	l.broadcast()
}
