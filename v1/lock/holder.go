package lock

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

type holderKey struct{}

type holding struct {
	lock     *RWLock
	op       Operation
	next     *holding
	released atomic.Bool
}

// holder is the identity of a guarded call chain. It travels in the context
// handed to guarded functions; every nested acquisition prepends a holding.
type holder struct {
	id   string
	held *holding
}

func holderFrom(ctx context.Context) *holder {
	h, _ := ctx.Value(holderKey{}).(*holder)
	return h
}

// holds reports whether the chain still holds l in a mode that covers op.
// A writer covers both sides, a reader only reads. Holdings whose guarded
// call has returned no longer count, even in contexts derived from it.
func (h *holder) holds(l *RWLock, op Operation) bool {
	if h == nil {
		return false
	}
	for x := h.held; x != nil; x = x.next {
		if x.lock != l || x.released.Load() {
			continue
		}
		if x.op == OperationWrite || op == OperationRead {
			return true
		}
	}
	return false
}

func withHolding(ctx context.Context, l *RWLock, op Operation) (context.Context, *holding) {
	next := &holder{}
	if parent := holderFrom(ctx); parent != nil {
		next.id = parent.id
		next.held = parent.held
	} else {
		next.id = uuid.NewString()
	}
	hd := &holding{lock: l, op: op, next: next.held}
	next.held = hd
	return context.WithValue(ctx, holderKey{}, next), hd
}

// HolderID returns the identifier of the outermost guarded call that ctx
// descends from.
func HolderID(ctx context.Context) (string, bool) {
	h := holderFrom(ctx)
	if h == nil {
		return "", false
	}
	return h.id, true
}

// Holds reports whether ctx descends from a guarded call holding the named
// lock of r in a mode covering op.
func Holds(ctx context.Context, r *Registry, name string, op Operation) bool {
	l, ok := r.Lookup(name)
	if !ok {
		return false
	}
	return holderFrom(ctx).holds(l, op)
}
