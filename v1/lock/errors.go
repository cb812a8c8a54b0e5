package lock

import (
	"fmt"
	"time"

	lockerrors "github.com/mirkobrombin/go-locked/v1/errors"
)

// TimeoutError is returned when a bounded acquisition does not complete in
// time. It matches lockerrors.ErrTimeout.
type TimeoutError struct {
	Name    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("lock: can't lock %q in %s", e.Name, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return lockerrors.ErrTimeout }

// InterruptedError is returned when the caller's context is done while
// waiting for a lock. It matches lockerrors.ErrInterrupted and the context
// error that caused it.
type InterruptedError struct {
	Name  string
	Cause error
}

func (e *InterruptedError) Error() string {
	return fmt.Sprintf("lock: locking %q interrupted: %v", e.Name, e.Cause)
}

func (e *InterruptedError) Unwrap() []error {
	return []error{lockerrors.ErrInterrupted, e.Cause}
}
