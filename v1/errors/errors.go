package errors

import "errors"

var (
	ErrTimeout              = errors.New("lock: acquisition timed out")
	ErrInterrupted          = errors.New("lock: locking interrupted")
	ErrConfigurationMissing = errors.New("lock: no lock configuration for call site")
)
