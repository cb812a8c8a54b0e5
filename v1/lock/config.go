package lock

import (
	"math"
	"time"
)

// DefaultName is the lock shared by every call site that does not name one.
const DefaultName = "generic"

// Operation selects the side of the lock a call site needs.
type Operation int

const (
	OperationRead Operation = iota
	OperationWrite
)

func (o Operation) String() string {
	switch o {
	case OperationRead:
		return "READ"
	case OperationWrite:
		return "WRITE"
	default:
		return "UNKNOWN"
	}
}

// Config describes how one call site is guarded. The zero value takes the
// read side of the "generic" lock and waits without bound.
type Config struct {
	// Name of the lock. Empty means DefaultName.
	Name string
	// Fair is only honoured by the call that first creates the named lock.
	Fair bool
	// Operation selects the read or write side.
	Operation Operation
	// Timeout is the acquisition wait expressed in TimeoutUnit. Zero or
	// negative waits indefinitely.
	Timeout int64
	// TimeoutUnit defaults to time.Millisecond.
	TimeoutUnit time.Duration
}

// ConfigOption configures a Config built by NewConfig.
type ConfigOption func(*Config)

// WithName sets the lock name.
func WithName(name string) ConfigOption {
	return func(c *Config) {
		c.Name = name
	}
}

// WithFair requests a fair lock when the name is created.
func WithFair(fair bool) ConfigOption {
	return func(c *Config) {
		c.Fair = fair
	}
}

// WithOperation selects the lock side.
func WithOperation(op Operation) ConfigOption {
	return func(c *Config) {
		c.Operation = op
	}
}

// Read selects the read side.
func Read() ConfigOption { return WithOperation(OperationRead) }

// Write selects the write side.
func Write() ConfigOption { return WithOperation(OperationWrite) }

// WithTimeout bounds the acquisition wait to timeout units.
func WithTimeout(timeout int64, unit time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
		c.TimeoutUnit = unit
	}
}

// NewConfig returns a Config with the given options applied over the
// defaults.
func NewConfig(opts ...ConfigOption) Config {
	c := Config{
		Name:        DefaultName,
		Operation:   OperationRead,
		TimeoutUnit: time.Millisecond,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LockName returns the effective lock name.
func (c Config) LockName() string {
	if c.Name == "" {
		return DefaultName
	}
	return c.Name
}

// Wait returns the acquisition timeout as a duration. Zero means no bound.
// Values too large for a time.Duration saturate.
func (c Config) Wait() time.Duration {
	if c.Timeout <= 0 {
		return 0
	}
	unit := c.TimeoutUnit
	if unit <= 0 {
		unit = time.Millisecond
	}
	if c.Timeout > int64(math.MaxInt64/unit) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(c.Timeout) * unit
}
