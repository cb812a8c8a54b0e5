// Package intercept attaches lock configurations to call sites. A Table maps
// type and method names to lock.Config values, and an Interceptor resolves
// the configuration for every call before running it under a lock.Guard.
// A method binding takes precedence over the binding of its type.
package intercept

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	lockerrors "github.com/mirkobrombin/go-locked/v1/errors"
	"github.com/mirkobrombin/go-locked/v1/lock"
)

// MissingError reports a call site with no lock configuration. It matches
// lockerrors.ErrConfigurationMissing.
type MissingError struct {
	Type   string
	Method string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("intercept: no lock configuration for %s.%s", e.Type, e.Method)
}

func (e *MissingError) Unwrap() error { return lockerrors.ErrConfigurationMissing }

type methodKey struct {
	typ    string
	method string
}

// Table holds lock configurations keyed by type and by type+method.
type Table struct {
	mu      sync.RWMutex
	types   map[string]lock.Config
	methods map[methodKey]lock.Config
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		types:   make(map[string]lock.Config),
		methods: make(map[methodKey]lock.Config),
	}
}

// BindType sets the configuration used by every method of typeName without
// a binding of its own. It returns false if the type was already bound.
func (t *Table) BindType(typeName string, cfg lock.Config) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.types[typeName]; exists {
		return false
	}
	t.types[typeName] = cfg
	return true
}

// BindMethod sets the configuration of one method. It returns false if the
// method was already bound.
func (t *Table) BindMethod(typeName, method string, cfg lock.Config) bool {
	k := methodKey{typ: typeName, method: method}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.methods[k]; exists {
		return false
	}
	t.methods[k] = cfg
	return true
}

// Resolve returns the configuration of method on typeName: the method
// binding if any, otherwise the type binding.
func (t *Table) Resolve(typeName, method string) (lock.Config, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if cfg, ok := t.methods[methodKey{typ: typeName, method: method}]; ok {
		return cfg, nil
	}
	if cfg, ok := t.types[typeName]; ok {
		return cfg, nil
	}
	return lock.Config{}, &MissingError{Type: typeName, Method: method}
}

// MustResolve is like Resolve but panics when no configuration exists.
func (t *Table) MustResolve(typeName, method string) lock.Config {
	cfg, err := t.Resolve(typeName, method)
	if err != nil {
		panic(err)
	}
	return cfg
}

// TypeName returns the package-qualified name of v's type, dereferencing
// pointers, e.g. "bank.Account" for a *bank.Account.
func TypeName(v any) string {
	rt := reflect.TypeOf(v)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil {
		return "<nil>"
	}
	return rt.String()
}

// Interceptor runs calls under the lock configured for their call site.
type Interceptor struct {
	table *Table
	guard *lock.Guard
}

// NewInterceptor returns an Interceptor over table. A nil guard uses a
// guard over lock.Default.
func NewInterceptor(table *Table, guard *lock.Guard) *Interceptor {
	if guard == nil {
		guard = lock.NewGuard()
	}
	return &Interceptor{table: table, guard: guard}
}

// Invoke resolves the configuration of typeName.method and runs fn under it.
// A missing configuration is returned as a *MissingError without calling fn.
func (i *Interceptor) Invoke(ctx context.Context, typeName, method string, fn func(ctx context.Context) error) error {
	cfg, err := i.table.Resolve(typeName, method)
	if err != nil {
		return err
	}
	return i.guard.Do(ctx, cfg, fn)
}

// Call is Invoke for functions returning a value.
func Call[T any](ctx context.Context, i *Interceptor, typeName, method string, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg, err := i.table.Resolve(typeName, method)
	if err != nil {
		var zero T
		return zero, err
	}
	return lock.Run(ctx, i.guard, cfg, fn)
}
