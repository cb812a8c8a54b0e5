// Package lock provides named read/write locks shared across call sites.
// A Registry hands out exactly one RWLock per name for the lifetime of the
// process, and a Guard runs a function while holding the read or write side
// of the named lock, optionally bounding the wait with a timeout. The lock is
// always released once the function returns, fails or panics.
package lock
