package lock

import (
	"math"
	"testing"
	"time"
)

func TestNewConfigDefaults(t *testing.T) {
	c := NewConfig()
	if c.Name != DefaultName || c.Operation != OperationRead || c.Fair || c.Timeout != 0 || c.TimeoutUnit != time.Millisecond {
		t.Fatalf("unexpected defaults %+v", c)
	}
	if c.Wait() != 0 {
		t.Fatalf("expected unbounded wait, got %s", c.Wait())
	}
}

func TestNewConfigOptions(t *testing.T) {
	c := NewConfig(WithName("acct"), WithFair(true), Write(), WithTimeout(2, time.Second))
	if c.Name != "acct" || !c.Fair || c.Operation != OperationWrite {
		t.Fatalf("unexpected config %+v", c)
	}
	if c.Wait() != 2*time.Second {
		t.Fatalf("expected 2s, got %s", c.Wait())
	}
}

func TestConfigWait(t *testing.T) {
	if w := (Config{Timeout: 50}).Wait(); w != 50*time.Millisecond {
		t.Fatalf("expected milliseconds by default, got %s", w)
	}
	if w := (Config{Timeout: 500, TimeoutUnit: time.Microsecond}).Wait(); w != 500*time.Microsecond {
		t.Fatalf("sub-millisecond timeout lost: %s", w)
	}
	if w := (Config{Timeout: -1}).Wait(); w != 0 {
		t.Fatalf("negative timeout should wait indefinitely, got %s", w)
	}
	if w := (Config{Timeout: math.MaxInt64, TimeoutUnit: time.Hour}).Wait(); w != time.Duration(math.MaxInt64) {
		t.Fatalf("expected saturation, got %s", w)
	}
}

func TestConfigLockName(t *testing.T) {
	if n := (Config{}).LockName(); n != DefaultName {
		t.Fatalf("expected %q, got %q", DefaultName, n)
	}
	if n := (Config{Name: "a"}).LockName(); n != "a" {
		t.Fatalf("expected a, got %q", n)
	}
}

func TestOperationString(t *testing.T) {
	if OperationRead.String() != "READ" || OperationWrite.String() != "WRITE" || Operation(9).String() != "UNKNOWN" {
		t.Fatal("unexpected operation names")
	}
}
