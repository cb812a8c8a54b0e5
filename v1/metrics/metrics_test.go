package metrics

import "testing"

func TestRegisterLockMetricsTwice(t *testing.T) {
	reg := NewRegistry()
	if err := RegisterLockMetrics(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := RegisterLockMetrics(reg); err != nil {
		t.Fatalf("second register should be a no-op: %v", err)
	}
	AcquireCounter.WithLabelValues("READ").Inc()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, mf := range mfs {
		if mf.GetName() == "locked_acquire_total" {
			found = true
		}
	}
	if !found {
		t.Fatal("acquire counter not exported")
	}
}
