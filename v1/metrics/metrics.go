package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AcquireCounter tracks successful lock acquisitions by operation.
	AcquireCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "locked_acquire_total",
		Help: "Total number of lock acquisitions",
	}, []string{"operation"})
	// TimeoutCounter tracks acquisitions abandoned because the timeout expired.
	TimeoutCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "locked_timeout_total",
		Help: "Total number of lock acquisitions that timed out",
	})
	// InterruptedCounter tracks acquisitions abandoned because the caller
	// context was cancelled.
	InterruptedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "locked_interrupted_total",
		Help: "Total number of lock acquisitions interrupted by the caller",
	})
	// HeldGauge reports the number of guarded calls currently holding a lock.
	HeldGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "locked_held",
		Help: "Current number of guarded calls holding a lock",
	})
	// WaitHistogram observes how long acquisitions waited.
	WaitHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "locked_wait_seconds",
		Help:    "Time spent waiting for a lock",
		Buckets: prometheus.DefBuckets,
	})
)

// NewRegistry creates a new Prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// RegisterLockMetrics registers the lock collectors on the provided registry.
// Collectors already present on reg are left as they are.
func RegisterLockMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{AcquireCounter, TimeoutCounter, InterruptedCounter, HeldGauge, WaitHistogram} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}
