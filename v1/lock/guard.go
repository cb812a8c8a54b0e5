package lock

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mirkobrombin/go-locked/v1/metrics"
)

const tracerName = "github.com/mirkobrombin/go-locked/v1/lock"

// announced guards the startup notice. It is process wide so the notice is
// logged once no matter how many guards exist.
var announced atomic.Bool

// Guard runs functions while holding a named lock from its registry.
type Guard struct {
	registry *Registry
	logger   *slog.Logger
	metrics  bool
	promReg  prometheus.Registerer
	tracer   trace.Tracer
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithRegistry makes the guard resolve names in r instead of Default.
func WithRegistry(r *Registry) GuardOption {
	return func(g *Guard) {
		g.registry = r
	}
}

// WithLogger sets the logger used for lock events.
func WithLogger(l *slog.Logger) GuardOption {
	return func(g *Guard) {
		g.logger = l
	}
}

// WithMetrics registers the lock collectors on reg and makes the guard
// update them.
func WithMetrics(reg prometheus.Registerer) GuardOption {
	return func(g *Guard) {
		g.promReg = reg
	}
}

// WithTracing records a span around every acquisition using the global
// tracer provider.
func WithTracing() GuardOption {
	return func(g *Guard) {
		g.tracer = otel.Tracer(tracerName)
	}
}

// WithTracerProvider records spans using tp.
func WithTracerProvider(tp trace.TracerProvider) GuardOption {
	return func(g *Guard) {
		g.tracer = tp.Tracer(tracerName)
	}
}

// NewGuard returns a Guard over Default unless WithRegistry says otherwise.
func NewGuard(opts ...GuardOption) *Guard {
	g := &Guard{
		registry: Default,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.promReg != nil {
		if err := metrics.RegisterLockMetrics(g.promReg); err != nil {
			g.logger.Warn("lock: metrics registration failed", "error", err)
		} else {
			g.metrics = true
		}
	}
	return g
}

// Registry returns the registry the guard resolves names in.
func (g *Guard) Registry() *Registry { return g.registry }

// Do acquires the side of the lock selected by cfg, calls fn exactly once
// and releases the lock when fn returns or panics. Whatever fn returns is
// returned unchanged.
//
// When cfg.Wait() is positive and the lock cannot be acquired in time Do
// returns a *TimeoutError. When ctx is done before the lock is acquired Do
// returns an *InterruptedError. fn is not called in either case.
//
// fn receives a context that records the held lock. Guarded calls made with
// that context on the same lock do not acquire it again: a writer may
// re-enter for reading or writing, a reader only for reading. Sharing the
// context with other goroutines shares the holding with them until Do
// returns; after that the context acquires like any other.
func (g *Guard) Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	g.announce()

	l := g.registry.GetOrCreate(cfg.LockName(), cfg.Fair)
	op := cfg.Operation
	if holderFrom(ctx).holds(l, op) {
		return fn(ctx)
	}

	var span trace.Span
	if g.tracer != nil {
		ctx, span = g.tracer.Start(ctx, "Lock.Guard", trace.WithAttributes(
			attribute.String("lock.name", l.Name()),
			attribute.String("lock.operation", op.String()),
			attribute.Bool("lock.fair", l.Fair()),
		))
		defer span.End()
	}

	h := l.Handle(op)
	wait := cfg.Wait()
	start := time.Now()
	if err := g.acquire(ctx, h, wait); err != nil {
		if span != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}
	waited := time.Since(start)

	inner, hd := withHolding(ctx, l, op)
	id, _ := HolderID(inner)
	if span != nil {
		span.SetAttributes(
			attribute.Int64("lock.wait_ms", waited.Milliseconds()),
			attribute.String("lock.holder", id),
		)
	}
	if g.metrics {
		metrics.AcquireCounter.WithLabelValues(op.String()).Inc()
		metrics.WaitHistogram.Observe(waited.Seconds())
		metrics.HeldGauge.Inc()
	}
	g.logger.Debug("lock acquired", "lock", l.Name(), "operation", op, "holder", id, "wait", waited)

	defer func() {
		hd.released.Store(true)
		h.Release()
		if g.metrics {
			metrics.HeldGauge.Dec()
		}
		g.logger.Debug("lock released", "lock", l.Name(), "operation", op, "holder", id)
	}()
	return fn(inner)
}

func (g *Guard) acquire(ctx context.Context, h Handle, wait time.Duration) error {
	actx := ctx
	if wait > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, wait)
		defer cancel()
	}
	err := h.Acquire(actx)
	if err == nil {
		return nil
	}
	name := h.Lock().Name()
	if ctx.Err() != nil {
		if g.metrics {
			metrics.InterruptedCounter.Inc()
		}
		g.logger.Warn("lock: locking interrupted", "lock", name, "operation", h.Operation(), "error", ctx.Err())
		return &InterruptedError{Name: name, Cause: context.Cause(ctx)}
	}
	if g.metrics {
		metrics.TimeoutCounter.Inc()
	}
	g.logger.Warn("lock: acquisition timed out", "lock", name, "operation", h.Operation(), "timeout", wait)
	return &TimeoutError{Name: name, Timeout: wait}
}

func (g *Guard) announce() {
	if announced.Load() {
		return
	}
	if announced.CompareAndSwap(false, true) {
		g.logger.Info("lock: guarded invocation active")
	}
}

var defaultGuard = NewGuard()

// Do guards fn with the default guard over Default.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	return defaultGuard.Do(ctx, cfg, fn)
}

// Run is Do for functions returning a value. A nil g uses the default guard.
// On acquisition failure the zero value is returned with the error.
func Run[T any](ctx context.Context, g *Guard, cfg Config, fn func(ctx context.Context) (T, error)) (T, error) {
	if g == nil {
		g = defaultGuard
	}
	var out T
	err := g.Do(ctx, cfg, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, err
}
