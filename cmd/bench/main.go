package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	lockerrors "github.com/mirkobrombin/go-locked/v1/errors"
	"github.com/mirkobrombin/go-locked/v1/lock"
	"github.com/mirkobrombin/go-locked/v1/metrics"
)

var (
	concurrency = flag.Int("c", 50, "Concurrency")
	duration    = flag.Duration("d", 5*time.Second, "Run duration")
	names       = flag.Int("names", 4, "Number of distinct lock names")
	writeRatio  = flag.Float64("write-ratio", 0.1, "Fraction of calls taking the write side")
	hold        = flag.Duration("hold", 50*time.Microsecond, "Time spent inside the guarded call")
	timeout     = flag.Int64("timeout", 0, "Acquisition timeout in milliseconds, 0 waits forever")
	target      = flag.String("target", "all", "Target: barging, fair")
	metricsAddr = flag.String("metrics-addr", "", "Serve /metrics on this address while running")
	verbose     = flag.Bool("v", false, "Log lock events")
)

type result struct {
	ops      int64
	timeouts int64
	waits    []int64
}

func main() {
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	reg := metrics.NewRegistry()
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Printf("metrics server: %v", err)
			}
		}()
	}

	targets := strings.Split(*target, ",")
	if *target == "all" {
		targets = []string{"barging", "fair"}
	}

	fmt.Printf("| %-10s | %-10s | %-10s | %-12s | %-12s |\n", "Lock", "Ops/sec", "Timeouts", "Avg Wait", "P99 Wait")
	fmt.Println("|:---|:---|:---|:---|:---|")

	for _, t := range targets {
		t = strings.TrimSpace(t)
		var fair bool
		switch t {
		case "barging":
		case "fair":
			fair = true
		default:
			log.Printf("Unknown target: %s", t)
			continue
		}
		g := lock.NewGuard(
			lock.WithRegistry(lock.NewRegistry()),
			lock.WithLogger(logger),
			lock.WithMetrics(reg),
		)
		r := runBenchmark(g, fair)
		report(t, r)
	}
}

func runBenchmark(g *lock.Guard, fair bool) result {
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ops      atomic.Int64
		timeouts atomic.Int64
		waits    []int64
	)
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(seed))
			local := make([]int64, 0, 1024)
			for ctx.Err() == nil {
				cfg := lock.Config{
					Name:    fmt.Sprintf("bench:%d", rnd.Intn(*names)),
					Fair:    fair,
					Timeout: *timeout,
				}
				if rnd.Float64() < *writeRatio {
					cfg.Operation = lock.OperationWrite
				}
				start := time.Now()
				err := g.Do(ctx, cfg, func(context.Context) error {
					local = append(local, time.Since(start).Nanoseconds())
					time.Sleep(*hold)
					return nil
				})
				switch {
				case err == nil:
					ops.Add(1)
				case errors.Is(err, lockerrors.ErrTimeout):
					timeouts.Add(1)
				case errors.Is(err, lockerrors.ErrInterrupted):
					// run finished while waiting
				default:
					log.Printf("unexpected error: %v", err)
				}
			}
			mu.Lock()
			waits = append(waits, local...)
			mu.Unlock()
		}(int64(i) + 1)
	}
	wg.Wait()
	return result{ops: ops.Load(), timeouts: timeouts.Load(), waits: waits}
}

func report(name string, r result) {
	if r.ops == 0 {
		fmt.Printf("| %-10s | %-10s | %-10d | %-12s | %-12s |\n", name, "ERROR", r.timeouts, "-", "-")
		return
	}
	throughput := float64(r.ops) / duration.Seconds()

	var total int64
	for _, w := range r.waits {
		total += w
	}
	avg := time.Duration(total / int64(len(r.waits)))

	sort.Slice(r.waits, func(i, j int) bool { return r.waits[i] < r.waits[j] })
	p99Idx := int(float64(len(r.waits)) * 0.99)
	if p99Idx >= len(r.waits) {
		p99Idx = len(r.waits) - 1
	}
	p99 := time.Duration(r.waits[p99Idx])

	fmt.Printf("| %-10s | %-10.0f | %-10d | %-12s | %-12s |\n", name, throughput, r.timeouts, avg, p99)
}
