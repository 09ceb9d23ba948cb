// Command bench runs a synthetic workload against the N-way cache and exposes
// optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/nwaycache/cache"
	"github.com/IvanBrykalov/nwaycache/internal/config"
	"github.com/IvanBrykalov/nwaycache/internal/util"
	pmet "github.com/IvanBrykalov/nwaycache/metrics/prom"
)

// entry is the cached value; born lets validated reads reject old values.
type entry struct {
	val  string
	born int64
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "bench:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default(util.ReasonableWayCount())

	// ---- Flags (explicitly set flags override the config file) ----
	var (
		cfgPath  = flag.String("config", "", "YAML config file (optional)")
		ways     = flag.Int("ways", cfg.Cache.Ways, "number of ways (fixed for the cache lifetime)")
		wayCap   = flag.Int("way_cap", cfg.Cache.WayCapacity, "per-way capacity (entries)")
		resizeTo = flag.Int("resize_to", 0, "apply UpdateCapacity(n) halfway through (0 = never)")

		workers  = flag.Int("workers", cfg.Workload.Workers, "number of worker goroutines")
		duration = flag.Duration("duration", cfg.Workload.Duration, "benchmark duration")
		readPct  = flag.Int("reads", cfg.Workload.ReadPct, "read percentage [0..100]")
		maxAge   = flag.Duration("max_age", 0, "reject cached values older than this on read (0 = off)")

		keys    = flag.Int("keys", cfg.Workload.Keys, "keyspace size")
		zipfS   = flag.Float64("zipf_s", cfg.Workload.ZipfS, "Zipf s > 1 (skew)")
		zipfV   = flag.Float64("zipf_v", cfg.Workload.ZipfV, "Zipf v")
		seed    = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		preload = flag.Int("preload", 0, "preload entries (0 = total capacity/2)")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", cfg.Metrics.Addr, "serve Prometheus metrics at addr")
		logLevel    = flag.String("log_level", cfg.LogLevel, "debug | info | warn | error")
	)
	flag.Parse()

	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath, cfg)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ways":
			cfg.Cache.Ways = *ways
		case "way_cap":
			cfg.Cache.WayCapacity = *wayCap
		case "resize_to":
			cfg.Cache.ResizeTo = *resizeTo
		case "workers":
			cfg.Workload.Workers = *workers
		case "duration":
			cfg.Workload.Duration = *duration
		case "reads":
			cfg.Workload.ReadPct = *readPct
		case "max_age":
			cfg.Workload.MaxAge = *maxAge
		case "keys":
			cfg.Workload.Keys = *keys
		case "zipf_s":
			cfg.Workload.ZipfS = *zipfS
		case "zipf_v":
			cfg.Workload.ZipfV = *zipfV
		case "seed":
			cfg.Workload.Seed = *seed
		case "preload":
			cfg.Workload.Preload = *preload
		case "pprof":
			cfg.Metrics.PprofAddr = *pprofAddr
		case "http":
			cfg.Metrics.Addr = *metricsAddr
		case "log_level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := newLogger(cfg.LogLevel)

	// ---- pprof server (on DefaultServeMux) ----
	if addr := cfg.Metrics.PprofAddr; addr != "" {
		go func() {
			log.Info("pprof: serving", slog.String("addr", addr))
			log.Error("pprof server stopped", slog.Any("err", http.ListenAndServe(addr, nil)))
		}()
	}

	// ---- Prometheus metrics ----
	reg := prometheus.NewRegistry()
	metrics := pmet.New(reg, cfg.Metrics.Namespace, "bench", nil)
	if addr := cfg.Metrics.Addr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			log.Info("metrics: serving", slog.String("addr", addr))
			if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server stopped", slog.Any("err", err))
			}
		}()
	}

	// ---- Build cache ----
	c, err := cache.New[string, entry](cfg.Cache.Ways, cfg.Cache.WayCapacity, cache.Options[string, entry]{
		Hash:    util.HashString,
		Equal:   func(a, b string) bool { return a == b },
		Metrics: metrics,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	// ---- Preload half capacity to get a realistic hit-rate ----
	pl := cfg.Workload.Preload
	if pl == 0 {
		pl = cfg.Cache.Ways * cfg.Cache.WayCapacity / 2
	}
	now := time.Now().UnixNano()
	for i := 0; i < pl; i++ {
		c.Put("k:"+strconv.Itoa(i), entry{val: "v" + strconv.Itoa(i), born: now})
	}

	// ---- Load generation ----
	w := cfg.Workload
	keysMax := uint64(w.Keys - 1)
	maxAgeNs := int64(w.MaxAge)
	workersN := max(w.Workers, 1)

	var reads, writes, hits, misses, total atomic.Uint64
	ctx, cancel := context.WithTimeout(context.Background(), w.Duration)
	defer cancel()

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)

	if cfg.Cache.ResizeTo > 0 {
		g.Go(func() error {
			select {
			case <-ctx.Done():
			case <-time.After(w.Duration / 2):
				c.UpdateCapacity(cfg.Cache.ResizeTo)
			}
			return nil
		})
	}

	for id := 0; id < workersN; id++ {
		g.Go(func() error {
			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			r := rand.New(rand.NewSource(w.Seed + int64(id)*9973))
			zipf := rand.NewZipf(r, w.ZipfS, w.ZipfV, keysMax)
			key := func() string { return "k:" + strconv.FormatUint(zipf.Uint64(), 10) }

			valid := cache.Always[entry]
			if maxAgeNs > 0 {
				valid = func(e entry) bool { return time.Now().UnixNano()-e.born <= maxAgeNs }
			}

			for {
				select {
				case <-ctx.Done():
					return nil
				default:
				}

				total.Add(1)
				if int(r.Int31n(100)) < w.ReadPct {
					reads.Add(1)
					if _, ok := c.GetValidated(key(), valid); ok {
						hits.Add(1)
					} else {
						misses.Add(1)
					}
				} else {
					writes.Add(1)
					c.Put(key(), entry{val: "v" + strconv.Itoa(r.Int()), born: time.Now().UnixNano()})
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	// ---- Report ----
	ops := total.Load()
	hitRate := 0.0
	if n := reads.Load(); n > 0 {
		hitRate = float64(hits.Load()) / float64(n) * 100
	}
	st := c.Stats()

	fmt.Printf("ways=%d way_cap=%d workers=%d keys=%d dur=%v seed=%d\n",
		c.Ways(), c.WayCapacity(), workersN, w.Keys, elapsed, w.Seed)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		ops, float64(ops)/elapsed.Seconds(), reads.Load(), writes.Load())
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%  evictions=%d\n",
		hits.Load(), misses.Load(), hitRate, st.Evictions)
	fmt.Printf("Size()=%d\n", c.Size())
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
