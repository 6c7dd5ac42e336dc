package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/authdemo/sessionkit"
	"github.com/authdemo/sessionkit/identity"
	"github.com/authdemo/sessionkit/metrics/export/prometheus"
	"github.com/authdemo/sessionkit/notify"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		users      = flag.Int("users", 50, "number of accounts to cycle through")
		backend    = flag.String("store", "memory", "identity store: memory, sqlite or redis")
		sqlitePath = flag.String("sqlite-path", "sessionkit-demo.db", "sqlite database file for -store=sqlite")
		redisAddr  = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix     = flag.String("prefix", "sessionkit-demo", "redis key prefix")
		latency    = flag.Duration("latency", 0, "simulated provider latency; overrides SESSIONKIT_MOCK_LATENCY when set")
		verbose    = flag.Bool("v", false, "log toasts and debug records to stderr")
		showProm   = flag.Bool("metrics", true, "print metrics in Prometheus text format")
	)
	flag.Parse()

	if *users <= 0 {
		fmt.Fprintln(os.Stderr, "users must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	cfg, err := sessionkit.LoadConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	cfg.Mock.Latency = *latency
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	store, cleanup, err := openStore(ctx, *backend, *sqlitePath, *redisAddr, *prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "store: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	coord, err := sessionkit.New().
		WithConfig(cfg).
		WithIdentityStore(store).
		WithLogger(logger).
		WithNotifier(notify.NewLogSink(logger)).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build: %v\n", err)
		os.Exit(1)
	}
	defer coord.Close()

	var (
		register     = newPhase("register")
		refresh      = newPhase("refresh")
		logout       = newPhase("logout")
		authenticate = newPhase("authenticate")
	)

	fmt.Printf("cycling %d users against %s store...\n", *users, *backend)
	start := time.Now()
	for i := 0; i < *users; i++ {
		email := fmt.Sprintf("user-%d@demo.test", i)
		const pass = "Demo-pass-1!"

		t0 := time.Now()
		res := coord.Register(ctx, sessionkit.SignUpInput{
			Email:     email,
			Password:  pass,
			FirstName: "Demo",
			LastName:  fmt.Sprintf("User %d", i),
			Company:   "Demo Corp",
		}, nil)
		register.record(time.Since(t0), res.Err)
		if !res.Success {
			continue
		}

		t0 = time.Now()
		err := coord.RefreshNow(ctx)
		refresh.record(time.Since(t0), err)

		t0 = time.Now()
		coord.Logout(ctx)
		logout.record(time.Since(t0), nil)

		t0 = time.Now()
		res = coord.Authenticate(ctx, email, pass, nil)
		authenticate.record(time.Since(t0), res.Err)
		if res.Success {
			coord.Logout(ctx)
		}
	}
	total := time.Since(start)

	fmt.Printf("done in %s\n", total.Round(time.Millisecond))
	fmt.Println("---- results ----")
	for _, p := range []*phase{register, refresh, logout, authenticate} {
		printStats(p.name, p.stats())
	}

	if *showProm {
		fmt.Println("---- metrics ----")
		fmt.Print(prometheus.NewPrometheusExporter(coord).Render())
	}
}

func openStore(ctx context.Context, backend, sqlitePath, redisAddr, prefix string) (identity.Store, func(), error) {
	switch backend {
	case "memory":
		return identity.NewMemoryStore(), func() {}, nil

	case "sqlite":
		store, err := identity.OpenSQLite(ctx, sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		fmt.Printf("using sqlite at %s\n", sqlitePath)
		return store, func() { _ = store.Close() }, nil

	case "redis":
		addr := redisAddr
		if addr == "" {
			addr = os.Getenv("REDIS_ADDR")
		}
		if addr == "" {
			mr, err := miniredis.Run()
			if err != nil {
				return nil, nil, fmt.Errorf("start miniredis: %w", err)
			}
			client := redis.NewUniversalClient(&redis.UniversalOptions{
				Addrs: []string{mr.Addr()},
			})
			fmt.Printf("using miniredis at %s\n", mr.Addr())
			return identity.NewRedisStore(client, prefix), func() {
				_ = client.Close()
				mr.Close()
			}, nil
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		fmt.Printf("using redis at %s\n", addr)
		return identity.NewRedisStore(client, prefix), func() { _ = client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", backend)
}

type phase struct {
	name      string
	failures  int64
	latencies []time.Duration
	total     time.Duration
}

func newPhase(name string) *phase {
	return &phase{name: name}
}

func (p *phase) record(d time.Duration, err error) {
	p.latencies = append(p.latencies, d)
	p.total += d
	if err != nil {
		p.failures++
	}
}

func (p *phase) stats() phaseStats {
	return computeStats(p.total, p.latencies, p.failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	s := phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
	}
	if total > 0 {
		s.opsPerS = float64(len(samples)) / total.Seconds()
	}
	return s
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
