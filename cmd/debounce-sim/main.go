// Command debounce-sim exercises the debounce engine on a simulated matrix.
//
// By default it runs a scripted typing scenario with contact bounce through
// the configured algorithm and prints latency and chatter. Other modes compare
// all algorithms, open an interactive shell, or run a split pair whose
// secondary half follows the primary's settings.
//
// Usage:
//
//	debounce-sim [flags]
//
// Flags:
//
//	-config string        YAML configuration file
//	-algorithm string     Algorithm name or number (overrides config)
//	-time int             Debounce time in ms, -1 keeps the configured value
//	-compare              Run the scenario once per algorithm
//	-interactive          Open an interactive shell
//	-split                Run a primary/secondary pair with config sync
//	-event-log string     Write a .dlog capture file
//	-metrics-addr string  Serve Prometheus metrics on this address
//	-log-level string     Log level: debug, info, warn, error
//	-seed uint            Contact bounce seed (overrides config)
//
// Examples:
//
//	# Compare every algorithm at 8 ms
//	debounce-sim -compare -time 8
//
//	# Play with a split pair by hand
//	debounce-sim -interactive -split -event-log run.dlog
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/keyscan/debounce-go/pkg/config"
	"github.com/keyscan/debounce-go/pkg/debounce"
	"github.com/keyscan/debounce-go/pkg/log"
	"github.com/keyscan/debounce-go/pkg/metrics"
	"github.com/keyscan/debounce-go/pkg/scan"
)

// Options holds the command-line flags.
type Options struct {
	ConfigFile  string
	Algorithm   string
	Time        int
	Compare     bool
	Interactive bool
	Split       bool
	EventLog    string
	MetricsAddr string
	LogLevel    string
	Seed        uint64
}

var opts Options

func init() {
	flag.StringVar(&opts.ConfigFile, "config", "", "YAML configuration file")
	flag.StringVar(&opts.Algorithm, "algorithm", "", "Algorithm name or number (overrides config)")
	flag.IntVar(&opts.Time, "time", -1, "Debounce time in ms, -1 keeps the configured value")
	flag.BoolVar(&opts.Compare, "compare", false, "Run the scenario once per algorithm")
	flag.BoolVar(&opts.Interactive, "interactive", false, "Open an interactive shell")
	flag.BoolVar(&opts.Split, "split", false, "Run a primary/secondary pair with config sync")
	flag.StringVar(&opts.EventLog, "event-log", "", "Write a .dlog capture file")
	flag.StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.Uint64Var(&opts.Seed, "seed", 0, "Contact bounce seed (overrides config)")
}

func main() {
	flag.Parse()

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("debounce-sim failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration file, if any, and applies flag overrides.
func loadConfig(o Options) (*config.Config, error) {
	cfg := config.Default()
	if o.ConfigFile != "" {
		loaded, err := config.Load(o.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if o.Algorithm != "" {
		cfg.Algorithm = o.Algorithm
	}
	if o.Time >= 0 {
		cfg.DebounceMS = o.Time
	}
	if o.Split {
		cfg.Split.Enabled = true
	}
	if o.EventLog != "" {
		cfg.EventLog = o.EventLog
	}
	if o.MetricsAddr != "" {
		cfg.MetricsAddr = o.MetricsAddr
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.Seed != 0 {
		cfg.Scenario.Seed = o.Seed
	}
	if len(cfg.Scenario.Strokes) == 0 {
		cfg.Scenario.Strokes = demoStrokes(cfg.Matrix.Rows, cfg.Matrix.Cols)
	}
	if cfg.UnitID == "" {
		cfg.UnitID = uuid.NewString()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// demoStrokes types across the matrix diagonal with 5 ms of bounce.
func demoStrokes(rows, cols int) []config.Stroke {
	n := min(rows, cols, 8)
	strokes := make([]config.Stroke, 0, n)
	for i := range n {
		press := 20*time.Millisecond + time.Duration(i)*150*time.Millisecond
		strokes = append(strokes, config.Stroke{
			Row:     i,
			Col:     i,
			Press:   press,
			Release: press + 80*time.Millisecond,
			Bounce:  5 * time.Millisecond,
		})
	}
	return strokes
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	events, closeEvents, err := openEventLog(cfg.EventLog, logger)
	if err != nil {
		return err
	}
	defer closeEvents()

	var registry *prometheus.Registry
	if cfg.MetricsAddr != "" {
		registry = metrics.NewRegistry()
		stopMetrics := serveMetrics(cfg.MetricsAddr, registry, logger)
		defer stopMetrics()
	}

	switch {
	case opts.Interactive:
		return runInteractive(ctx, cfg, events, registry, logger)
	case cfg.Split.Enabled:
		return runSplitDemo(ctx, cfg, events, registry, logger)
	case opts.Compare:
		return runCompare(cfg, events, registry)
	default:
		return runBench(cfg, events, registry)
	}
}

// openEventLog mirrors captured events to the debug log and, when path is
// set, to a capture file.
func openEventLog(path string, logger *slog.Logger) (log.Logger, func(), error) {
	adapter := log.NewSlogAdapter(logger)
	if path == "" {
		return adapter, func() {}, nil
	}

	file, err := log.NewFileLogger(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open event log: %w", err)
	}
	closeFn := func() {
		logger.Info("event log closed", "path", path, "events", file.Written(), "dropped", file.Dropped())
		_ = file.Close()
	}
	return log.NewMultiLogger(file, adapter), closeFn, nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func benchConfig(cfg *config.Config, events log.Logger, registry *prometheus.Registry) scan.BenchConfig {
	bc := scan.BenchConfig{EventLog: events, UnitID: cfg.UnitID}
	if registry != nil {
		bc.Metrics = metrics.NewRecorder(registry)
	}
	return bc
}

func runBench(cfg *config.Config, events log.Logger, registry *prometheus.Registry) error {
	ec := cfg.EngineConfig()
	report, err := scan.Simulate(cfg.BenchScenario(), ec.Algorithm, ec.Time, benchConfig(cfg, events, registry))
	if err != nil {
		return err
	}
	printReports(os.Stdout, []scan.Report{report})
	return nil
}

func runCompare(cfg *config.Config, events log.Logger, registry *prometheus.Registry) error {
	reports, err := scan.Compare(cfg.BenchScenario(), cfg.EngineConfig().Time, benchConfig(cfg, events, registry))
	if err != nil {
		return err
	}
	printReports(os.Stdout, reports)
	return nil
}

func printReports(w io.Writer, reports []scan.Report) {
	for _, r := range reports {
		fmt.Fprintln(w, r)
	}
}

func newHalfOptions(cfg *config.Config, clock clockwork.Clock, events log.Logger, registry *prometheus.Registry, logger *slog.Logger) halfOptions {
	ho := halfOptions{
		engine:   cfg.EngineConfig(),
		unitID:   cfg.UnitID,
		role:     log.RoleStandalone,
		clock:    clock,
		interval: cfg.ScanInterval,
		events:   events,
		logger:   logger,
	}
	if registry != nil {
		ho.registry = registry
	}
	return ho
}

func runInteractive(ctx context.Context, cfg *config.Config, events log.Logger, registry *prometheus.Registry, logger *slog.Logger) error {
	clock := clockwork.NewFakeClock()
	sh := &shell{out: os.Stdout, clock: clock}

	ho := newHalfOptions(cfg, clock, events, registry, logger)
	ho.onKeyEvent = func(role log.Role, k scan.KeyEvent) {
		state := "up"
		if k.Pressed {
			state = "down"
		}
		fmt.Fprintf(sh.out, "[%s] key r%d c%d %s\n", role, k.Row, k.Col, state)
	}

	if cfg.Split.Enabled {
		p, err := newPair(pairOptions{half: ho, housekeeping: cfg.Split.Housekeeping, syncClock: clockwork.NewRealClock()})
		if err != nil {
			return err
		}
		defer p.close()

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go p.run(ctx)

		sh.local, sh.pair = p.primary, p
		// Deliver the configured settings before the first command.
		sh.sync()
	} else {
		h, err := newHalf(ho)
		if err != nil {
			return err
		}
		sh.local = h
	}

	return runShell(ctx, sh)
}

// runSplitDemo steps the primary through every algorithm and shows the
// secondary following. Both halves scan live while settings change.
func runSplitDemo(ctx context.Context, cfg *config.Config, events log.Logger, registry *prometheus.Registry, logger *slog.Logger) error {
	ho := newHalfOptions(cfg, clockwork.NewRealClock(), events, registry, logger)
	p, err := newPair(pairOptions{half: ho, housekeeping: cfg.Split.Housekeeping, syncClock: clockwork.NewRealClock()})
	if err != nil {
		return err
	}
	defer p.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = p.primary.driver.Run(ctx) }()
	go func() { _ = p.secondary.driver.Run(ctx) }()

	show := func(step string) error {
		if _, err := p.syncNow(time.Second); err != nil {
			return err
		}
		pa, pt := p.primary.engine.Settings()
		sa, st := p.secondary.engine.Settings()
		fmt.Printf("%-22s primary %-20s %3dms  secondary %-20s %3dms\n", step, pa, pt, sa, st)
		return nil
	}

	if err := show("initial"); err != nil {
		return err
	}
	for range debounce.AlgorithmCount {
		a := p.primary.engine.CycleAlgorithm(false)
		if err := show("cycle -> " + a.String()); err != nil {
			return err
		}
	}
	p.primary.engine.StepTime(true, true)
	return show("time +10")
}
