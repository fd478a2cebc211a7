package main

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/keyscan/debounce-go/pkg/debounce"
	"github.com/keyscan/debounce-go/pkg/log"
	"github.com/keyscan/debounce-go/pkg/matrix"
	"github.com/keyscan/debounce-go/pkg/metrics"
	"github.com/keyscan/debounce-go/pkg/scan"
	"github.com/keyscan/debounce-go/pkg/split"
	"github.com/keyscan/debounce-go/pkg/timer"
)

// switchMatrix is the simulated physical matrix of one half.
type switchMatrix struct {
	mu sync.Mutex
	m  *matrix.Matrix
}

func (s *switchMatrix) ReadRaw(dst *matrix.Matrix) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = dst.CopyFrom(s.m)
}

func (s *switchMatrix) set(row, col int, closed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.Set(row, col, closed)
}

func (s *switchMatrix) toggle(row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.Toggle(row, col)
}

// half is one keyboard half: switches, engine and scan driver.
type half struct {
	unitID   string
	role     log.Role
	switches *switchMatrix
	engine   *debounce.Engine
	driver   *scan.Driver
	recorder *metrics.Recorder
}

type halfOptions struct {
	engine     debounce.Config
	unitID     string
	role       log.Role
	clock      clockwork.Clock
	interval   time.Duration
	events     log.Logger
	registry   prometheus.Registerer
	onKeyEvent func(log.Role, scan.KeyEvent)
	logger     *slog.Logger
}

func newHalf(opts halfOptions) (*half, error) {
	h := &half{unitID: opts.unitID, role: opts.role}

	cfg := opts.engine
	cfg.Clock = opts.clock
	cfg.Source = timer.NewClockSource(opts.clock)
	cfg.EventLog = opts.events
	cfg.UnitID = opts.unitID
	cfg.Role = opts.role
	cfg.Release = func() { h.driver.ReleaseAll() }

	engine, err := debounce.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	h.engine = engine
	h.switches = &switchMatrix{m: matrix.MustNew(engine.Rows(), engine.Cols())}

	if opts.registry != nil {
		reg := prometheus.WrapRegistererWith(prometheus.Labels{"role": opts.role.String()}, opts.registry)
		h.recorder = metrics.NewRecorder(reg)
		h.recorder.Observe(engine.Settings())
		engine.AddHooks(h.recorder.Hooks())
	}

	dc := scan.DriverConfig{
		Engine:   engine,
		Reader:   h.switches,
		Clock:    opts.clock,
		Interval: opts.interval,
		EventLog: opts.events,
		UnitID:   opts.unitID,
		Role:     opts.role,
		Logger:   opts.logger,
	}
	if h.recorder != nil {
		dc.Metrics = h.recorder
	}
	if opts.onKeyEvent != nil {
		dc.OnKeyEvent = func(k scan.KeyEvent) { opts.onKeyEvent(opts.role, k) }
	}
	h.driver, err = scan.NewDriver(dc)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// observer returns the split observer of this half, or nil without metrics.
func (h *half) observer() split.Observer {
	if h.recorder == nil {
		return nil
	}
	return h.recorder
}
