package scan

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/keyscan/debounce-go/pkg/debounce"
	"github.com/keyscan/debounce-go/pkg/log"
	"github.com/keyscan/debounce-go/pkg/matrix"
)

// DefaultInterval is the scan period of Run.
const DefaultInterval = time.Millisecond

// Driver errors.
var (
	ErrNoEngine = errors.New("scan: engine is required")
	ErrNoReader = errors.New("scan: reader is required")
)

// Reader samples the physical switch matrix.
type Reader interface {
	// ReadRaw overwrites dst with the current switch states.
	ReadRaw(dst *matrix.Matrix)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(dst *matrix.Matrix)

// ReadRaw calls f(dst).
func (f ReaderFunc) ReadRaw(dst *matrix.Matrix) { f(dst) }

// Metrics counts scan cycles.
type Metrics interface {
	ScanCycle(a debounce.Algorithm, changed bool)
}

// KeyEvent is a debounced switch transition reported to the host.
type KeyEvent struct {
	Row     int
	Col     int
	Pressed bool
}

// DriverConfig configures a Driver.
type DriverConfig struct {
	// Engine debounces every cycle. Its dimensions size the matrices.
	Engine *debounce.Engine

	// Reader supplies the raw matrix.
	Reader Reader

	// Clock drives Run and stamps events. Defaults to the real clock.
	Clock clockwork.Clock

	// Interval is the scan period of Run.
	Interval time.Duration

	// OnKeyEvent receives every reported transition, outside the driver lock.
	OnKeyEvent func(KeyEvent)

	// EventLog receives SCAN events.
	EventLog log.Logger

	// Metrics counts cycles. Optional.
	Metrics Metrics

	// UnitID and Role label captured events.
	UnitID string
	Role   log.Role

	// Logger is the optional logger for debug output.
	Logger *slog.Logger
}

// Driver runs the scan loop of one keyboard half.
type Driver struct {
	mu       sync.Mutex
	raw      *matrix.Matrix
	prev     *matrix.Matrix
	cooked   *matrix.Matrix
	last     *matrix.Matrix
	reported *matrix.Matrix
	cycle    uint64

	engine     *debounce.Engine
	reader     Reader
	clock      clockwork.Clock
	interval   time.Duration
	onKeyEvent func(KeyEvent)
	events     log.Logger
	metrics    Metrics
	unitID     string
	role       log.Role
	logger     *slog.Logger
}

// NewDriver creates a Driver with every switch open.
func NewDriver(cfg DriverConfig) (*Driver, error) {
	if cfg.Engine == nil {
		return nil, ErrNoEngine
	}
	if cfg.Reader == nil {
		return nil, ErrNoReader
	}

	rows, cols := cfg.Engine.Rows(), cfg.Engine.Cols()
	d := &Driver{
		raw:        matrix.MustNew(rows, cols),
		prev:       matrix.MustNew(rows, cols),
		cooked:     matrix.MustNew(rows, cols),
		last:       matrix.MustNew(rows, cols),
		reported:   matrix.MustNew(rows, cols),
		engine:     cfg.Engine,
		reader:     cfg.Reader,
		clock:      cfg.Clock,
		interval:   cfg.Interval,
		onKeyEvent: cfg.OnKeyEvent,
		events:     log.OrNoop(cfg.EventLog),
		metrics:    cfg.Metrics,
		unitID:     cfg.UnitID,
		role:       cfg.Role,
		logger:     cfg.Logger,
	}
	if d.clock == nil {
		d.clock = clockwork.NewRealClock()
	}
	if d.interval <= 0 {
		d.interval = DefaultInterval
	}
	return d, nil
}

// Scan runs one cycle and returns the transitions reported to the host.
func (d *Driver) Scan() []KeyEvent {
	d.mu.Lock()
	d.reader.ReadRaw(d.raw)
	changed := !d.raw.Equal(d.prev)
	_ = d.prev.CopyFrom(d.raw)

	algorithm := d.engine.Algorithm()
	cookedChanged := d.engine.Debounce(d.raw, d.cooked, changed)
	d.cycle++
	cycle := d.cycle

	var keys []KeyEvent
	if cookedChanged {
		keys = d.diffLocked()
	}
	d.mu.Unlock()

	if d.metrics != nil {
		d.metrics.ScanCycle(algorithm, cookedChanged)
	}
	if len(keys) == 0 {
		return nil
	}

	d.logScan(cycle, algorithm, keys)
	d.emit(keys)
	return keys
}

// diffLocked reports cooked transitions since the previous change. A release of
// a key the host never saw pressed, after ReleaseAll, is suppressed.
func (d *Driver) diffLocked() []KeyEvent {
	var keys []KeyEvent
	for row := 0; row < d.cooked.Rows(); row++ {
		delta := d.cooked.Row(row) ^ d.last.Row(row)
		if delta == 0 {
			continue
		}
		for col := 0; col < d.cooked.Cols(); col++ {
			if !delta.Has(col) {
				continue
			}
			pressed := d.cooked.Get(row, col)
			if !pressed && !d.reported.Get(row, col) {
				continue
			}
			d.reported.Set(row, col, pressed)
			keys = append(keys, KeyEvent{Row: row, Col: col, Pressed: pressed})
		}
	}
	_ = d.last.CopyFrom(d.cooked)
	return keys
}

// ReleaseAll reports a release for every key the host holds. Keys still held
// down are not reported again until they are released and pressed anew.
// It is the engine's release action.
func (d *Driver) ReleaseAll() []KeyEvent {
	d.mu.Lock()
	var keys []KeyEvent
	for row := 0; row < d.reported.Rows(); row++ {
		for col := 0; col < d.reported.Cols(); col++ {
			if d.reported.Get(row, col) {
				keys = append(keys, KeyEvent{Row: row, Col: col})
			}
		}
	}
	d.reported.Clear()
	d.mu.Unlock()

	if len(keys) > 0 {
		d.debugLog("scan: released all keys", "count", len(keys))
		d.emit(keys)
	}
	return keys
}

func (d *Driver) emit(keys []KeyEvent) {
	if d.onKeyEvent == nil {
		return
	}
	for _, k := range keys {
		d.onKeyEvent(k)
	}
}

func (d *Driver) logScan(cycle uint64, algorithm debounce.Algorithm, keys []KeyEvent) {
	deltas := make([]log.KeyDelta, len(keys))
	for i, k := range keys {
		deltas[i] = log.KeyDelta{Row: uint8(k.Row), Col: uint8(k.Col), Pressed: k.Pressed}
	}
	d.events.Log(log.Event{
		Timestamp: d.clock.Now(),
		UnitID:    d.unitID,
		Category:  log.CategoryScan,
		Role:      d.role,
		Scan: &log.ScanEvent{
			Cycle:     cycle,
			Algorithm: uint8(algorithm),
			Keys:      deltas,
		},
	})
}

// Cooked returns a copy of the debounced matrix.
func (d *Driver) Cooked() *matrix.Matrix {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cooked.Clone()
}

// Raw returns a copy of the last raw sample.
func (d *Driver) Raw() *matrix.Matrix {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.raw.Clone()
}

// Cycles returns the number of completed scan cycles.
func (d *Driver) Cycles() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cycle
}

// Run scans every interval until ctx is done.
func (d *Driver) Run(ctx context.Context) error {
	ticker := d.clock.NewTicker(d.interval)
	defer ticker.Stop()

	d.debugLog("scan: started", "interval", d.interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			d.Scan()
		}
	}
}

func (d *Driver) debugLog(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}
