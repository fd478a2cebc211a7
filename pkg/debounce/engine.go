package debounce

import (
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/keyscan/debounce-go/pkg/log"
	"github.com/keyscan/debounce-go/pkg/matrix"
	"github.com/keyscan/debounce-go/pkg/timer"
)

// Config reasons recorded in CONFIG events.
const (
	ReasonSetAlgorithm        = "set_algorithm"
	ReasonSetTime             = "set_time"
	ReasonSetAlgorithmAndTime = "set_algorithm_and_time"
	ReasonCycleAlgorithm      = "cycle_algorithm"
	ReasonStepTime            = "step_time"
)

// Hooks observes configuration changes. Nil callbacks are skipped.
// Callbacks run after the change is visible and without the Engine lock held,
// so they may call back into the Engine.
type Hooks struct {
	// OnAlgorithmChange receives the algorithm now in effect.
	OnAlgorithmChange func(Algorithm)

	// OnTimeChange receives the debounce time now in effect.
	OnTimeChange func(uint8)
}

// Config configures an Engine.
type Config struct {
	// Rows and Cols are the matrix dimensions of this unit.
	Rows int
	Cols int

	// Algorithm is the initial algorithm. Out of range selects None.
	Algorithm Algorithm

	// Time is the initial debounce time in milliseconds, clamped for Algorithm.
	Time uint8

	// Clock stamps captured events. Defaults to the real clock.
	Clock clockwork.Clock

	// Source is the millisecond counter. Defaults to a ClockSource over Clock.
	Source timer.Source

	// Release is the host action releasing every held key. It runs on every
	// reconfiguration before hooks are notified.
	Release func()

	// EventLog receives CONFIG and ERROR events.
	EventLog log.Logger

	// UnitID and Role label captured events.
	UnitID string
	Role   log.Role
}

// DefaultConfig returns a configuration for one half of a 5x14 split board.
func DefaultConfig() Config {
	return Config{
		Rows:      5,
		Cols:      14,
		Algorithm: SymDeferGlobal,
		Time:      DefaultTime,
	}
}

// Engine dispatches scan cycles to the active algorithm.
type Engine struct {
	mu sync.Mutex

	rows int
	cols int

	algorithm Algorithm
	time      uint8

	state      cycleContext
	strategies [AlgorithmCount]strategy

	hooks   []Hooks
	release func()

	// releasing counts release actions in flight. Scan cycles are skipped
	// meanwhile so nothing commits that the release would then discard.
	releasing int

	// skipped records a changed cycle dropped while releasing. The next
	// cycle runs as changed.
	skipped bool

	clock  clockwork.Clock
	logger log.Logger
	unitID string
	role   log.Role
}

// NewEngine creates an Engine with every counter Elapsed.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Rows < 1 || cfg.Rows > matrix.MaxRows {
		return nil, fmt.Errorf("%w: %d", matrix.ErrInvalidRows, cfg.Rows)
	}
	if cfg.Cols < 1 || cfg.Cols > matrix.MaxCols {
		return nil, fmt.Errorf("%w: %d", matrix.ErrInvalidCols, cfg.Cols)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	source := cfg.Source
	if source == nil {
		source = timer.NewClockSource(clock)
	}

	algorithm := cfg.Algorithm
	if !algorithm.Valid() {
		algorithm = None
	}

	e := &Engine{
		rows:       cfg.Rows,
		cols:       cfg.Cols,
		algorithm:  algorithm,
		time:       min(cfg.Time, algorithm.TimeLimit()),
		strategies: newStrategies(cfg.Rows, cfg.Cols),
		release:    cfg.Release,
		clock:      clock,
		logger:     log.OrNoop(cfg.EventLog),
		unitID:     cfg.UnitID,
		role:       cfg.Role,
	}
	e.state.source = source
	e.resetLocked()
	return e, nil
}

// Rows returns the matrix row count.
func (e *Engine) Rows() int {
	return e.rows
}

// Cols returns the matrix column count.
func (e *Engine) Cols() int {
	return e.cols
}

// Debounce runs one scan cycle. changed reports whether raw differs from the
// previous cycle's raw matrix. Debounce returns true iff cooked was modified.
// While a reconfiguration's release action runs, cycles leave cooked untouched
// and a skipped change is replayed on the first cycle afterwards.
func (e *Engine) Debounce(raw, cooked *matrix.Matrix, changed bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.fitsLocked(raw) || !e.fitsLocked(cooked) {
		e.logger.Log(log.Event{
			Timestamp: e.clock.Now(),
			UnitID:    e.unitID,
			Category:  log.CategoryError,
			Role:      e.role,
			Error: &log.ErrorEventData{
				Component: "debounce",
				Message:   matrix.ErrDimensions.Error(),
				Context:   fmt.Sprintf("engine %dx%d", e.rows, e.cols),
			},
		})
		return false
	}

	if e.releasing > 0 {
		e.skipped = e.skipped || changed
		return false
	}
	if e.skipped {
		changed = true
		e.skipped = false
	}

	return e.activeLocked().update(&e.state, raw.Data(), cooked.Data(), changed)
}

func (e *Engine) fitsLocked(m *matrix.Matrix) bool {
	return m != nil && m.Rows() == e.rows && m.Cols() == e.cols
}

func (e *Engine) activeLocked() strategy {
	if e.time == 0 {
		return e.strategies[None]
	}
	if !e.algorithm.Valid() {
		return e.strategies[SymDeferGlobal]
	}
	return e.strategies[e.algorithm]
}

// Algorithm returns the active algorithm.
func (e *Engine) Algorithm() Algorithm {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.algorithm
}

// Time returns the debounce time in milliseconds.
func (e *Engine) Time() uint8 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.time
}

// Settings returns the algorithm and time as one consistent pair.
func (e *Engine) Settings() (Algorithm, uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.algorithm, e.time
}

// AlgorithmName returns the name of a, or "unknown".
func (e *Engine) AlgorithmName(a Algorithm) string {
	return a.String()
}

// AddHooks registers an observer. Observers run in registration order.
func (e *Engine) AddHooks(h Hooks) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = append(e.hooks, h)
}

// SetAlgorithm switches to a. Out of range selects None. Selecting the active
// algorithm does nothing.
func (e *Engine) SetAlgorithm(a Algorithm) {
	if !a.Valid() {
		a = None
	}
	e.mutate(ReasonSetAlgorithm, func() change {
		if a == e.algorithm {
			return 0
		}
		e.algorithm = a
		return changeAlgorithm
	})
}

// SetTime sets the debounce time, clamped to the active algorithm's limit.
// It always resets state, even when the time is unchanged.
func (e *Engine) SetTime(ms uint8) {
	e.mutate(ReasonSetTime, func() change {
		e.time = min(ms, e.algorithm.TimeLimit())
		return changeTime
	})
}

// SetAlgorithmAndTime applies both settings with a single reset and a single
// release. Time hooks run before algorithm hooks.
func (e *Engine) SetAlgorithmAndTime(a Algorithm, ms uint8) {
	if !a.Valid() {
		a = None
	}
	e.mutate(ReasonSetAlgorithmAndTime, func() change {
		e.algorithm = a
		e.time = min(ms, a.TimeLimit())
		return changeTime | changeAlgorithm
	})
}

// CycleAlgorithm selects the next algorithm in wire order, or the previous one
// when reverse is set, wrapping at both ends. It returns the new algorithm.
func (e *Engine) CycleAlgorithm(reverse bool) Algorithm {
	var next Algorithm
	e.mutate(ReasonCycleAlgorithm, func() change {
		switch {
		case !reverse:
			next = (e.algorithm + 1) % AlgorithmCount
		case e.algorithm == 0:
			next = AlgorithmCount - 1
		default:
			next = e.algorithm - 1
		}
		e.algorithm = next
		return changeAlgorithm
	})
	return next
}

// StepTime raises or lowers the debounce time by 1 ms, or 10 ms when coarse.
// Raising stops at the active algorithm's limit, lowering stops at 0.
// It returns the new time.
func (e *Engine) StepTime(up, coarse bool) uint8 {
	step := 1
	if coarse {
		step = 10
	}
	var next uint8
	e.mutate(ReasonStepTime, func() change {
		t := int(e.time)
		if up {
			t = min(t+step, int(e.algorithm.TimeLimit()))
		} else {
			t = max(t-step, 0)
		}
		next = uint8(t)
		e.time = next
		return changeTime
	})
	return next
}

// Reset returns every algorithm to its initial state without releasing keys
// or notifying hooks.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

func (e *Engine) resetLocked() {
	for _, s := range e.strategies {
		s.reset()
	}
	e.state.time = e.time
	e.state.countersNeedUpdate = false
	e.state.matrixNeedUpdate = false
}

// change flags which observers a mutation notifies.
type change uint8

const (
	changeAlgorithm change = 1 << iota
	changeTime
)

// mutate applies fn under the lock. When fn reports a change, all state is
// reset and, after unlocking, the release action runs with scan cycles held
// off. Then a CONFIG event is captured and hooks are notified.
func (e *Engine) mutate(reason string, fn func() change) {
	e.mu.Lock()
	oldAlgorithm, oldTime := e.algorithm, e.time
	c := fn()
	if c == 0 {
		e.mu.Unlock()
		return
	}
	e.resetLocked()
	algorithm, t := e.algorithm, e.time
	hooks := e.hooks
	if e.release != nil {
		e.releasing++
	}
	e.mu.Unlock()

	if e.release != nil {
		e.runRelease()
	}

	e.logger.Log(log.Event{
		Timestamp: e.clock.Now(),
		UnitID:    e.unitID,
		Category:  log.CategoryConfig,
		Role:      e.role,
		Config: &log.ConfigEvent{
			Reason:       reason,
			OldAlgorithm: uint8(oldAlgorithm),
			NewAlgorithm: uint8(algorithm),
			OldTimeMS:    oldTime,
			NewTimeMS:    t,
		},
	})

	if c&changeTime != 0 {
		for _, h := range hooks {
			if h.OnTimeChange != nil {
				h.OnTimeChange(t)
			}
		}
	}
	if c&changeAlgorithm != 0 {
		for _, h := range hooks {
			if h.OnAlgorithmChange != nil {
				h.OnAlgorithmChange(algorithm)
			}
		}
	}
}

func (e *Engine) runRelease() {
	defer func() {
		e.mu.Lock()
		e.releasing--
		e.mu.Unlock()
	}()
	e.release()
}
