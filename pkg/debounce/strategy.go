package debounce

import (
	"github.com/keyscan/debounce-go/pkg/matrix"
	"github.com/keyscan/debounce-go/pkg/timer"
)

// cycleContext is the Engine-owned state shared with the active strategy.
type cycleContext struct {
	source timer.Source

	// time is the configured debounce time, never 0 inside a strategy.
	time uint8

	// countersNeedUpdate is set while any counter is armed.
	countersNeedUpdate bool

	// matrixNeedUpdate forces a transfer pass after an eager lockout expired.
	matrixNeedUpdate bool
}

// strategy is implemented by the seven algorithms.
type strategy interface {
	// update runs one scan cycle and reports whether cooked changed.
	update(c *cycleContext, raw, cooked []matrix.Row, changed bool) bool

	// reset returns every counter to Elapsed.
	reset()
}

// newStrategies builds one strategy per algorithm, indexed by Algorithm.
func newStrategies(rows, cols int) [AlgorithmCount]strategy {
	var s [AlgorithmCount]strategy
	for _, a := range Algorithms() {
		switch a {
		case SymDeferGlobal:
			s[a] = &symDeferGlobal{}
		case SymDeferPerKey:
			s[a] = newSymDeferPerKey(rows, cols)
		case SymDeferPerRow:
			s[a] = newSymDeferPerRow(rows)
		case SymEagerPerKey:
			s[a] = newSymEagerPerKey(rows, cols)
		case SymEagerPerRow:
			s[a] = newSymEagerPerRow(rows)
		case AsymEagerDeferPerKey:
			s[a] = newAsymEagerDeferPerKey(rows, cols)
		case None:
			s[a] = none{}
		}
	}
	return s
}

// pacer tracks the last time a strategy serviced its counters.
type pacer struct {
	last uint32
}

// tick reads the clock when counters are armed and returns the time since the
// previous service, clamped to limit. read reports whether the clock was read.
func (p *pacer) tick(c *cycleContext, limit uint8) (elapsed uint8, read bool) {
	if !c.countersNeedUpdate {
		return 0, false
	}
	now := c.source.Read()
	d := timer.Diff(now, p.last)
	p.last = now
	if d > uint32(limit) {
		d = uint32(limit)
	}
	return uint8(d), true
}

// start records the service time of a change when tick did not already.
func (p *pacer) start(c *cycleContext, read bool) {
	if !read {
		p.last = c.source.Read()
	}
}

func (p *pacer) reset() {
	p.last = 0
}

// copyRows copies raw into cooked and reports whether anything differed.
func copyRows(raw, cooked []matrix.Row) bool {
	changed := false
	for i := range cooked {
		if cooked[i] != raw[i] {
			cooked[i] = raw[i]
			changed = true
		}
	}
	return changed
}

// copyBit copies one column of raw into cooked and reports whether it differed.
func copyBit(raw, cooked []matrix.Row, row, col int) bool {
	mask := matrix.ColMask(col)
	next := cooked[row]&^mask | raw[row]&mask
	if next == cooked[row] {
		return false
	}
	cooked[row] = next
	return true
}

func clearCounters(counters []uint8) {
	for i := range counters {
		counters[i] = Elapsed
	}
}
