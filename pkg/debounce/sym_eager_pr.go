package debounce

import "github.com/keyscan/debounce-go/pkg/matrix"

// symEagerPerRow is symEagerPerKey with one lockout per row.
type symEagerPerRow struct {
	pacer
	counters []uint8
}

func newSymEagerPerRow(rows int) *symEagerPerRow {
	return &symEagerPerRow{counters: make([]uint8, rows)}
}

func (s *symEagerPerRow) update(c *cycleContext, raw, cooked []matrix.Row, changed bool) bool {
	elapsed, read := s.tick(c, MaxTime)
	if elapsed > 0 {
		s.expire(c, elapsed)
	}

	if !changed && !c.matrixNeedUpdate {
		return false
	}
	s.start(c, read)
	c.matrixNeedUpdate = false
	return s.transfer(c, raw, cooked)
}

func (s *symEagerPerRow) expire(c *cycleContext, elapsed uint8) {
	c.countersNeedUpdate = false
	c.matrixNeedUpdate = false

	for row, n := range s.counters {
		switch {
		case n == Elapsed:
		case n <= elapsed:
			s.counters[row] = Elapsed
			c.matrixNeedUpdate = true
		default:
			s.counters[row] = n - elapsed
			c.countersNeedUpdate = true
		}
	}
}

func (s *symEagerPerRow) transfer(c *cycleContext, raw, cooked []matrix.Row) bool {
	cookedChanged := false

	for row := range s.counters {
		if raw[row] == cooked[row] || s.counters[row] != Elapsed {
			continue
		}
		s.counters[row] = c.time
		c.countersNeedUpdate = true
		cooked[row] = raw[row]
		cookedChanged = true
	}
	return cookedChanged
}

func (s *symEagerPerRow) reset() {
	s.pacer.reset()
	clearCounters(s.counters)
}
