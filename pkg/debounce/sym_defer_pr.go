package debounce

import "github.com/keyscan/debounce-go/pkg/matrix"

// symDeferPerRow is symDeferPerKey with one counter per row. An expired row
// is copied whole.
type symDeferPerRow struct {
	pacer
	counters []uint8
}

func newSymDeferPerRow(rows int) *symDeferPerRow {
	return &symDeferPerRow{counters: make([]uint8, rows)}
}

func (s *symDeferPerRow) update(c *cycleContext, raw, cooked []matrix.Row, changed bool) bool {
	cookedChanged := false

	elapsed, read := s.tick(c, MaxTime)
	if elapsed > 0 {
		cookedChanged = s.expire(c, raw, cooked, elapsed)
	}

	if changed {
		s.start(c, read)
		s.arm(c, raw, cooked)
	}

	return cookedChanged
}

func (s *symDeferPerRow) expire(c *cycleContext, raw, cooked []matrix.Row, elapsed uint8) bool {
	c.countersNeedUpdate = false
	cookedChanged := false

	for row, n := range s.counters {
		switch {
		case n == Elapsed:
		case n <= elapsed:
			s.counters[row] = Elapsed
			if cooked[row] != raw[row] {
				cooked[row] = raw[row]
				cookedChanged = true
			}
		default:
			s.counters[row] = n - elapsed
			c.countersNeedUpdate = true
		}
	}
	return cookedChanged
}

func (s *symDeferPerRow) arm(c *cycleContext, raw, cooked []matrix.Row) {
	for row := range s.counters {
		if raw[row] == cooked[row] {
			s.counters[row] = Elapsed
			continue
		}
		if s.counters[row] == Elapsed {
			s.counters[row] = c.time
			c.countersNeedUpdate = true
		}
	}
}

func (s *symDeferPerRow) reset() {
	s.pacer.reset()
	clearCounters(s.counters)
}
