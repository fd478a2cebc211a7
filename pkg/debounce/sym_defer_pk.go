package debounce

import "github.com/keyscan/debounce-go/pkg/matrix"

// symDeferPerKey arms a counter per key on the first mismatch and copies the
// key once the counter runs out. Further edges do not restart an armed counter;
// a key that returns to its cooked state cancels it.
type symDeferPerKey struct {
	pacer
	cols     int
	counters []uint8
}

func newSymDeferPerKey(rows, cols int) *symDeferPerKey {
	return &symDeferPerKey{
		cols:     cols,
		counters: make([]uint8, rows*cols),
	}
}

func (s *symDeferPerKey) update(c *cycleContext, raw, cooked []matrix.Row, changed bool) bool {
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

func (s *symDeferPerKey) expire(c *cycleContext, raw, cooked []matrix.Row, elapsed uint8) bool {
	c.countersNeedUpdate = false
	cookedChanged := false

	for row := range cooked {
		offset := row * s.cols
		for col := 0; col < s.cols; col++ {
			i := offset + col
			switch n := s.counters[i]; {
			case n == Elapsed:
			case n <= elapsed:
				s.counters[i] = Elapsed
				if copyBit(raw, cooked, row, col) {
					cookedChanged = true
				}
			default:
				s.counters[i] = n - elapsed
				c.countersNeedUpdate = true
			}
		}
	}
	return cookedChanged
}

func (s *symDeferPerKey) arm(c *cycleContext, raw, cooked []matrix.Row) {
	for row := range cooked {
		offset := row * s.cols
		delta := raw[row] ^ cooked[row]
		for col := 0; col < s.cols; col++ {
			i := offset + col
			if !delta.Has(col) {
				s.counters[i] = Elapsed
				continue
			}
			if s.counters[i] == Elapsed {
				s.counters[i] = c.time
				c.countersNeedUpdate = true
			}
		}
	}
}

func (s *symDeferPerKey) reset() {
	s.pacer.reset()
	clearCounters(s.counters)
}
