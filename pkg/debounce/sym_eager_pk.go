package debounce

import "github.com/keyscan/debounce-go/pkg/matrix"

// symEagerPerKey flips a key on its first edge and locks it for the debounce
// time. When a lockout expires the next cycle runs a transfer pass so a key
// whose raw state moved during the lockout is synchronised.
type symEagerPerKey struct {
	pacer
	cols     int
	counters []uint8
}

func newSymEagerPerKey(rows, cols int) *symEagerPerKey {
	return &symEagerPerKey{
		cols:     cols,
		counters: make([]uint8, rows*cols),
	}
}

func (s *symEagerPerKey) update(c *cycleContext, raw, cooked []matrix.Row, changed bool) bool {
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

func (s *symEagerPerKey) expire(c *cycleContext, elapsed uint8) {
	c.countersNeedUpdate = false
	c.matrixNeedUpdate = false

	for i, n := range s.counters {
		switch {
		case n == Elapsed:
		case n <= elapsed:
			s.counters[i] = Elapsed
			c.matrixNeedUpdate = true
		default:
			s.counters[i] = n - elapsed
			c.countersNeedUpdate = true
		}
	}
}

func (s *symEagerPerKey) transfer(c *cycleContext, raw, cooked []matrix.Row) bool {
	cookedChanged := false

	for row := range cooked {
		offset := row * s.cols
		delta := raw[row] ^ cooked[row]
		if delta == 0 {
			continue
		}
		next := cooked[row]
		for col := 0; col < s.cols; col++ {
			i := offset + col
			if delta.Has(col) && s.counters[i] == Elapsed {
				s.counters[i] = c.time
				c.countersNeedUpdate = true
				next ^= matrix.ColMask(col)
				cookedChanged = true
			}
		}
		cooked[row] = next
	}
	return cookedChanged
}

func (s *symEagerPerKey) reset() {
	s.pacer.reset()
	clearCounters(s.counters)
}
