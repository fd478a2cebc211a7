package debounce

import "github.com/keyscan/debounce-go/pkg/matrix"

// asymCounter is the per-key state of the asymmetric algorithm.
type asymCounter struct {
	// pressed is the direction of the pending transition.
	pressed bool

	// time is the remaining time, at most MaxAsymmetricTime.
	time uint8
}

// asymEagerDeferPerKey commits presses immediately and locks the key, while a
// release is only committed after the key stayed released for the debounce
// time.
type asymEagerDeferPerKey struct {
	pacer
	cols     int
	counters []asymCounter
}

func newAsymEagerDeferPerKey(rows, cols int) *asymEagerDeferPerKey {
	return &asymEagerDeferPerKey{
		cols:     cols,
		counters: make([]asymCounter, rows*cols),
	}
}

func (s *asymEagerDeferPerKey) update(c *cycleContext, raw, cooked []matrix.Row, changed bool) bool {
	cookedChanged := false

	elapsed, read := s.tick(c, MaxAsymmetricTime)
	if elapsed > 0 {
		cookedChanged = s.expire(c, raw, cooked, elapsed)
	}

	if changed || c.matrixNeedUpdate {
		s.start(c, read)
		c.matrixNeedUpdate = false
		if s.transfer(c, raw, cooked) {
			cookedChanged = true
		}
	}

	return cookedChanged
}

func (s *asymEagerDeferPerKey) expire(c *cycleContext, raw, cooked []matrix.Row, elapsed uint8) bool {
	c.countersNeedUpdate = false
	c.matrixNeedUpdate = false
	cookedChanged := false

	for row := range cooked {
		offset := row * s.cols
		for col := 0; col < s.cols; col++ {
			ctr := &s.counters[offset+col]
			switch {
			case ctr.time == Elapsed:
			case ctr.time <= elapsed:
				ctr.time = Elapsed
				if ctr.pressed {
					// Press lockout over; the key may move again.
					c.matrixNeedUpdate = true
				} else if copyBit(raw, cooked, row, col) {
					cookedChanged = true
				}
			default:
				ctr.time -= elapsed
				c.countersNeedUpdate = true
			}
		}
	}
	return cookedChanged
}

func (s *asymEagerDeferPerKey) transfer(c *cycleContext, raw, cooked []matrix.Row) bool {
	limit := min(c.time, MaxAsymmetricTime)
	cookedChanged := false

	for row := range cooked {
		offset := row * s.cols
		delta := raw[row] ^ cooked[row]
		for col := 0; col < s.cols; col++ {
			ctr := &s.counters[offset+col]
			if !delta.Has(col) {
				// A pending release is cancelled once the key reads pressed again.
				if ctr.time != Elapsed && !ctr.pressed {
					ctr.time = Elapsed
				}
				continue
			}
			if ctr.time != Elapsed {
				continue
			}
			ctr.pressed = raw[row].Has(col)
			ctr.time = limit
			c.countersNeedUpdate = true
			if ctr.pressed {
				cooked[row] ^= matrix.ColMask(col)
				cookedChanged = true
			}
		}
	}
	return cookedChanged
}

func (s *asymEagerDeferPerKey) reset() {
	s.pacer.reset()
	for i := range s.counters {
		s.counters[i] = asymCounter{}
	}
}
