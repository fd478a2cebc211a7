package debounce

import (
	"github.com/keyscan/debounce-go/pkg/matrix"
	"github.com/keyscan/debounce-go/pkg/timer"
)

// symDeferGlobal keeps one timer for the whole matrix. Every changed cycle
// restarts it; the matrix is copied once it ran for the debounce time.
type symDeferGlobal struct {
	start      uint32
	debouncing bool
}

func (s *symDeferGlobal) update(c *cycleContext, raw, cooked []matrix.Row, changed bool) bool {
	if changed {
		s.debouncing = true
		s.start = c.source.Read()
		return false
	}
	if !s.debouncing || timer.Elapsed(c.source, s.start) < uint32(c.time) {
		return false
	}
	s.debouncing = false
	return copyRows(raw, cooked)
}

func (s *symDeferGlobal) reset() {
	*s = symDeferGlobal{}
}
