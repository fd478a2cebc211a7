package timer

import (
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// Source is a free-running millisecond counter.
type Source interface {
	// Read returns the current counter value. It must not block.
	Read() uint32
}

// Diff returns the milliseconds elapsed from then to now on a 32-bit counter.
func Diff(now, then uint32) uint32 {
	return now - then
}

// Diff16 returns the milliseconds elapsed from then to now on a 16-bit counter.
func Diff16(now, then uint16) uint16 {
	return now - then
}

// Elapsed returns the milliseconds elapsed on src since then.
func Elapsed(src Source, then uint32) uint32 {
	return Diff(src.Read(), then)
}

// ClockSource derives a millisecond counter from a clockwork.Clock.
type ClockSource struct {
	clock  clockwork.Clock
	epoch  time.Time
	offset uint32
}

// NewClockSource creates a counter that reads 0 at the clock's current time.
func NewClockSource(clock clockwork.Clock) *ClockSource {
	return NewClockSourceAt(clock, 0)
}

// NewClockSourceAt creates a counter that reads start at the clock's current
// time. A start close to the top of the range exercises wraparound.
func NewClockSourceAt(clock clockwork.Clock, start uint32) *ClockSource {
	return &ClockSource{
		clock:  clock,
		epoch:  clock.Now(),
		offset: start,
	}
}

// Read returns the counter value.
func (s *ClockSource) Read() uint32 {
	ms := s.clock.Since(s.epoch) / time.Millisecond
	return uint32(ms) + s.offset
}

// Clock returns the underlying clock.
func (s *ClockSource) Clock() clockwork.Clock {
	return s.clock
}

// ManualSource is a counter advanced explicitly by the caller.
// It is safe for concurrent use.
type ManualSource struct {
	now atomic.Uint32
}

// NewManualSource creates a counter reading start.
func NewManualSource(start uint32) *ManualSource {
	s := &ManualSource{}
	s.now.Store(start)
	return s
}

// Read returns the counter value.
func (s *ManualSource) Read() uint32 {
	return s.now.Load()
}

// Set moves the counter to an absolute value.
func (s *ManualSource) Set(v uint32) {
	s.now.Store(v)
}

// Advance moves the counter forward, wrapping at the counter width.
func (s *ManualSource) Advance(ms uint32) {
	s.now.Add(ms)
}

// Compile-time interface satisfaction checks.
var (
	_ Source = (*ClockSource)(nil)
	_ Source = (*ManualSource)(nil)
)
