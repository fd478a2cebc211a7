package debounce

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyscan/debounce-go/pkg/matrix"
	"github.com/keyscan/debounce-go/pkg/timer"
)

// rig drives an Engine the way a scan driver would.
type rig struct {
	t      *testing.T
	engine *Engine
	src    *timer.ManualSource
	base   uint32
	raw    *matrix.Matrix
	prev   *matrix.Matrix
	cooked *matrix.Matrix
}

func newRig(t *testing.T, rows, cols int, a Algorithm, ms uint8) *rig {
	return newRigAt(t, rows, cols, a, ms, 1000)
}

func newRigAt(t *testing.T, rows, cols int, a Algorithm, ms uint8, base uint32) *rig {
	t.Helper()
	src := timer.NewManualSource(base)
	e, err := NewEngine(Config{
		Rows:      rows,
		Cols:      cols,
		Algorithm: a,
		Time:      ms,
		Source:    src,
	})
	require.NoError(t, err)
	return &rig{
		t:      t,
		engine: e,
		src:    src,
		base:   base,
		raw:    matrix.MustNew(rows, cols),
		prev:   matrix.MustNew(rows, cols),
		cooked: matrix.MustNew(rows, cols),
	}
}

// at moves the clock to ms after the rig's base time.
func (r *rig) at(ms uint32) *rig {
	r.src.Set(r.base + ms)
	return r
}

// set changes one raw key.
func (r *rig) set(row, col int, pressed bool) *rig {
	r.raw.Set(row, col, pressed)
	return r
}

// call runs Debounce with an explicit changed flag.
func (r *rig) call(changed bool) bool {
	r.prev.CopyFrom(r.raw)
	return r.engine.Debounce(r.raw, r.cooked, changed)
}

// scan runs Debounce with changed derived from the previous raw matrix.
func (r *rig) scan() bool {
	changed := !r.raw.Equal(r.prev)
	r.prev.CopyFrom(r.raw)
	return r.engine.Debounce(r.raw, r.cooked, changed)
}

// clear simulates the host releasing every key.
func (r *rig) clear() {
	r.raw.Clear()
	r.prev.Clear()
	r.cooked.Clear()
}

func TestSymDeferGlobalScenario(t *testing.T) {
	r := newRig(t, 1, 1, SymDeferGlobal, 5)

	r.at(0).set(0, 0, true)
	assert.False(t, r.call(true))
	assert.False(t, r.cooked.Get(0, 0))

	r.at(3)
	assert.False(t, r.call(false))
	assert.False(t, r.cooked.Get(0, 0))

	r.at(6)
	assert.True(t, r.call(false))
	assert.True(t, r.cooked.Get(0, 0))
}

func TestSymDeferGlobalRestartsOnEveryEdge(t *testing.T) {
	r := newRig(t, 2, 2, SymDeferGlobal, 5)

	r.at(0).set(0, 0, true)
	assert.False(t, r.scan())
	r.at(2)
	assert.False(t, r.scan())
	r.at(4).set(0, 0, false)
	assert.False(t, r.scan())
	r.at(8).set(0, 0, true)
	assert.False(t, r.scan())

	// An edge elsewhere in the matrix also defers the commit.
	r.at(11).set(1, 1, true)
	assert.False(t, r.scan())
	r.at(15)
	assert.False(t, r.scan())
	assert.Equal(t, 0, r.cooked.Pressed())

	r.at(16)
	assert.True(t, r.scan())
	assert.True(t, r.cooked.Get(0, 0))
	assert.True(t, r.cooked.Get(1, 1))

	// Nothing pending afterwards.
	r.at(40)
	assert.False(t, r.scan())
}

func TestSymDeferGlobalNoCommitWhenSettledBack(t *testing.T) {
	r := newRig(t, 1, 1, SymDeferGlobal, 5)

	r.at(0).set(0, 0, true)
	r.scan()
	r.at(1).set(0, 0, false)
	r.scan()
	r.at(10)
	assert.False(t, r.scan())
	assert.False(t, r.cooked.Get(0, 0))
}

func TestSymDeferPerKeyIsolatesKeys(t *testing.T) {
	r := newRig(t, 1, 4, SymDeferPerKey, 5)

	r.at(0).set(0, 0, true)
	assert.False(t, r.scan())
	r.at(3).set(0, 1, true)
	assert.False(t, r.scan())

	r.at(4)
	assert.False(t, r.scan())
	r.at(5)
	assert.True(t, r.scan())
	assert.True(t, r.cooked.Get(0, 0))
	assert.False(t, r.cooked.Get(0, 1))

	r.at(7)
	assert.False(t, r.scan())
	r.at(8)
	assert.True(t, r.scan())
	assert.True(t, r.cooked.Get(0, 1))
}

func TestSymDeferPerKeyBounceCancels(t *testing.T) {
	r := newRig(t, 1, 1, SymDeferPerKey, 5)

	r.at(0).set(0, 0, true)
	r.scan()
	r.at(2).set(0, 0, false)
	r.scan()
	r.at(3).set(0, 0, true)
	r.scan()

	// Armed again at t=3, so nothing before t=8.
	r.at(7)
	assert.False(t, r.scan())
	r.at(8)
	assert.True(t, r.scan())
	assert.True(t, r.cooked.Get(0, 0))
}

func TestSymDeferPerKeyCounterCountsDown(t *testing.T) {
	r := newRig(t, 1, 2, SymDeferPerKey, 9)
	s := r.engine.strategies[SymDeferPerKey].(*symDeferPerKey)

	r.at(0).set(0, 1, true)
	r.scan()
	assert.Equal(t, uint8(9), s.counters[1])
	assert.Equal(t, Elapsed, s.counters[0])

	r.at(4)
	r.scan()
	assert.Equal(t, uint8(5), s.counters[1])

	r.at(9)
	r.scan()
	assert.Equal(t, Elapsed, s.counters[1])
	assert.False(t, r.engine.state.countersNeedUpdate)
}

func TestSymDeferPerRowDoesNotRestart(t *testing.T) {
	r := newRig(t, 2, 4, SymDeferPerRow, 5)

	r.at(0).set(0, 0, true)
	assert.False(t, r.scan())
	r.at(3).set(0, 2, true)
	assert.False(t, r.scan())

	r.at(5)
	assert.True(t, r.scan())
	assert.Equal(t, matrix.Row(0b0101), r.cooked.Row(0))
	assert.Equal(t, matrix.Row(0), r.cooked.Row(1))
}

func TestSymDeferPerRowRowsIndependent(t *testing.T) {
	r := newRig(t, 2, 2, SymDeferPerRow, 5)

	r.at(0).set(0, 0, true)
	r.scan()
	r.at(2).set(1, 1, true)
	r.scan()

	r.at(5)
	assert.True(t, r.scan())
	assert.True(t, r.cooked.Get(0, 0))
	assert.False(t, r.cooked.Get(1, 1))

	r.at(7)
	assert.True(t, r.scan())
	assert.True(t, r.cooked.Get(1, 1))
}

func TestSymEagerPerKeyScenario(t *testing.T) {
	r := newRig(t, 1, 1, SymEagerPerKey, 10)
	s := r.engine.strategies[SymEagerPerKey].(*symEagerPerKey)

	r.at(0).set(0, 0, true)
	assert.True(t, r.call(true))
	assert.True(t, r.cooked.Get(0, 0))
	assert.Equal(t, uint8(10), s.counters[0])

	r.at(4).set(0, 0, false)
	assert.False(t, r.call(true))
	assert.True(t, r.cooked.Get(0, 0))

	r.at(10)
	assert.True(t, r.call(false))
	assert.False(t, r.cooked.Get(0, 0))
}

func TestSymEagerPerKeyImmediacy(t *testing.T) {
	r := newRig(t, 3, 5, SymEagerPerKey, 20)

	for i, key := range [][2]int{{0, 0}, {1, 3}, {2, 4}} {
		r.at(uint32(i)).set(key[0], key[1], true)
		assert.True(t, r.scan())
		assert.True(t, r.cooked.Get(key[0], key[1]))
	}
	assert.Equal(t, 3, r.cooked.Pressed())
}

func TestSymEagerPerKeyLockoutExpiresWithoutChange(t *testing.T) {
	r := newRig(t, 1, 1, SymEagerPerKey, 5)

	r.at(0).set(0, 0, true)
	assert.True(t, r.scan())
	r.at(1).set(0, 0, false)
	assert.False(t, r.scan())
	r.at(2).set(0, 0, true)
	assert.False(t, r.scan())

	// Raw matches cooked again when the lockout ends; nothing to transfer.
	r.at(5)
	assert.False(t, r.scan())
	assert.True(t, r.cooked.Get(0, 0))
	assert.False(t, r.engine.state.matrixNeedUpdate)
}

func TestSymEagerPerKeyTransfersAllExpiredCells(t *testing.T) {
	r := newRig(t, 2, 2, SymEagerPerKey, 5)

	r.at(0).set(0, 0, true).set(1, 1, true)
	assert.True(t, r.scan())

	r.at(1).set(0, 0, false).set(1, 1, false)
	assert.False(t, r.scan())

	r.at(5)
	assert.True(t, r.scan())
	assert.Equal(t, 0, r.cooked.Pressed())
}

func TestSymEagerPerRowLockout(t *testing.T) {
	r := newRig(t, 2, 4, SymEagerPerRow, 5)

	r.at(0).set(0, 0, true)
	assert.True(t, r.scan())
	assert.Equal(t, matrix.Row(0b0001), r.cooked.Row(0))

	r.at(2).set(0, 1, true)
	assert.False(t, r.scan())

	// Another row is not locked.
	r.at(3).set(1, 0, true)
	assert.True(t, r.scan())

	r.at(5)
	assert.True(t, r.scan())
	assert.Equal(t, matrix.Row(0b0011), r.cooked.Row(0))
}

func TestAsymEagerDeferPerKeyPressEagerReleaseDeferred(t *testing.T) {
	r := newRig(t, 1, 1, AsymEagerDeferPerKey, 5)

	r.at(0).set(0, 0, true)
	assert.True(t, r.scan())
	assert.True(t, r.cooked.Get(0, 0))

	r.at(10).set(0, 0, false)
	assert.False(t, r.scan())
	assert.True(t, r.cooked.Get(0, 0))

	r.at(14)
	assert.False(t, r.scan())
	r.at(15)
	assert.True(t, r.scan())
	assert.False(t, r.cooked.Get(0, 0))
}

func TestAsymEagerDeferPerKeyReleaseBounceCancels(t *testing.T) {
	r := newRig(t, 1, 1, AsymEagerDeferPerKey, 5)

	r.at(0).set(0, 0, true)
	r.scan()
	r.at(10).set(0, 0, false)
	r.scan()
	r.at(12).set(0, 0, true)
	assert.False(t, r.scan())

	for ms := uint32(13); ms < 30; ms++ {
		r.at(ms)
		assert.False(t, r.scan())
	}
	assert.True(t, r.cooked.Get(0, 0))
}

func TestAsymEagerDeferPerKeyPressLockout(t *testing.T) {
	r := newRig(t, 1, 1, AsymEagerDeferPerKey, 5)

	r.at(0).set(0, 0, true)
	assert.True(t, r.scan())
	r.at(1).set(0, 0, false)
	assert.False(t, r.scan())
	assert.True(t, r.cooked.Get(0, 0))

	// The lockout ends at t=5 and the pending release is armed then.
	r.at(5)
	assert.False(t, r.scan())
	r.at(9)
	assert.False(t, r.scan())
	r.at(10)
	assert.True(t, r.scan())
	assert.False(t, r.cooked.Get(0, 0))
}

func TestAsymEagerDeferPerKeyReleaseDuringLockout(t *testing.T) {
	r := newRig(t, 1, 1, AsymEagerDeferPerKey, 100)

	r.at(0).set(0, 0, true)
	assert.True(t, r.scan())

	// Released well inside the press lockout.
	r.at(30).set(0, 0, false)
	assert.False(t, r.scan())
	r.at(99)
	assert.False(t, r.scan())

	// The lockout ends at t=100 and arms the release for a full debounce time.
	r.at(100)
	assert.False(t, r.scan())
	s := r.engine.strategies[AsymEagerDeferPerKey].(*asymEagerDeferPerKey)
	assert.False(t, s.counters[0].pressed)
	assert.Equal(t, uint8(100), s.counters[0].time)

	r.at(199)
	assert.False(t, r.scan())
	assert.True(t, r.cooked.Get(0, 0))
	r.at(200)
	assert.True(t, r.scan())
	assert.False(t, r.cooked.Get(0, 0))
}

func TestAsymEagerDeferPerKeyKeepsCountersRunning(t *testing.T) {
	r := newRig(t, 1, 2, AsymEagerDeferPerKey, 5)

	r.at(0).set(0, 0, true)
	r.scan()
	r.at(10).set(0, 0, false)
	r.scan()

	// A press on another key must not stall the pending release.
	r.at(12).set(0, 1, true)
	assert.True(t, r.scan())

	r.at(15)
	assert.True(t, r.scan())
	assert.False(t, r.cooked.Get(0, 0))
	assert.True(t, r.cooked.Get(0, 1))
}

func TestAsymUsesClampedTime(t *testing.T) {
	r := newRig(t, 1, 1, SymDeferPerKey, 200)
	r.engine.SetAlgorithm(AsymEagerDeferPerKey)
	require.Equal(t, uint8(200), r.engine.Time())

	s := r.engine.strategies[AsymEagerDeferPerKey].(*asymEagerDeferPerKey)
	r.at(0).set(0, 0, true)
	r.scan()
	assert.Equal(t, MaxAsymmetricTime, s.counters[0].time)
	assert.True(t, s.counters[0].pressed)
}

func TestNoneAndZeroTimeIdempotence(t *testing.T) {
	type setup struct {
		name string
		a    Algorithm
		ms   uint8
	}
	setups := []setup{{"None", None, 5}}
	for _, a := range Algorithms() {
		setups = append(setups, setup{a.String() + "/zero", a, 0})
	}

	rng := rand.New(rand.NewSource(7))
	for _, s := range setups {
		t.Run(s.name, func(t *testing.T) {
			r := newRig(t, 4, 8, s.a, s.ms)
			for i := 0; i < 50; i++ {
				r.at(uint32(i))
				for row := 0; row < 4; row++ {
					r.raw.SetRow(row, matrix.Row(rng.Uint32()))
				}
				before := r.cooked.Clone()

				assert.False(t, r.engine.Debounce(r.raw, r.cooked, false))
				assert.False(t, r.engine.Debounce(r.raw, r.cooked, false))
				assert.True(t, before.Equal(r.cooked))

				want := !r.raw.Equal(r.cooked)
				assert.Equal(t, want, r.engine.Debounce(r.raw, r.cooked, true))
				assert.True(t, r.raw.Equal(r.cooked))
			}
		})
	}
}

func TestCountersSurviveTimerWraparound(t *testing.T) {
	for _, a := range []Algorithm{SymDeferGlobal, SymDeferPerKey, SymDeferPerRow, AsymEagerDeferPerKey} {
		t.Run(a.String(), func(t *testing.T) {
			r := newRigAt(t, 1, 1, a, 5, math.MaxUint32-2)

			r.at(0).set(0, 0, false)
			r.scan()
			r.at(0).set(0, 0, true)
			if a == AsymEagerDeferPerKey {
				assert.True(t, r.scan())
				r.at(3).set(0, 0, false)
				assert.False(t, r.scan())
				// Lockout ends at t=5, seen at t=7; the release is due at t=12.
				r.at(7)
				assert.False(t, r.scan())
				r.at(11)
				assert.False(t, r.scan())
				r.at(12)
				assert.True(t, r.scan())
				return
			}
			assert.False(t, r.scan())
			r.at(4)
			assert.False(t, r.scan())
			r.at(5)
			assert.True(t, r.scan())
		})
	}
}

func TestElapsedClampedToCounterWidth(t *testing.T) {
	r := newRig(t, 1, 1, SymEagerPerKey, 255)

	r.at(0).set(0, 0, true)
	assert.True(t, r.scan())
	r.at(1).set(0, 0, false)
	assert.False(t, r.scan())

	// Far beyond 255 ms; the clamped step still expires the counter.
	r.at(100000)
	assert.True(t, r.scan())
	assert.False(t, r.cooked.Get(0, 0))
}
