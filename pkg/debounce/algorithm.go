package debounce

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Debounce time limits in milliseconds.
const (
	// MaxTime is the largest debounce time of the symmetric algorithms.
	MaxTime uint8 = 255

	// MaxAsymmetricTime is the largest debounce time of AsymEagerDeferPerKey.
	MaxAsymmetricTime uint8 = 127

	// DefaultTime is the debounce time of a new Engine.
	DefaultTime uint8 = 5
)

// Elapsed is the counter value meaning "no pending transition".
const Elapsed uint8 = 0

// ErrUnknownAlgorithm is returned by ParseAlgorithm.
var ErrUnknownAlgorithm = errors.New("unknown debounce algorithm")

// Algorithm selects a debounce strategy.
type Algorithm uint8

const (
	// SymDeferGlobal commits the whole matrix once no edge was seen for the
	// debounce time. This is the default.
	SymDeferGlobal Algorithm = iota

	// SymDeferPerKey commits each key once it was stable for the debounce time.
	SymDeferPerKey

	// SymDeferPerRow commits each row once it was stable for the debounce time.
	SymDeferPerRow

	// SymEagerPerKey commits the first edge of a key immediately and ignores
	// further edges for the debounce time.
	SymEagerPerKey

	// SymEagerPerRow is SymEagerPerKey with one lockout per row.
	SymEagerPerRow

	// AsymEagerDeferPerKey commits presses eagerly and defers releases.
	AsymEagerDeferPerKey

	// None copies raw to cooked on every change.
	None
)

// AlgorithmCount is the number of algorithms.
const AlgorithmCount = 7

var algorithmNames = [AlgorithmCount]string{
	"sym_defer_g",
	"sym_defer_pk",
	"sym_defer_pr",
	"sym_eager_pk",
	"sym_eager_pr",
	"asym_eager_defer_pk",
	"none",
}

// String returns the algorithm name, or "unknown" when out of range.
func (a Algorithm) String() string {
	if !a.Valid() {
		return "unknown"
	}
	return algorithmNames[a]
}

// Valid reports whether a is one of the seven algorithms.
func (a Algorithm) Valid() bool {
	return a < AlgorithmCount
}

// TimeLimit returns the largest debounce time SetTime accepts while a is active.
func (a Algorithm) TimeLimit() uint8 {
	if a == AsymEagerDeferPerKey {
		return MaxAsymmetricTime
	}
	return MaxTime
}

// Algorithms returns every algorithm in wire order.
func Algorithms() []Algorithm {
	all := make([]Algorithm, AlgorithmCount)
	for i := range all {
		all[i] = Algorithm(i)
	}
	return all
}

// ParseAlgorithm accepts an algorithm name (case-insensitive) or its numeric value.
func ParseAlgorithm(s string) (Algorithm, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range algorithmNames {
		if n == name {
			return Algorithm(i), nil
		}
	}
	if v, err := strconv.ParseUint(name, 10, 8); err == nil && Algorithm(v).Valid() {
		return Algorithm(v), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}
