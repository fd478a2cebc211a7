// Package debounce implements a runtime-switchable key matrix debouncer.
//
// An Engine is called once per scan cycle with the raw matrix sampled by the
// scan driver and the cooked matrix it maintains. The active algorithm
// decides when raw transitions are committed to the cooked matrix.
//
// # Algorithms
//
// Seven algorithms are available. Their numeric values are stable and are
// used on the split sync wire:
//
//	0  sym_defer_g          one timer for the whole matrix, restarted by every edge
//	1  sym_defer_pk         one timer per key, commit after a quiet period
//	2  sym_defer_pr         one timer per row, commit after a quiet period
//	3  sym_eager_pk         commit the first edge per key, then ignore bounces
//	4  sym_eager_pr         commit the first edge per row, then ignore bounces
//	5  asym_eager_defer_pk  eager presses, deferred releases, per key
//	6  none                 pass-through
//
// # Debounce Time
//
// The debounce time is in milliseconds (0-255). The asymmetric algorithm
// stores a 7-bit counter per key, so SetTime clamps to 127 while it is
// active. A time of 0 turns every algorithm into pass-through.
//
// # Reconfiguration
//
// Changing the algorithm or the time resets the private state of every
// algorithm, runs the configured release action so no key stays held, and
// then notifies registered Hooks. The next Debounce call behaves like the
// first call ever made.
//
// # Concurrency
//
// All Engine methods are safe for concurrent use. Debounce does not
// allocate.
package debounce
