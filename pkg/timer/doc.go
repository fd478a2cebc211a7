// Package timer provides the elapsed-time collaborator of the debounce engine.
//
// The engine never reads wall-clock time. It reads a free-running millisecond
// counter through the Source interface and measures intervals with Diff.
//
// # Wraparound
//
// Counters are fixed width and wrap. Diff computes the forward distance
// modulo the counter width, so a reading taken just after the counter wrapped
// yields the same elapsed time as an unwrapped one. Elapsed time is therefore
// never negative. Intervals longer than one full counter period alias; the
// engine only measures intervals of a few hundred milliseconds.
//
// # Sources
//
//   - ClockSource: derives the counter from a clockwork.Clock, so the same code
//     runs on the real clock and on a fake clock in tests and simulations
//   - ManualSource: a counter set directly by the caller
package timer
