// Package matrix defines the switch matrix shared by the scan driver and the
// debounce engine.
//
// A Matrix is a fixed grid of rows, each row a bitmask of column states
// (bit c set means the switch at column c is closed). Two matrices take part
// in every scan cycle:
//   - raw: sampled from the hardware, overwritten by the scan driver
//   - cooked: the debounced state, mutated only by the debounce engine
//
// Matrices are sized once at construction. None of the per-cycle operations
// (Equal, CopyFrom, Get, Set) allocate.
package matrix
