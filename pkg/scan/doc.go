// Package scan drives a debounce engine from a raw switch matrix.
//
// A Driver reads the raw matrix once per cycle, runs it through the engine and
// turns cooked matrix changes into KeyEvents for the host. The Bench feeds a
// Driver with scripted keystrokes that carry seeded contact bounce, so the
// algorithms can be compared on latency and chatter.
package scan
