// Package metrics exports debounce engine and split sync activity as
// Prometheus metrics.
//
// A Recorder registers its collectors on a caller-supplied registry, so tests
// and multiple engines in one process never collide on the default registry.
// Wire it to an engine with Engine.AddHooks(r.Hooks()), pass it as the
// split.Observer of a Syncer or Receiver, and call ScanCycle from the scan
// loop.
package metrics
