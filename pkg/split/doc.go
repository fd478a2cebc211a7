// Package split keeps the debounce settings of both halves of a split
// keyboard in step.
//
// The primary half runs a Syncer from its housekeeping loop. Whenever the
// engine's (algorithm, time) pair differs from the pair last delivered, the
// Syncer encodes a wire.ConfigSync and sends it over a Link. The pair is
// only remembered after a successful send, so a failed send is retried on
// the next housekeeping pass.
//
// The secondary half feeds received frames to a Receiver, usually through
// Serve. Messages naming an unknown algorithm are dropped. Valid settings
// are applied with a single SetAlgorithmAndTime call when they differ from
// the local ones.
package split
