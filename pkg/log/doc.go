// Package log captures debounce engine events for later analysis.
//
// This is separate from operational logging (slog). Event capture records a
// machine-readable trace of everything that changes the engine's behaviour:
// configuration changes, cooked-matrix changes, split sync traffic and frame
// I/O on the split link.
//
// # Basic Usage
//
//	// During development: mirror events to the console via slog
//	cfg.Logger = log.NewSlogAdapter(slog.Default())
//
//	// For offline analysis: write a binary capture file
//	cfg.Logger, _ = log.NewFileLogger("left-half.dlog")
//
//	// Both
//	cfg.Logger = log.NewMultiLogger(console, file)
//
// # Event Categories
//
//   - CONFIG: algorithm or debounce time changed (ConfigEvent)
//   - SCAN: a scan cycle changed the cooked matrix (ScanEvent)
//   - SYNC: a split configuration message was sent or received (SyncEvent)
//   - FRAME: a frame crossed the split link (FrameEvent)
//   - ERROR: something was rejected or failed (ErrorEventData)
//
// # File Format
//
// Capture files are a stream of CBOR-encoded events with integer keys and
// the .dlog extension. The debounce-log tool views and summarises them.
package log
