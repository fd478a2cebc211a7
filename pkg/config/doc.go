// Package config loads debounce simulator settings from YAML.
//
// A file describes one keyboard half and, optionally, a bench scenario:
//
//	matrix: {rows: 5, cols: 14}
//	algorithm: sym_eager_pk
//	debounce_ms: 5
//	scan_interval: 1ms
//	split: {enabled: true, housekeeping: 50ms}
//	event_log: run.dlog
//	metrics_addr: ":9100"
//	scenario:
//	  seed: 42
//	  strokes:
//	    - {row: 0, col: 1, press: 10ms, release: 60ms, bounce: 5ms}
//
// Omitted fields keep the values of Default.
package config
