package log

import (
	"os"
	"sync"
)

// FileLogger appends capture records to a .dlog file, one CBOR item per
// event. It is safe for concurrent use.
type FileLogger struct {
	mu      sync.Mutex
	file    *os.File
	written int
	dropped int
	closed  bool
}

// NewFileLogger opens path for appending, creating it with mode 0644 when
// missing. Appending to an existing capture continues its record stream.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{file: f}, nil
}

// Log appends an event. Each record is encoded before the file is touched so
// a rejected event never leaves a partial record behind. Failures are
// counted, not returned: capture must never stall the scan loop.
func (l *FileLogger) Log(event Event) {
	data, err := EncodeEvent(event)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	if err != nil {
		l.dropped++
		return
	}
	if _, err := l.file.Write(data); err != nil {
		l.dropped++
		return
	}
	l.written++
}

// Written returns the number of records written so far.
func (l *FileLogger) Written() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.written
}

// Dropped returns the number of events that could not be recorded.
func (l *FileLogger) Dropped() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// Close flushes and closes the file. Later Log calls are ignored; repeated
// Close calls return nil.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	if err := l.file.Sync(); err != nil {
		_ = l.file.Close()
		return err
	}
	return l.file.Close()
}

var _ Logger = (*FileLogger)(nil)
