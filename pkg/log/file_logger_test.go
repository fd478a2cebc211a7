package log

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileLoggerCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unit.dlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("capture file was not created")
	}
}

func TestFileLoggerWritesCBOR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unit.dlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	event := Event{
		Timestamp: time.Now(),
		UnitID:    "left",
		Category:  CategoryConfig,
		Config: &ConfigEvent{
			Reason:       "set_time",
			OldAlgorithm: 0,
			NewAlgorithm: 0,
			OldTimeMS:    5,
			NewTimeMS:    12,
		},
	}

	logger.Log(event)
	if logger.Written() != 1 {
		t.Errorf("Written() = %d, want 1", logger.Written())
	}
	logger.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read capture file: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}

	if decoded.UnitID != "left" {
		t.Errorf("UnitID: got %q, want %q", decoded.UnitID, "left")
	}
	if decoded.Config == nil {
		t.Fatal("Config is nil")
	}
	if decoded.Config.NewTimeMS != 12 {
		t.Errorf("Config.NewTimeMS: got %d, want 12", decoded.Config.NewTimeMS)
	}
	if decoded.Scan != nil || decoded.Sync != nil {
		t.Error("unexpected payloads decoded")
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unit.dlog")

	for i := 0; i < 2; i++ {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Log(Event{Timestamp: time.Now(), UnitID: "left", Category: CategoryScan})
		logger.Close()
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	events, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events, want 2", len(events))
	}
}

func TestFileLoggerCloseIsIdempotent(t *testing.T) {
	logger, err := NewFileLogger(filepath.Join(t.TempDir(), "unit.dlog"))
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	// Logging after close is a no-op.
	logger.Log(Event{Timestamp: time.Now(), Category: CategoryScan})
	if logger.Written() != 0 {
		t.Errorf("Written() = %d after close, want 0", logger.Written())
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	logger, err := NewFileLogger(filepath.Join(t.TempDir(), "unit.dlog"))
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				logger.Log(Event{Timestamp: time.Now(), Category: CategoryScan, Scan: &ScanEvent{Cycle: uint64(j)}})
			}
		}()
	}
	wg.Wait()

	if logger.Written() != 200 {
		t.Errorf("Written() = %d, want 200", logger.Written())
	}
}

func TestFileLoggerDropsOversizedScan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unit.dlog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	huge := &ScanEvent{Cycle: 1, Keys: make([]KeyDelta, MaxScanKeys+1)}
	logger.Log(Event{Timestamp: time.Now(), Category: CategoryScan, Scan: huge})
	logger.Log(Event{Timestamp: time.Now(), Category: CategoryScan, Scan: &ScanEvent{Cycle: 2}})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if logger.Written() != 1 || logger.Dropped() != 1 {
		t.Errorf("Written() = %d, Dropped() = %d, want 1 and 1", logger.Written(), logger.Dropped())
	}

	// The rejected event left nothing behind; the file holds one record.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read capture file: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if decoded.Scan == nil || decoded.Scan.Cycle != 2 {
		t.Errorf("decoded scan = %+v, want cycle 2", decoded.Scan)
	}
}

func TestEncodeEventRejectsOversizedScan(t *testing.T) {
	_, err := EncodeEvent(Event{Category: CategoryScan, Scan: &ScanEvent{Keys: make([]KeyDelta, MaxScanKeys+1)}})
	if !errors.Is(err, ErrEventTooLarge) {
		t.Errorf("EncodeEvent error = %v, want ErrEventTooLarge", err)
	}

	if _, err := EncodeEvent(Event{Category: CategoryScan, Scan: &ScanEvent{Keys: make([]KeyDelta, MaxScanKeys)}}); err != nil {
		t.Errorf("EncodeEvent at the limit: %v", err)
	}
}

func TestDecodeEventBoundsKeyDeltas(t *testing.T) {
	// {11: {3: [array of MaxScanKeys+1 items]}} with the length in the header
	// only, as a corrupt file would carry.
	n := MaxScanKeys + 1
	data := []byte{0xa1, 0x0b, 0xa1, 0x03, 0x99, byte(n >> 8), byte(n)}
	if _, err := DecodeEvent(data); err == nil {
		t.Error("DecodeEvent accepted an array beyond MaxScanKeys")
	}
}

type recordingLogger struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingLogger) Log(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func TestMultiLoggerFansOut(t *testing.T) {
	a := &recordingLogger{}
	b := &recordingLogger{}

	m := NewMultiLogger(a, nil, b)
	m.Log(Event{UnitID: "x", Category: CategorySync})

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Fatalf("fan-out: a=%d b=%d, want 1 each", len(a.events), len(b.events))
	}
	if b.events[0].UnitID != "x" {
		t.Errorf("UnitID = %q, want x", b.events[0].UnitID)
	}
}

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(NoopLogger); !ok {
		t.Error("OrNoop(nil) should return NoopLogger")
	}
	r := &recordingLogger{}
	if OrNoop(r) != Logger(r) {
		t.Error("OrNoop should return non-nil loggers unchanged")
	}
}

func TestCategoryString(t *testing.T) {
	tests := []struct {
		c    Category
		want string
	}{
		{CategoryConfig, "CONFIG"},
		{CategoryScan, "SCAN"},
		{CategorySync, "SYNC"},
		{CategoryFrame, "FRAME"},
		{CategoryError, "ERROR"},
		{Category(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("Category(%d).String() = %q, want %q", tt.c, got, tt.want)
		}
	}
}
