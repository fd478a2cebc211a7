package log

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func createTestCapture(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.dlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create capture: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func TestReaderIteratesEvents(t *testing.T) {
	now := time.Now()
	path := createTestCapture(t, []Event{
		{Timestamp: now, UnitID: "left", Category: CategoryConfig},
		{Timestamp: now, UnitID: "left", Category: CategoryScan},
		{Timestamp: now, UnitID: "right", Category: CategorySync, Role: RoleSecondary},
	})

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var read []Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		read = append(read, event)
	}

	if len(read) != 3 {
		t.Fatalf("got %d events, want 3", len(read))
	}
	if read[2].UnitID != "right" || read[2].Role != RoleSecondary {
		t.Errorf("third event = %+v", read[2])
	}
}

func TestReaderFilters(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	path := createTestCapture(t, []Event{
		{Timestamp: base, UnitID: "left", Category: CategoryConfig},
		{Timestamp: base.Add(time.Second), UnitID: "left", Category: CategoryScan},
		{Timestamp: base.Add(2 * time.Second), UnitID: "right", Category: CategoryScan, Role: RoleSecondary},
		{Timestamp: base.Add(3 * time.Second), UnitID: "right", Category: CategoryError, Role: RoleSecondary},
	})

	scan := CategoryScan
	secondary := RoleSecondary
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"All", Filter{}, 4},
		{"Unit", Filter{UnitID: "left"}, 2},
		{"Category", Filter{Category: &scan}, 2},
		{"Role", Filter{Role: &secondary}, 2},
		{"TimeWindow", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"Combined", Filter{UnitID: "right", Category: &scan}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			defer reader.Close()

			events, err := reader.ReadAll()
			if err != nil {
				t.Fatalf("ReadAll failed: %v", err)
			}
			if len(events) != tt.want {
				t.Errorf("got %d events, want %d", len(events), tt.want)
			}
		})
	}
}

func TestReaderMissingFile(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "missing.dlog"))
	if !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestReaderScanPayloadRoundTrip(t *testing.T) {
	path := createTestCapture(t, []Event{{
		Timestamp: time.Now(),
		UnitID:    "left",
		Category:  CategoryScan,
		Scan: &ScanEvent{
			Cycle:     42,
			Algorithm: 3,
			Keys: []KeyDelta{
				{Row: 1, Col: 4, Pressed: true},
				{Row: 2, Col: 0, Pressed: false},
			},
		},
	}})

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if event.Scan == nil || len(event.Scan.Keys) != 2 {
		t.Fatalf("Scan payload = %+v", event.Scan)
	}
	if event.Scan.Cycle != 42 || !event.Scan.Keys[0].Pressed || event.Scan.Keys[1].Col != 0 {
		t.Errorf("Scan payload mismatch: %+v", event.Scan)
	}
}
