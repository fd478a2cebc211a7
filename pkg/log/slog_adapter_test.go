package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func decodeSlogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	if buf.Len() == 0 {
		t.Fatal("no output produced")
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	return entry
}

func newTestAdapter(buf *bytes.Buffer) *SlogAdapter {
	handler := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogAdapter(slog.New(handler))
}

func TestSlogAdapterLogsConfigEvent(t *testing.T) {
	var buf bytes.Buffer
	newTestAdapter(&buf).Log(Event{
		Timestamp: time.Now(),
		UnitID:    "left",
		Category:  CategoryConfig,
		Config: &ConfigEvent{
			Reason:       "set_algorithm",
			OldAlgorithm: 0,
			NewAlgorithm: 5,
			OldTimeMS:    5,
			NewTimeMS:    5,
		},
	})

	entry := decodeSlogLine(t, &buf)
	if entry["unit"] != "left" {
		t.Errorf("unit: got %v, want left", entry["unit"])
	}
	if entry["category"] != "CONFIG" {
		t.Errorf("category: got %v, want CONFIG", entry["category"])
	}
	if entry["reason"] != "set_algorithm" {
		t.Errorf("reason: got %v", entry["reason"])
	}
	if entry["new_algorithm"] != float64(5) {
		t.Errorf("new_algorithm: got %v, want 5", entry["new_algorithm"])
	}
	if _, ok := entry["role"]; ok {
		t.Error("standalone units should not log a role")
	}
}

func TestSlogAdapterLogsSyncEvent(t *testing.T) {
	var buf bytes.Buffer
	newTestAdapter(&buf).Log(Event{
		Timestamp: time.Now(),
		UnitID:    "right",
		Category:  CategorySync,
		Role:      RoleSecondary,
		Sync:      &SyncEvent{Direction: DirectionIn, Algorithm: 3, TimeMS: 20, Applied: true},
	})

	entry := decodeSlogLine(t, &buf)
	if entry["role"] != "SECONDARY" {
		t.Errorf("role: got %v", entry["role"])
	}
	if entry["direction"] != "IN" {
		t.Errorf("direction: got %v", entry["direction"])
	}
	if entry["applied"] != true {
		t.Errorf("applied: got %v", entry["applied"])
	}
}

func TestSlogAdapterLogsErrorEvent(t *testing.T) {
	var buf bytes.Buffer
	newTestAdapter(&buf).Log(Event{
		Timestamp: time.Now(),
		Category:  CategoryError,
		Error:     &ErrorEventData{Component: "split", Message: "invalid algorithm", Context: "receive"},
	})

	entry := decodeSlogLine(t, &buf)
	if entry["component"] != "split" || entry["error_context"] != "receive" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if entry["level"] != "DEBUG" {
		t.Errorf("level: got %v, want DEBUG", entry["level"])
	}
}
