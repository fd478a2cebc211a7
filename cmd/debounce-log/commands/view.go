// Package commands implements the debounce-log CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/keyscan/debounce-go/pkg/debounce"
	"github.com/keyscan/debounce-go/pkg/log"
)

const timeFormat = "2006-01-02T15:04:05.000000Z"

// ParseCategoryFlag parses a category name such as "scan".
func ParseCategoryFlag(s string) (log.Category, error) {
	for _, c := range log.Categories() {
		if strings.EqualFold(c.String(), s) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q (valid: config, scan, sync, frame, error)", s)
}

// ParseRoleFlag parses a role name such as "primary".
func ParseRoleFlag(s string) (log.Role, error) {
	for _, r := range []log.Role{log.RoleStandalone, log.RolePrimary, log.RoleSecondary} {
		if strings.EqualFold(r.String(), s) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q (valid: standalone, primary, secondary)", s)
}

// RunView prints every event of the capture file that matches filter.
func RunView(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format(timeFormat)
	fmt.Fprintf(w, "%s [unit:%s] %-10s %s\n", ts, shortenUnitID(event.UnitID), event.Role, event.Category)

	switch {
	case event.Config != nil:
		c := event.Config
		fmt.Fprintf(w, "  %s: %s/%dms -> %s/%dms\n", c.Reason,
			algorithmName(c.OldAlgorithm), c.OldTimeMS,
			algorithmName(c.NewAlgorithm), c.NewTimeMS)
	case event.Scan != nil:
		formatScanDetails(w, event.Scan)
	case event.Sync != nil:
		s := event.Sync
		fmt.Fprintf(w, "  %s %s/%dms", s.Direction, algorithmName(s.Algorithm), s.TimeMS)
		if s.Direction == log.DirectionIn {
			if s.Applied {
				fmt.Fprint(w, " (applied)")
			} else {
				fmt.Fprint(w, " (unchanged)")
			}
		}
		fmt.Fprintln(w)
	case event.Frame != nil:
		formatFrameDetails(w, event.Frame)
	case event.Error != nil:
		fmt.Fprintf(w, "  Component: %s\n", event.Error.Component)
		fmt.Fprintf(w, "  Error: %s\n", event.Error.Message)
		if event.Error.Context != "" {
			fmt.Fprintf(w, "  Context: %s\n", event.Error.Context)
		}
	}

	fmt.Fprintln(w)
}

func formatScanDetails(w io.Writer, s *log.ScanEvent) {
	fmt.Fprintf(w, "  Cycle: %d  Algorithm: %s\n", s.Cycle, algorithmName(s.Algorithm))
	for _, k := range s.Keys {
		state := "up"
		if k.Pressed {
			state = "down"
		}
		fmt.Fprintf(w, "  Key r%d c%d %s\n", k.Row, k.Col, state)
	}
}

func formatFrameDetails(w io.Writer, frame *log.FrameEvent) {
	fmt.Fprintf(w, "  %s %d bytes", frame.Direction, frame.Size)
	if len(frame.Data) > 0 {
		fmt.Fprintf(w, ": %s", hex.EncodeToString(frame.Data))
		if frame.Truncated {
			fmt.Fprint(w, " (truncated)")
		}
	}
	fmt.Fprintln(w)
}

// shortenUnitID returns the first 8 characters of the unit ID.
func shortenUnitID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func algorithmName(v uint8) string {
	return debounce.Algorithm(v).String()
}
