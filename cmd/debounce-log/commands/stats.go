package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/keyscan/debounce-go/pkg/log"
)

// Stats holds aggregate statistics about a capture file.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[log.Category]int
	Units            map[string]*UnitStats
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// UnitStats holds statistics for a single unit.
type UnitStats struct {
	Role      log.Role
	Events    int
	Presses   int
	Releases  int
	Changes   int
	SyncsOut  int
	SyncsIn   int
	Applied   int
	Errors    int
	Algorithm string
	TimeMS    uint8
}

// RunStats analyzes the capture file and prints statistics.
func RunStats(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats, err := collectStats(reader)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func collectStats(reader *log.Reader) (*Stats, error) {
	stats := &Stats{
		EventsByCategory: make(map[log.Category]int),
		Units:            make(map[string]*UnitStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return stats, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		unit, ok := stats.Units[event.UnitID]
		if !ok {
			unit = &UnitStats{Role: event.Role}
			stats.Units[event.UnitID] = unit
		}
		unit.Events++

		switch {
		case event.Scan != nil:
			for _, k := range event.Scan.Keys {
				if k.Pressed {
					unit.Presses++
				} else {
					unit.Releases++
				}
			}
		case event.Config != nil:
			unit.Changes++
			unit.Algorithm = algorithmName(event.Config.NewAlgorithm)
			unit.TimeMS = event.Config.NewTimeMS
		case event.Sync != nil:
			if event.Sync.Direction == log.DirectionOut {
				unit.SyncsOut++
			} else {
				unit.SyncsIn++
				if event.Sync.Applied {
					unit.Applied++
				}
			}
		case event.Error != nil:
			unit.Errors++
		}
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Debounce Capture Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range log.Categories() {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-8s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	ids := make([]string, 0, len(stats.Units))
	for id := range stats.Units {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Fprintf(w, "Units: %d\n", len(ids))
	for _, id := range ids {
		u := stats.Units[id]
		fmt.Fprintf(w, "  %s (%s): %d events\n", shortenUnitID(id), u.Role, u.Events)
		fmt.Fprintf(w, "    Keys:    %d down, %d up\n", u.Presses, u.Releases)
		if u.Changes > 0 {
			fmt.Fprintf(w, "    Config:  %d changes, last %s/%dms\n", u.Changes, u.Algorithm, u.TimeMS)
		}
		if u.SyncsOut+u.SyncsIn > 0 {
			fmt.Fprintf(w, "    Sync:    %d out, %d in (%d applied)\n", u.SyncsOut, u.SyncsIn, u.Applied)
		}
		if u.Errors > 0 {
			fmt.Fprintf(w, "    Errors:  %d\n", u.Errors)
		}
	}
}
