package log

import (
	"context"
	"log/slog"
)

// SlogAdapter mirrors captured events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event as one structured record.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("unit", event.UnitID),
		slog.String("category", event.Category.String()),
	}
	if event.Role != RoleStandalone {
		attrs = append(attrs, slog.String("role", event.Role.String()))
	}

	switch {
	case event.Config != nil:
		attrs = append(attrs,
			slog.String("reason", event.Config.Reason),
			slog.Uint64("old_algorithm", uint64(event.Config.OldAlgorithm)),
			slog.Uint64("new_algorithm", uint64(event.Config.NewAlgorithm)),
			slog.Uint64("old_time_ms", uint64(event.Config.OldTimeMS)),
			slog.Uint64("new_time_ms", uint64(event.Config.NewTimeMS)),
		)
	case event.Scan != nil:
		attrs = append(attrs,
			slog.Uint64("cycle", event.Scan.Cycle),
			slog.Uint64("algorithm", uint64(event.Scan.Algorithm)),
			slog.Int("keys", len(event.Scan.Keys)),
		)
	case event.Sync != nil:
		attrs = append(attrs,
			slog.String("direction", event.Sync.Direction.String()),
			slog.Uint64("algorithm", uint64(event.Sync.Algorithm)),
			slog.Uint64("time_ms", uint64(event.Sync.TimeMS)),
		)
		if event.Sync.Applied {
			attrs = append(attrs, slog.Bool("applied", true))
		}
	case event.Frame != nil:
		attrs = append(attrs,
			slog.String("direction", event.Frame.Direction.String()),
			slog.Int("frame_size", event.Frame.Size),
			slog.Bool("truncated", event.Frame.Truncated),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("component", event.Error.Component),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "debounce", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
