package split

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/jonboulle/clockwork"

	"github.com/keyscan/debounce-go/pkg/debounce"
	"github.com/keyscan/debounce-go/pkg/log"
	"github.com/keyscan/debounce-go/pkg/wire"
)

// SettingsTarget is the engine of the secondary half.
type SettingsTarget interface {
	SettingsSource
	SetAlgorithmAndTime(a debounce.Algorithm, ms uint8)
}

// ReceiverConfig configures a Receiver.
type ReceiverConfig struct {
	// Engine receives valid settings.
	Engine SettingsTarget

	// Clock stamps events. Defaults to the real clock.
	Clock clockwork.Clock

	// EventLog receives SYNC and ERROR events.
	EventLog log.Logger

	// Observer is notified of every received message.
	Observer Observer

	// UnitID labels captured events.
	UnitID string

	// Logger is the optional logger for debug output.
	Logger *slog.Logger
}

// Receiver applies ConfigSync messages on the secondary half.
type Receiver struct {
	engine   SettingsTarget
	clock    clockwork.Clock
	events   log.Logger
	observer Observer
	unitID   string
	logger   *slog.Logger
}

// NewReceiver creates a Receiver.
func NewReceiver(cfg ReceiverConfig) *Receiver {
	r := &Receiver{
		engine:   cfg.Engine,
		clock:    cfg.Clock,
		events:   log.OrNoop(cfg.EventLog),
		observer: cfg.Observer,
		unitID:   cfg.UnitID,
		logger:   cfg.Logger,
	}
	if r.clock == nil {
		r.clock = clockwork.NewRealClock()
	}
	if r.observer == nil {
		r.observer = noopObserver{}
	}
	return r
}

// Handle decodes one message and applies it when it differs from the local
// settings. Invalid messages leave the engine untouched and return an error.
func (r *Receiver) Handle(payload []byte) (bool, error) {
	msg, err := wire.DecodeConfigSync(payload)
	if err != nil {
		r.observer.SyncReceived(false, err)
		r.events.Log(log.Event{
			Timestamp: r.clock.Now(),
			UnitID:    r.unitID,
			Category:  log.CategoryError,
			Role:      log.RoleSecondary,
			Error: &log.ErrorEventData{
				Component: "split",
				Message:   err.Error(),
				Context:   "receive",
			},
		})
		return false, err
	}

	// The engine stores the time clamped to the algorithm's limit, so an
	// unclamped asymmetric time from the primary must compare clamped.
	a, ms := r.engine.Settings()
	applied := msg.Algorithm != a || min(msg.TimeMS, msg.Algorithm.TimeLimit()) != ms
	if applied {
		r.engine.SetAlgorithmAndTime(msg.Algorithm, msg.TimeMS)
	}

	r.observer.SyncReceived(applied, nil)
	r.events.Log(log.Event{
		Timestamp: r.clock.Now(),
		UnitID:    r.unitID,
		Category:  log.CategorySync,
		Role:      log.RoleSecondary,
		Sync: &log.SyncEvent{
			Direction: log.DirectionIn,
			Algorithm: uint8(msg.Algorithm),
			TimeMS:    msg.TimeMS,
			Applied:   applied,
		},
	})
	return applied, nil
}

// Serve feeds every frame from src to r until the link closes or ctx is done.
// ctx is checked between frames; close the underlying stream to interrupt a
// blocked read. A closed link returns nil.
func Serve(ctx context.Context, src FrameSource, r *Receiver) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		payload, err := src.ReadFrame()
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrClosedPipe), errors.Is(err, net.ErrClosed):
			return nil
		default:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read config sync: %w", err)
		}

		if _, err := r.Handle(payload); err != nil && r.logger != nil {
			r.logger.Debug("split: dropped config sync", "error", err)
		}
	}
}
