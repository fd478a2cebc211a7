package split

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/keyscan/debounce-go/pkg/debounce"
	"github.com/keyscan/debounce-go/pkg/log"
	"github.com/keyscan/debounce-go/pkg/wire"
)

// DefaultHousekeepingInterval is how often Run checks for unsynced settings.
const DefaultHousekeepingInterval = 50 * time.Millisecond

// SettingsSource exposes the local debounce settings.
type SettingsSource interface {
	Settings() (debounce.Algorithm, uint8)
}

// SyncerConfig configures a Syncer.
type SyncerConfig struct {
	// Engine is read on every pass.
	Engine SettingsSource

	// Link carries encoded ConfigSync messages.
	Link Link

	// Clock drives Run and stamps events. Defaults to the real clock.
	Clock clockwork.Clock

	// Interval is the housekeeping period of Run.
	Interval time.Duration

	// EventLog receives SYNC and ERROR events.
	EventLog log.Logger

	// Observer is notified of every send attempt.
	Observer Observer

	// UnitID labels captured events.
	UnitID string

	// Logger is the optional logger for debug output.
	Logger *slog.Logger
}

// Syncer pushes settings changes from the primary to the secondary half.
type Syncer struct {
	mu   sync.Mutex
	last wire.ConfigSync

	engine   SettingsSource
	link     Link
	clock    clockwork.Clock
	interval time.Duration
	events   log.Logger
	observer Observer
	unitID   string
	logger   *slog.Logger
}

// DefaultSettings returns the settings a half boots with.
func DefaultSettings() (debounce.Algorithm, uint8) {
	return debounce.SymDeferGlobal, debounce.DefaultTime
}

// NewSyncer creates a Syncer. The secondary half boots with DefaultSettings,
// so those count as already synced.
func NewSyncer(cfg SyncerConfig) *Syncer {
	a, ms := DefaultSettings()
	s := &Syncer{
		last:     wire.ConfigSync{Algorithm: a, TimeMS: ms},
		engine:   cfg.Engine,
		link:     cfg.Link,
		clock:    cfg.Clock,
		interval: cfg.Interval,
		events:   log.OrNoop(cfg.EventLog),
		observer: cfg.Observer,
		unitID:   cfg.UnitID,
		logger:   cfg.Logger,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.interval <= 0 {
		s.interval = DefaultHousekeepingInterval
	}
	if s.observer == nil {
		s.observer = noopObserver{}
	}
	return s
}

// LastSynced returns the settings last delivered to the peer.
func (s *Syncer) LastSynced() wire.ConfigSync {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Task runs one housekeeping pass. It reports whether a message was sent.
func (s *Syncer) Task() (bool, error) {
	a, ms := s.engine.Settings()
	msg := wire.ConfigSync{Algorithm: a, TimeMS: ms}

	s.mu.Lock()
	defer s.mu.Unlock()

	if msg == s.last {
		return false, nil
	}

	data, err := wire.EncodeConfigSync(&msg)
	if err != nil {
		return false, err
	}

	if err := s.link.Send(data); err != nil {
		s.observer.SyncSent(err)
		s.logError(msg, err)
		return false, fmt.Errorf("send config sync %s: %w", msg, err)
	}

	s.last = msg
	s.observer.SyncSent(nil)
	s.events.Log(log.Event{
		Timestamp: s.clock.Now(),
		UnitID:    s.unitID,
		Category:  log.CategorySync,
		Role:      log.RolePrimary,
		Sync: &log.SyncEvent{
			Direction: log.DirectionOut,
			Algorithm: uint8(msg.Algorithm),
			TimeMS:    msg.TimeMS,
		},
	})
	s.debugLog("split: config synced", "algorithm", msg.Algorithm.String(), "time_ms", msg.TimeMS)
	return true, nil
}

// Run calls Task every interval until ctx is done. Send failures are logged
// and retried on the next tick.
func (s *Syncer) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			if _, err := s.Task(); err != nil {
				s.debugLog("split: sync failed, will retry", "error", err)
			}
		}
	}
}

func (s *Syncer) logError(msg wire.ConfigSync, err error) {
	s.events.Log(log.Event{
		Timestamp: s.clock.Now(),
		UnitID:    s.unitID,
		Category:  log.CategoryError,
		Role:      log.RolePrimary,
		Error: &log.ErrorEventData{
			Component: "split",
			Message:   err.Error(),
			Context:   "send " + msg.String(),
		},
	})
}

func (s *Syncer) debugLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
