package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/keyscan/debounce-go/pkg/log"
	"github.com/keyscan/debounce-go/pkg/split"
)

// pair is a primary and a secondary half joined by an in-memory link.
type pair struct {
	primary   *half
	secondary *half

	syncer   *split.Syncer
	receiver *split.Receiver

	primaryConn   net.Conn
	secondaryConn net.Conn
	serveDone     chan error
	logger        *slog.Logger
}

type pairOptions struct {
	half         halfOptions
	housekeeping time.Duration
	syncClock    clockwork.Clock
}

func newPair(opts pairOptions) (*pair, error) {
	primaryOpts := opts.half
	primaryOpts.role = log.RolePrimary
	primary, err := newHalf(primaryOpts)
	if err != nil {
		return nil, err
	}

	// The secondary boots with default settings and follows the primary.
	secondaryOpts := opts.half
	secondaryOpts.role = log.RoleSecondary
	secondaryOpts.unitID = uuid.NewString()
	secondaryOpts.engine.Algorithm, secondaryOpts.engine.Time = split.DefaultSettings()
	secondary, err := newHalf(secondaryOpts)
	if err != nil {
		return nil, err
	}

	a, b := net.Pipe()
	primaryLink := split.NewFramedLink(a)
	primaryLink.SetLogger(opts.half.events, primary.unitID, log.RolePrimary)
	secondaryLink := split.NewFramedLink(b)
	secondaryLink.SetLogger(opts.half.events, secondary.unitID, log.RoleSecondary)

	p := &pair{
		primary:       primary,
		secondary:     secondary,
		primaryConn:   a,
		secondaryConn: b,
		serveDone:     make(chan error, 1),
		logger:        opts.half.logger,
	}
	p.syncer = split.NewSyncer(split.SyncerConfig{
		Engine:   primary.engine,
		Link:     primaryLink,
		Clock:    opts.syncClock,
		Interval: opts.housekeeping,
		EventLog: opts.half.events,
		Observer: primary.observer(),
		UnitID:   primary.unitID,
		Logger:   opts.half.logger,
	})
	p.receiver = split.NewReceiver(split.ReceiverConfig{
		Engine:   secondary.engine,
		Clock:    opts.half.clock,
		EventLog: opts.half.events,
		Observer: secondary.observer(),
		UnitID:   secondary.unitID,
		Logger:   opts.half.logger,
	})

	go func() { p.serveDone <- split.Serve(context.Background(), secondaryLink, p.receiver) }()
	return p, nil
}

// run runs split housekeeping until ctx is done.
func (p *pair) run(ctx context.Context) {
	if err := p.syncer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Warn("split housekeeping stopped", "error", err)
	}
}

// syncNow runs one housekeeping pass and waits until the secondary caught up.
func (p *pair) syncNow(timeout time.Duration) (bool, error) {
	sent, err := p.syncer.Task()
	if err != nil || !sent {
		return sent, err
	}
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if p.inSync() {
			return true, nil
		}
		time.Sleep(time.Millisecond)
	}
	return true, errors.New("secondary did not apply the settings in time")
}

func (p *pair) inSync() bool {
	pa, pt := p.primary.engine.Settings()
	sa, st := p.secondary.engine.Settings()
	// The secondary stores the time clamped for the algorithm.
	return pa == sa && min(pt, pa.TimeLimit()) == st
}

// close shuts the link down and waits for the receiver.
func (p *pair) close() error {
	_ = p.primaryConn.Close()
	_ = p.secondaryConn.Close()
	return <-p.serveDone
}
