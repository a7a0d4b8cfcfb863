package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Illustar0/oneMonitor/pkg/alerts"
	"github.com/Illustar0/oneMonitor/pkg/model"
)

// PollerConfig holds the tunables of the poll loop. AlarmLine must be
// below WarningLine.
type PollerConfig struct {
	Rooms       []model.Room
	Interval    time.Duration
	RoomDelay   time.Duration
	AlarmLine   float64
	WarningLine float64
}

// Poller runs the steady-state measurement loop: once per interval it logs
// in to the measurement source, reads every room's balance, pushes
// low-balance alerts and ingests the readings.
type Poller struct {
	source    Source
	registry  Registry
	notifiers map[string]alerts.Notifier
	cfg       PollerConfig
	logger    *slog.Logger
	now       func() time.Time
}

// NewPoller creates a poller. notifiers maps push target names, as
// referenced by room declarations, to their notifier.
func NewPoller(source Source, registry Registry, notifiers map[string]alerts.Notifier, cfg PollerConfig, logger *slog.Logger) *Poller {
	return &Poller{
		source:    source,
		registry:  registry,
		notifiers: notifiers,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Run loops until ctx is cancelled. The loop itself never returns an
// error: every failure inside a cycle is logged and retried on the next
// interval.
func (p *Poller) Run(ctx context.Context) error {
	for {
		p.Cycle(ctx)
		p.logger.Info("cycle complete, waiting for next interval", "interval", p.cfg.Interval.String())
		if !sleepCtx(ctx, p.cfg.Interval) {
			return ctx.Err()
		}
	}
}

// Cycle performs one full pass over the configured rooms. A login failure
// aborts the cycle before any room is polled; any per-room failure is
// logged and the pass continues with the next room.
func (p *Poller) Cycle(ctx context.Context) {
	session, err := p.source.Login(ctx)
	if err != nil {
		p.logger.Error("measurement source login failed, skipping cycle", "error", err)
		return
	}

	// One capture instant per cycle keeps readings comparable across rooms.
	timestamp := p.now().Unix()

	for _, room := range p.cfg.Rooms {
		if !sleepCtx(ctx, p.cfg.RoomDelay) {
			return
		}

		balance, err := session.Balance(ctx, room.ID)
		if err != nil {
			p.logger.Error("balance fetch failed", "room", room.ID, "error", err)
			continue
		}

		p.evaluateThresholds(ctx, room, balance)

		reading := model.Reading{Timestamp: timestamp, Electricity: balance}
		if err := p.registry.AppendReading(ctx, room.ID, reading); err != nil {
			p.logger.Error("reading ingest failed", "room", room.ID, "error", err)
			continue
		}
		p.logger.Info("reading ingested", "room", room.ID, "balance", balance, "timestamp", timestamp)
	}
}

// evaluateThresholds sends at most one notification per room per cycle.
// Rooms without a push target are skipped for alerting but still ingested.
func (p *Poller) evaluateThresholds(ctx context.Context, room model.Room, balance float64) {
	if room.Push == "" {
		return
	}
	notifier, ok := p.notifiers[room.Push]
	if !ok {
		p.logger.Warn("room references unknown push target", "room", room.ID, "push", room.Push)
		return
	}

	var alert alerts.Alert
	switch {
	case balance < p.cfg.AlarmLine:
		alert = alerts.Alert{
			Level:   alerts.LevelAlarm,
			Title:   "Electricity balance almost exhausted",
			Message: fmt.Sprintf("%s remaining balance: %.2f", room.Name, balance),
		}
	case balance < p.cfg.WarningLine:
		alert = alerts.Alert{
			Level:   alerts.LevelWarning,
			Title:   "Electricity balance running low",
			Message: fmt.Sprintf("%s remaining balance: %.2f", room.Name, balance),
		}
	default:
		return
	}
	alert.RoomID = room.ID
	alert.RoomName = room.Name
	alert.Balance = balance

	if err := notifier.Send(ctx, alert); err != nil {
		p.logger.Error("alert send failed",
			"notifier", notifier.Name(),
			"room", room.ID,
			"level", alert.Level,
			"error", err,
		)
		return
	}
	p.logger.Info("alert sent", "room", room.ID, "level", alert.Level, "balance", balance)
}

// sleepCtx waits for d or until ctx is done, reporting whether the full
// duration elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
