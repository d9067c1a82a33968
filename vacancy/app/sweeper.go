package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/m3rciful/vacancybot/core/logger"
)

// sweepable drops sessions idle for longer than maxIdle.
type sweepable interface {
	Sweep(ctx context.Context, maxIdle time.Duration) int
}

// Sweeper periodically evicts abandoned in-memory dialogs.
type Sweeper struct {
	cron    *cron.Cron
	target  sweepable
	maxIdle time.Duration
}

// NewSweeper schedules target.Sweep on spec (standard cron or @every).
func NewSweeper(spec string, maxIdle time.Duration, target sweepable) (*Sweeper, error) {
	s := &Sweeper{
		cron:    cron.New(),
		target:  target,
		maxIdle: maxIdle,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("sweeper: schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Sweeper) run() {
	ctx := logger.WithRID(context.Background(), "sweep")
	if n := s.target.Sweep(ctx, s.maxIdle); n > 0 {
		logger.LogEvent(ctx, logger.SVCSessions, slog.LevelInfo, "sessions.evicted",
			slog.String("status", "ok"),
			slog.Int("swept", n),
		)
	}
}

// Start runs the schedule in the background.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
