// Package scheduler runs periodic syncs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SyncFunc runs one sync to completion.
type SyncFunc func(reason string)

type Scheduler struct {
	cron *cron.Cron
}

// New schedules sync on spec, a standard five-field cron expression.
// A run that is still going when the next tick fires causes that tick to be skipped.
func New(spec string, sync SyncFunc) (*Scheduler, error) {
	logger := cronLogger{log.With().Str("component", "scheduler").Logger()}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		),
	)

	if _, err := c.AddFunc(spec, func() { sync("schedule") }); err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() {
	log.Info().Msg("Sync scheduler started")
	s.cron.Start()
}

// Stop waits for a running job to finish or ctx to end, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		log.Info().Msg("Sync scheduler stopped")
	case <-ctx.Done():
		log.Warn().Msg("Sync scheduler stop timed out")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
