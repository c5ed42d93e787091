package catalog

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultInterval is the default period between stock updates
const DefaultInterval = 5 * time.Minute

// Updater runs one stock synchronisation
type Updater interface {
	Update(ctx context.Context) (StockResult, error)
}

// Scheduler runs stock updates periodically
type Scheduler struct {
	updater  Updater
	interval time.Duration
	logger   zerolog.Logger
}

// NewScheduler creates a scheduler; a non-positive interval uses DefaultInterval
func NewScheduler(updater Updater, interval time.Duration, logger zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		updater:  updater,
		interval: interval,
		logger:   logger.With().Str("component", "scheduler").Logger(),
	}
}

// Interval returns the period between runs
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Run updates stock right away and then on every tick until ctx is done
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info().Dur("interval", s.interval).Msg("Stock scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Stock scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, err := s.updater.Update(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error().Err(err).Msg("Scheduled stock update failed")
	}
}
