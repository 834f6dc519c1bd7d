// Package jobs runs the scheduled background work of the server.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/yigit/coursecatalog/internal/app/services"
	"github.com/yigit/coursecatalog/internal/pkg/snapshot"
)

// DefaultLimiterIdle is how long a rate limiter client may stay idle before
// it is forgotten.
const DefaultLimiterIdle = 10 * time.Minute

// LimiterCleaner is implemented by middleware.RateLimiter.
type LimiterCleaner interface {
	Cleanup(idle time.Duration) int
}

// Scheduler owns the cron runner for the snapshot warmer and housekeeping.
type Scheduler struct {
	cron     *cron.Cron
	services *services.Services
	cache    *snapshot.Cache
	limiter  LimiterCleaner
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewScheduler registers the jobs. warmSchedule uses cron syntax including
// descriptors such as "@every 12h". limiter may be nil.
func NewScheduler(svc *services.Services, cache *snapshot.Cache, limiter LimiterCleaner, warmSchedule string, logger zerolog.Logger) (*Scheduler, error) {
	logger = logger.With().Str("component", "scheduler").Logger()
	cronLogger := cronLogAdapter{logger: logger}

	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger),
			cron.SkipIfStillRunning(cronLogger),
		)),
		services: svc,
		cache:    cache,
		limiter:  limiter,
		timeout:  2 * time.Minute,
		logger:   logger,
	}

	if _, err := s.cron.AddFunc(warmSchedule, func() { _ = s.Warm(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid warm schedule %q: %w", warmSchedule, err)
	}
	if limiter != nil {
		if _, err := s.cron.AddFunc("@every 5m", s.cleanupLimiter); err != nil {
			return nil, fmt.Errorf("failed to schedule limiter cleanup: %w", err)
		}
	}
	return s, nil
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop stops scheduling and waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info().Msg("Scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn().Err(ctx.Err()).Msg("Scheduler stop timed out")
	}
}

// Warm requests every cached listing. Fresh listings are served from the
// cache, stale ones are recomputed. It returns the first failure.
func (s *Scheduler) Warm(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	warmers := []struct {
		key  string
		warm func(context.Context) error
	}{
		{services.KeyCourses, func(ctx context.Context) error { _, err := s.services.Course.ListCourses(ctx); return err }},
		{services.KeySyllabi, func(ctx context.Context) error { _, err := s.services.Syllabus.ListSyllabi(ctx); return err }},
		{services.KeyInstructors, func(ctx context.Context) error { _, err := s.services.Instructor.ListInstructors(ctx); return err }},
	}

	var firstErr error
	for _, w := range warmers {
		if err := w.warm(ctx); err != nil {
			s.logger.Error().Err(err).Str("key", w.key).Msg("Snapshot warm-up failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if _, computedAt, ok := snapshot.Peek[any](s.cache, w.key); ok {
			s.logger.Info().Str("key", w.key).Time("computedAt", computedAt).Msg("Snapshot warm")
		}
	}
	return firstErr
}

func (s *Scheduler) cleanupLimiter() {
	if removed := s.limiter.Cleanup(DefaultLimiterIdle); removed > 0 {
		s.logger.Debug().Int("removed", removed).Msg("Forgot idle rate limiter clients")
	}
}

// cronLogAdapter satisfies cron.Logger with zerolog.
type cronLogAdapter struct {
	logger zerolog.Logger
}

func (a cronLogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (a cronLogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
