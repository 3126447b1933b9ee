package server

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// limiterIdle is how long a client IP's login bucket is kept after its last attempt
const limiterIdle = 10 * time.Minute

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// startSweeper schedules the periodic cleanup of idle session handles,
// expired stored sessions and stale login buckets
func (s *Server) startSweeper() error {
	schedule := s.config.Session.SweepSchedule
	if schedule == "" {
		return nil
	}

	s.cron = cron.New(cron.WithParser(scheduleParser), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	if _, err := s.cron.AddFunc(schedule, func() { s.sweep(time.Now()) }); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	s.cron.Start()

	s.logger.Info().Str("schedule", schedule).Msg("Session sweeper started")
	return nil
}

// sweep runs one cleanup pass
func (s *Server) sweep(now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dropped := s.sessions.Sweep(now)

	purged, err := s.store.Purge(ctx, now.Add(-s.config.Session.TTL))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to purge expired sessions")
	}

	pruned := s.limiter.Prune(now.Add(-limiterIdle))

	s.logger.Debug().
		Int("handles_dropped", dropped).
		Int64("entries_purged", purged).
		Int("limiters_pruned", pruned).
		Msg("Session sweep complete")
}
