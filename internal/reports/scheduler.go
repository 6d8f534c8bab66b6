// Package reports generates and schedules end-of-day market reports.
package reports

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"marketdesk/internal/config"
	apperrors "marketdesk/internal/errors"
	"marketdesk/internal/logging"
)

// Job is a unit of scheduled work. runAt is the wall-clock time the run
// was due, not the time it actually started.
type Job func(ctx context.Context, runAt time.Time) error

// Scheduler runs a job on a wall-clock schedule. In daily mode the next
// run is recomputed from the current time after every firing, so the
// schedule never drifts and runs missed while the process was suspended
// are skipped rather than replayed.
type Scheduler struct {
	name     string
	job      Job
	daily    *config.Clock
	interval time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	runs     int
	failures int
}

// NewDailyScheduler creates a scheduler that fires once per day at the
// given clock time.
func NewDailyScheduler(name string, at config.Clock, job Job, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		name:   name,
		job:    job,
		daily:  &at,
		logger: logging.WithComponent(logger, "scheduler").With().Str("job", name).Logger(),
	}
}

// NewIntervalScheduler creates a scheduler that fires at a fixed interval.
func NewIntervalScheduler(name string, interval time.Duration, job Job, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		name:     name,
		job:      job,
		interval: interval,
		logger:   logging.WithComponent(logger, "scheduler").With().Str("job", name).Logger(),
	}
}

// Start launches the schedule loop. It returns ErrSchedulerRunning if the
// scheduler is already running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return apperrors.ErrSchedulerRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(runCtx)
	return nil
}

// Stop halts the schedule loop and waits for it to exit. It returns
// ErrSchedulerStopped if the scheduler is not running.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return apperrors.ErrSchedulerStopped
	}
	cancel := s.cancel
	done := s.done
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done
	return nil
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Runs returns the number of completed and failed runs so far.
func (s *Scheduler) Runs() (runs, failures int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs, s.failures
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	if s.daily != nil {
		s.logger.Info().
			Int("hour", s.daily.Hour).
			Int("minute", s.daily.Minute).
			Msg("daily schedule started")
	} else {
		s.logger.Info().Dur("interval", s.interval).Msg("interval schedule started")
	}

	for {
		runAt := s.nextRun(time.Now())
		timer := time.NewTimer(time.Until(runAt))

		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info().Msg("schedule stopped")
			return
		case <-timer.C:
			s.runJob(ctx, runAt)
		}
	}
}

func (s *Scheduler) nextRun(now time.Time) time.Time {
	if s.daily != nil {
		return s.daily.Next(now)
	}
	return now.Add(s.interval)
}

func (s *Scheduler) runJob(ctx context.Context, runAt time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("job panicked")
			s.mu.Lock()
			s.failures++
			s.mu.Unlock()
		}
	}()

	start := time.Now()
	err := s.job(ctx, runAt)

	s.mu.Lock()
	s.runs++
	if err != nil {
		s.failures++
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("job failed")
		return
	}
	s.logger.Info().Dur("duration", time.Since(start)).Msg("job completed")
}
