package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
)

const defaultInterval = time.Minute

type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Metrics  *metrics.JobMetrics
	Interval time.Duration
}

// Service runs registered jobs on a fixed cadence inside the API process.
// There is no cross-process lock: every replica sweeps its own sessions.
type Service struct {
	logg     *logger.Logger
	jobs     []Job
	metrics  *metrics.JobMetrics
	interval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Registry == nil {
		return nil, fmt.Errorf("job registry required")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Service{
		logg:     params.Logger.Component("housekeeping"),
		jobs:     params.Registry.Jobs(),
		metrics:  params.Metrics,
		interval: interval,
	}, nil
}

// Run loops until ctx is canceled. The first cycle starts one interval in.
// Job failures are logged and never stop the loop.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logg.Info(s.logg.WithField(ctx, "interval", s.interval.String()), "housekeeping.started")
	for {
		select {
		case <-ctx.Done():
			s.logg.Debug(ctx, "housekeeping.stopped")
			return ctx.Err()
		case <-ticker.C:
			_ = s.RunOnce(ctx)
		}
	}
}

// RunOnce runs every job once, in order, and combines their errors.
func (s *Service) RunOnce(ctx context.Context) error {
	var errs error
	for _, job := range s.jobs {
		if ctx.Err() != nil {
			return multierr.Append(errs, ctx.Err())
		}
		errs = multierr.Append(errs, s.runJob(ctx, job))
	}
	return errs
}

func (s *Service) runJob(ctx context.Context, job Job) error {
	start := time.Now()
	affected, err := job.Run(ctx)
	duration := time.Since(start)
	s.metrics.ObserveRun(job.Name(), duration, affected)

	jobCtx := s.logg.WithFields(ctx, map[string]any{
		"job":         job.Name(),
		"duration_ms": duration.Milliseconds(),
		"affected":    affected,
	})
	switch {
	case err != nil:
		s.logg.Error(jobCtx, "job.failed", err)
		return fmt.Errorf("%s: %w", job.Name(), err)
	case affected > 0:
		s.logg.Info(jobCtx, "job.completed")
	default:
		s.logg.Debug(jobCtx, "job.completed")
	}
	return nil
}
