package cron

import (
	"context"
	"fmt"
	"time"
)

type sessionSweeper interface {
	Sweep(now time.Time) int
}

// NewSessionSweepJob evicts idle storefront sessions.
func NewSessionSweepJob(sweeper sessionSweeper) (Job, error) {
	if sweeper == nil {
		return nil, fmt.Errorf("session sweeper required")
	}
	return &sessionSweepJob{sweeper: sweeper, now: time.Now}, nil
}

type sessionSweepJob struct {
	sweeper sessionSweeper
	now     func() time.Time
}

func (j *sessionSweepJob) Name() string { return "session-sweep" }

func (j *sessionSweepJob) Run(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return j.sweeper.Sweep(j.now()), nil
}
