package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/goleak"

	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
)

type testJob struct {
	name     string
	affected int
	err      error
	runs     int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) (int, error) {
	t.runs++
	return t.affected, t.err
}

type fakeSweeper struct {
	calls   int
	evicted int
}

func (f *fakeSweeper) Sweep(time.Time) int {
	f.calls++
	return f.evicted
}

func mustRegistry(t *testing.T, jobs ...Job) *Registry {
	t.Helper()
	registry, err := NewRegistry(jobs...)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return registry
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{Registry: mustRegistry(t)}); err == nil {
		t.Fatal("expected error without logger")
	}
	if _, err := NewService(ServiceParams{Logger: logger.Nop()}); err == nil {
		t.Fatal("expected error without registry")
	}
}

func TestServiceRunOnceRunsAllJobsEvenOnFailure(t *testing.T) {
	boom := errors.New("boom")
	failure := &testJob{name: "fail", err: boom}
	success := &testJob{name: "success", affected: 2}
	service, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: mustRegistry(t, failure, success),
		Metrics:  metrics.NewJobMetrics(prometheus.NewRegistry()),
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.RunOnce(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected job error in result, got %v", err)
	}
	if success.runs != 1 {
		t.Fatalf("expected success job to run once, ran %d", success.runs)
	}
	if failure.runs != 1 {
		t.Fatalf("expected failure job to run once, ran %d", failure.runs)
	}
}

func TestServiceRunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	sweeper := &fakeSweeper{evicted: 1}
	job, err := NewSessionSweepJob(sweeper)
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	service, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: mustRegistry(t, job),
		Interval: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	if err := service.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if sweeper.calls == 0 {
		t.Fatal("expected the sweep job to run at least once")
	}
}

func TestSessionSweepJob(t *testing.T) {
	if _, err := NewSessionSweepJob(nil); err == nil {
		t.Fatal("expected error without sweeper")
	}
	sweeper := &fakeSweeper{evicted: 3}
	job, _ := NewSessionSweepJob(sweeper)
	if job.Name() != "session-sweep" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
	evicted, err := job.Run(context.Background())
	if err != nil || evicted != 3 {
		t.Fatalf("expected 3 evicted, got %d (%v)", evicted, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := job.Run(ctx); err == nil {
		t.Fatal("expected canceled context error")
	}
}
