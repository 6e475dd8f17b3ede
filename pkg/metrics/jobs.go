package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JobMetrics records runs of background housekeeping jobs such as the
// session sweeper.
type JobMetrics struct {
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
	evicted  *prometheus.CounterVec
}

// NewJobMetrics registers the job metrics on the provided registerer.
func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	if reg == nil {
		return &JobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_job_duration_seconds",
		Help:    "Duration of background jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_job_runs_total",
		Help: "Background job executions.",
	}, []string{"job"})
	evicted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_job_evicted_total",
		Help: "Items evicted by background jobs.",
	}, []string{"job"})
	reg.MustRegister(duration, runs, evicted)
	return &JobMetrics{
		duration: duration,
		runs:     runs,
		evicted:  evicted,
	}
}

// ObserveRun records one execution of the named job.
func (j *JobMetrics) ObserveRun(job string, duration time.Duration, evicted int) {
	if j == nil || j.duration == nil {
		return
	}
	label := normalizeLabel(job)
	j.duration.WithLabelValues(label).Observe(duration.Seconds())
	j.runs.WithLabelValues(label).Inc()
	if evicted > 0 {
		j.evicted.WithLabelValues(label).Add(float64(evicted))
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
