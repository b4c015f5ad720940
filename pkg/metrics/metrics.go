// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	JobExecutions    *prometheus.CounterVec
	JobDuration      *prometheus.HistogramVec
	JobFiresDropped  *prometheus.CounterVec
	JobsRunning      *prometheus.GaugeVec
	BroadcastDropped *prometheus.CounterVec
	StatisticGate    *prometheus.CounterVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		JobExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediastat_job_executions_total",
				Help: "Finished job executions by final status",
			},
			[]string{"job", "status"},
		),
		JobDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mediastat_job_duration_seconds",
				Help:    "Job execution duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900, 3600},
			},
			[]string{"job"},
		),
		JobFiresDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediastat_job_fires_dropped_total",
				Help: "Fire requests dropped because the job was already running",
			},
			[]string{"job"},
		),
		JobsRunning: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mediastat_jobs_running",
				Help: "Jobs currently executing",
			},
			[]string{"job"},
		),
		BroadcastDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediastat_broadcast_dropped_total",
				Help: "Broadcast messages dropped because the queue was full",
			},
			[]string{"type"},
		),
		StatisticGate: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mediastat_statistic_gate_total",
				Help: "Statistic cache gate decisions",
			},
			[]string{"type", "result"},
		),
	}
}
