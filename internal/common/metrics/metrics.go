// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AssessmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_requests_total",
			Help: "Total number of assessment requests by task and outcome",
		},
		[]string{"task_id", "status"},
	)

	AssessmentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assessment_duration_seconds",
			Help:    "End to end assessment duration in seconds",
			Buckets: []float64{1, 2.5, 5, 10, 20, 40, 60, 120},
		},
		[]string{"task_id"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assessment_stage_duration_seconds",
			Help: "Duration of individual pipeline stages in seconds",
		},
		[]string{"stage"},
	)

	TranscriptionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcription_backend_failures_total",
			Help: "Total number of failed transcription backend calls",
		},
		[]string{"backend"},
	)

	JudgeCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "judge_calls_total",
			Help: "Total number of judge scoring calls by outcome",
		},
		[]string{"status"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "result_cache_lookups_total",
			Help: "Total number of result cache lookups by outcome",
		},
		[]string{"result"},
	)

	ScoresClamped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scores_clamped_total",
			Help: "Total number of computed scores clamped back into range",
		},
		[]string{"criterion"},
	)
)
