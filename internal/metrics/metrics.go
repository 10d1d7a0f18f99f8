package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CapturesActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coach_captures_active",
		Help: "Currently active capture sessions",
	})

	CapturesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coach_captures_total",
		Help: "Capture sessions started, by mode",
	}, []string{"mode"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coach_stage_duration_seconds",
		Help:    "Per-stage latency (transcribe, evaluate, analyze, generate)",
		Buckets: []float64{0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
	}, []string{"stage"})

	AttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coach_attempts_total",
		Help: "Attempts persisted, by practice mode",
	}, []string{"mode"})

	AttemptsDegraded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coach_attempts_degraded_total",
		Help: "Attempts persisted with a placeholder evaluation",
	})

	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coach_errors_total",
		Help: "Error counts by stage",
	}, []string{"stage", "error_type"})

	AudioChunks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coach_audio_chunks_total",
		Help: "Audio chunks received over live capture sessions",
	})

	SpeechSegments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coach_speech_segments_total",
		Help: "Speech segments finalized by the live endpoint detector",
	})

	GenerationEmpty = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coach_generation_empty_total",
		Help: "Generation calls that returned a well-formed but empty result",
	})
)
