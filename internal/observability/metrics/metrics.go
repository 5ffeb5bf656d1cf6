// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ai_interviewer"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Upload metrics
	UploadsTotal  *prometheus.CounterVec
	UploadedBytes prometheus.Counter

	// Extraction metrics
	ExtractionAttempts *prometheus.CounterVec
	ExtractionDuration *prometheus.HistogramVec

	// LLM metrics
	LLMRequests *prometheus.CounterVec
	LLMLatency  *prometheus.HistogramVec

	// Question metrics
	QuestionsGenerated *prometheus.CounterVec

	// TTS metrics
	TTSSyntheses prometheus.Counter
	TTSErrors    prometheus.Counter
	TTSLatency   prometheus.Histogram

	// STT metrics
	STTTranscriptions *prometheus.CounterVec
	STTLatency        *prometheus.HistogramVec

	// Artifact store metrics
	ArtifactOps *prometheus.CounterVec

	// Report metrics
	ReportsCompleted prometheus.Counter
	ReportsFailed    prometheus.Counter
	ReportDuration   prometheus.Histogram

	// Speech interview metrics
	SpeechSessionsStarted   prometheus.Counter
	SpeechSessionsCompleted prometheus.Counter
	SpeechAnswersAnalyzed   prometheus.Counter

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		// Upload metrics
		UploadsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Total number of document uploads",
		}, []string{"kind", "outcome"}),
		UploadedBytes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Total bytes of uploaded documents",
		}),

		// Extraction metrics
		ExtractionAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_attempts_total",
			Help:      "Total text extraction attempts by tier",
		}, []string{"format", "tier", "outcome"}),
		ExtractionDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Duration of text extraction in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"format", "tier"}),

		// LLM metrics
		LLMRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total LLM requests",
		}, []string{"provider", "operation", "outcome"}),
		LLMLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_latency_seconds",
			Help:      "LLM request latency in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"provider", "operation"}),

		// Question metrics
		QuestionsGenerated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_generated_total",
			Help:      "Total interview questions generated",
		}, []string{"source"}),

		// TTS metrics
		TTSSyntheses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tts_syntheses_total",
			Help:      "Total speech synthesis requests",
		}),
		TTSErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tts_errors_total",
			Help:      "Total speech synthesis errors",
		}),
		TTSLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tts_latency_seconds",
			Help:      "Speech synthesis latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),

		// STT metrics
		STTTranscriptions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stt_transcriptions_total",
			Help:      "Total transcription requests by status",
		}, []string{"provider", "status"}),
		STTLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stt_latency_seconds",
			Help:      "Speech-to-text latency in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"provider"}),

		// Artifact store metrics
		ArtifactOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_ops_total",
			Help:      "Total artifact store operations",
		}, []string{"backend", "op", "outcome"}),

		// Report metrics
		ReportsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_completed_total",
			Help:      "Total feedback reports completed",
		}),
		ReportsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_failed_total",
			Help:      "Total feedback reports failed",
		}),
		ReportDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_duration_seconds",
			Help:      "Duration of report generation in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),

		// Speech interview metrics
		SpeechSessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speech_sessions_started_total",
			Help:      "Total speech interview sessions started",
		}),
		SpeechSessionsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speech_sessions_completed_total",
			Help:      "Total speech interview sessions completed",
		}),
		SpeechAnswersAnalyzed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speech_answers_analyzed_total",
			Help:      "Total speech interview answers analyzed",
		}),

		// Kafka publish metrics
		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordUpload records an upload attempt for a document kind.
func (m *Metrics) RecordUpload(kind string, err error, bytes int) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.UploadsTotal.WithLabelValues(kind, outcome).Inc()
	if bytes > 0 {
		m.UploadedBytes.Add(float64(bytes))
	}
}

// RecordExtraction records an extraction attempt for one tier.
func (m *Metrics) RecordExtraction(format, tier string, err error, durationSeconds float64) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.ExtractionAttempts.WithLabelValues(format, tier, outcome).Inc()
	m.ExtractionDuration.WithLabelValues(format, tier).Observe(durationSeconds)
}

// RecordLLMRequest records an LLM call.
func (m *Metrics) RecordLLMRequest(provider, operation string, err error, latencySeconds float64) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.LLMRequests.WithLabelValues(provider, operation, outcome).Inc()
	m.LLMLatency.WithLabelValues(provider, operation).Observe(latencySeconds)
}

// RecordQuestions records generated questions and their source (llm, fallback).
func (m *Metrics) RecordQuestions(source string, count int) {
	m.QuestionsGenerated.WithLabelValues(source).Add(float64(count))
}

// RecordTTS records a synthesis attempt.
func (m *Metrics) RecordTTS(err error, latencySeconds float64) {
	m.TTSSyntheses.Inc()
	m.TTSLatency.Observe(latencySeconds)
	if err != nil {
		m.TTSErrors.Inc()
	}
}

// RecordSTT records a transcription attempt with its result status.
func (m *Metrics) RecordSTT(provider, status string, latencySeconds float64) {
	m.STTTranscriptions.WithLabelValues(provider, status).Inc()
	m.STTLatency.WithLabelValues(provider).Observe(latencySeconds)
}

// RecordArtifactOp records an artifact store operation.
func (m *Metrics) RecordArtifactOp(backend, op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.ArtifactOps.WithLabelValues(backend, op, outcome).Inc()
}

// RecordReport records a finished report job.
func (m *Metrics) RecordReport(err error, durationSeconds float64) {
	m.ReportDuration.Observe(durationSeconds)
	if err != nil {
		m.ReportsFailed.Inc()
	} else {
		m.ReportsCompleted.Inc()
	}
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}
