// Package metrics provides the Prometheus metrics of the transcription service.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all Prometheus metrics of the service. A nil *Metrics is
// valid and records nothing, so components can be built without a registry.
type Metrics struct {
	TranscriptionsTotal   *prometheus.CounterVec
	EngineDuration        *prometheus.HistogramVec
	ModelLoadsTotal       *prometheus.CounterVec
	ModelLoadDuration     *prometheus.HistogramVec
	ModelCacheLookups     *prometheus.CounterVec
	ModelsResident        prometheus.Gauge
	EnhancementsTotal     *prometheus.CounterVec
	LLMDuration           prometheus.Histogram
	DeletionsTotal        *prometheus.CounterVec
	ProgressSubscriptions prometheus.Gauge

	collectors []prometheus.Collector
}

// New creates the metrics and registers them on registry
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{}
	m.init()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register transcription metrics: %w", err)
	}
	return m, nil
}

func (m *Metrics) init() {
	m.TranscriptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcribe_transcriptions_total",
			Help: "Finished transcriptions partitioned by model and final status.",
		},
		[]string{"model", "status"},
	)
	m.EngineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transcribe_engine_duration_seconds",
			Help:    "Time spent in the speech recognition engine.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
		[]string{"model"},
	)
	m.ModelLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcribe_model_loads_total",
			Help: "Model acquisitions partitioned by model and result.",
		},
		[]string{"model", "result"},
	)
	m.ModelLoadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transcribe_model_load_duration_seconds",
			Help:    "Time taken to download and load a model.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
		},
		[]string{"model"},
	)
	m.ModelCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcribe_model_cache_lookups_total",
			Help: "Model cache lookups partitioned by hit or miss.",
		},
		[]string{"result"},
	)
	m.ModelsResident = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "transcribe_models_resident",
			Help: "Number of models held by the model cache.",
		},
	)
	m.EnhancementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcribe_enhancements_total",
			Help: "LLM enhancements partitioned by final status.",
		},
		[]string{"status"},
	)
	m.LLMDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "transcribe_llm_duration_seconds",
			Help:    "Time spent waiting for the completion service.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 11),
		},
	)
	m.DeletionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcribe_deletions_total",
			Help: "Delete operations partitioned by kind and result.",
		},
		[]string{"kind", "result"},
	)
	m.ProgressSubscriptions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "transcribe_progress_subscriptions",
			Help: "Open model acquisition progress subscriptions.",
		},
	)

	m.collectors = []prometheus.Collector{
		m.TranscriptionsTotal,
		m.EngineDuration,
		m.ModelLoadsTotal,
		m.ModelLoadDuration,
		m.ModelCacheLookups,
		m.ModelsResident,
		m.EnhancementsTotal,
		m.LLMDuration,
		m.DeletionsTotal,
		m.ProgressSubscriptions,
	}
}

// Describe implements the prometheus.Collector interface.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors {
		c.Describe(ch)
	}
}

// Collect implements the prometheus.Collector interface.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors {
		c.Collect(ch)
	}
}

// RecordTranscription records a finished recognition attempt
func (m *Metrics) RecordTranscription(model, status string, engineTime time.Duration) {
	if m == nil {
		return
	}
	m.TranscriptionsTotal.WithLabelValues(model, status).Inc()
	if engineTime > 0 {
		m.EngineDuration.WithLabelValues(model).Observe(engineTime.Seconds())
	}
}

// RecordModelLoad records one model acquisition
func (m *Metrics) RecordModelLoad(model string, err error, took time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.ModelLoadsTotal.WithLabelValues(model, result).Inc()
	m.ModelLoadDuration.WithLabelValues(model).Observe(took.Seconds())
}

// RecordCacheLookup records a model cache hit or miss
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.ModelCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.ModelCacheLookups.WithLabelValues("miss").Inc()
}

// SetModelsResident sets the number of cached models
func (m *Metrics) SetModelsResident(n int) {
	if m == nil {
		return
	}
	m.ModelsResident.Set(float64(n))
}

// RecordEnhancement records a finished enhancement attempt
func (m *Metrics) RecordEnhancement(status string, took time.Duration) {
	if m == nil {
		return
	}
	m.EnhancementsTotal.WithLabelValues(status).Inc()
	m.LLMDuration.Observe(took.Seconds())
}

// RecordDeletion records a delete operation
func (m *Metrics) RecordDeletion(kind string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.DeletionsTotal.WithLabelValues(kind, result).Inc()
}

// SubscriptionOpened and SubscriptionClosed track open progress streams
func (m *Metrics) SubscriptionOpened() {
	if m == nil {
		return
	}
	m.ProgressSubscriptions.Inc()
}

func (m *Metrics) SubscriptionClosed() {
	if m == nil {
		return
	}
	m.ProgressSubscriptions.Dec()
}
