// Package metrics provides Prometheus metrics for the basket counting pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingest metrics - the wire is best-effort, so counting what
	// arrives and what is lost is the primary visibility we have.
	framesReceived  prometheus.Counter
	framesDropped   prometheus.Counter
	framesMalformed prometheus.Counter
	framesDuplicate prometheus.Counter
	framesLost      prometheus.Counter

	// Pipeline metrics
	samplesDecoded *prometheus.CounterVec
	decodeLatency  prometheus.Histogram
	queueSize      prometheus.Gauge
	queueCapacity  prometheus.Gauge

	// Classification metrics
	shotsClassified *prometheus.CounterVec
	classifierState prometheus.Gauge

	// Device-side metrics (exported by the simulator and any Go-hosted device)
	framesSent      prometheus.Counter
	ringOverflows   prometheus.Counter
	rangingBacklog  prometheus.Gauge
	sensorResets    prometheus.Counter
	sensorResetErrs prometheus.Counter

	// HTTP surface metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "basket",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.framesReceived = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_received_total",
		Help:      "Total number of datagrams received from the device",
	})

	m.framesDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_dropped_total",
		Help:      "Total number of received frames dropped because the ingestion queue was full",
	})

	m.framesMalformed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_malformed_total",
		Help:      "Total number of frames rejected by the decoder",
	})

	m.framesDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_duplicate_total",
		Help:      "Total number of duplicate sequence ids observed (sequenced wire format only)",
	})

	m.framesLost = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_lost_total",
		Help:      "Total number of sequence-id gaps observed (sequenced wire format only)",
	})

	m.samplesDecoded = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "samples_decoded_total",
			Help:      "Total number of samples reconstructed from frames, by sensor class",
		},
		[]string{"sensor"},
	)

	m.decodeLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "decode_latency_milliseconds",
		Help:      "Histogram of per-frame decode latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the frame ingestion queue (backlog indicator)",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the frame ingestion queue",
	})

	m.shotsClassified = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "shots_classified_total",
			Help:      "Total number of classified shot events, by classification",
		},
		[]string{"classification"},
	)

	m.classifierState = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "classifier_state",
		Help:      "Current classifier state (0=idle, 1=impact_detected, 2=blackout)",
	})

	m.framesSent = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "device",
		Name:      "frames_sent_total",
		Help:      "Total number of frames transmitted by the packetizer",
	})

	m.ringOverflows = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "device",
		Name:      "ring_overflows_total",
		Help:      "Total number of inertial samples rejected because the sample ring was full",
	})

	m.rangingBacklog = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "device",
		Name:      "ranging_backlog",
		Help:      "Ranging samples buffered beyond the current frame's slot capacity",
	})

	m.sensorResets = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "device",
		Name:      "sensor_resets_total",
		Help:      "Total number of ranging sensor hardware resets triggered by the health monitor",
	})

	m.sensorResetErrs = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "device",
		Name:      "sensor_reset_errors_total",
		Help:      "Total number of ranging sensor reset sequences that failed",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// RecordFrameReceived increments the received frames counter.
func RecordFrameReceived() {
	globalManager.framesReceived.Inc()
}

// RecordFrameDropped increments the dropped frames counter.
func RecordFrameDropped() {
	globalManager.framesDropped.Inc()
}

// RecordFrameMalformed increments the malformed frames counter.
func RecordFrameMalformed() {
	globalManager.framesMalformed.Inc()
}

// RecordFrameDuplicate increments the duplicate frames counter.
func RecordFrameDuplicate() {
	globalManager.framesDuplicate.Inc()
}

// RecordFramesLost adds n to the lost frames counter.
func RecordFramesLost(n int) {
	globalManager.framesLost.Add(float64(n))
}

// RecordSamplesDecoded adds n to the decoded samples counter for a sensor class.
func RecordSamplesDecoded(sensor string, n int) {
	globalManager.samplesDecoded.WithLabelValues(sensor).Add(float64(n))
}

// RecordDecodeLatency records per-frame decode latency in milliseconds.
func RecordDecodeLatency(latencyMs float64) {
	globalManager.decodeLatency.Observe(latencyMs)
}

// UpdateQueueSize sets the current ingestion queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the configured ingestion queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordShotClassified increments the classified shots counter.
func RecordShotClassified(classification string) {
	globalManager.shotsClassified.WithLabelValues(classification).Inc()
}

// UpdateClassifierState sets the classifier state gauge.
func UpdateClassifierState(state int) {
	globalManager.classifierState.Set(float64(state))
}

// RecordFrameSent increments the transmitted frames counter.
func RecordFrameSent() {
	globalManager.framesSent.Inc()
}

// RecordRingOverflow increments the sample ring overflow counter.
func RecordRingOverflow() {
	globalManager.ringOverflows.Inc()
}

// UpdateRangingBacklog sets the ranging backlog gauge.
func UpdateRangingBacklog(n int) {
	globalManager.rangingBacklog.Set(float64(n))
}

// RecordSensorReset increments the sensor reset counter.
func RecordSensorReset() {
	globalManager.sensorResets.Inc()
}

// RecordSensorResetError increments the failed sensor reset counter.
func RecordSensorResetError() {
	globalManager.sensorResetErrs.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
