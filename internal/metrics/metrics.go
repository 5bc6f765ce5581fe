package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Per-device hardware gauges. Labels identify the card by index,
	// name and vendor so dashboards stay readable on multi-GPU hosts.
	GPUTemperature = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gpu_temperature_celsius",
			Help: "Current GPU core temperature in degrees Celsius",
		},
		[]string{"index", "name", "vendor"},
	)

	GPUUtilization = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gpu_utilization_percent",
			Help: "Current GPU core utilization percentage",
		},
		[]string{"index", "name", "vendor"},
	)

	GPUPowerDraw = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gpu_power_draw_watts",
			Help: "Current GPU power draw in watts",
		},
		[]string{"index", "name", "vendor"},
	)

	GPUCoreClock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gpu_core_clock_mhz",
			Help: "Current GPU core clock in MHz",
		},
		[]string{"index", "name", "vendor"},
	)

	GPUMemoryUsed = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gpu_memory_used_mebibytes",
			Help: "Current GPU memory usage in MiB",
		},
		[]string{"index", "name", "vendor"},
	)

	GPUMemoryTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gpu_memory_total_mebibytes",
			Help: "Total GPU memory in MiB",
		},
		[]string{"index", "name", "vendor"},
	)

	GPUDevices = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gpu_devices",
			Help: "Number of detected GPU devices",
		},
	)

	// Device cache metrics
	DeviceCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "device_cache_entries",
			Help: "Number of device snapshots currently cached",
		},
	)

	DeviceCacheAccesses = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "device_cache_accesses_total",
			Help: "Cumulative read count across cached device snapshots",
		},
	)

	DeviceCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "device_cache_expired_swept_total",
			Help: "Total number of expired device snapshots removed by cleanup",
		},
	)

	DeviceQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "device_query_errors_total",
			Help: "Total number of failed device metric queries",
		},
		[]string{"vendor"},
	)

	// History recording metrics
	HistorySamplesRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "history_samples_recorded_total",
			Help: "Total number of device samples written to history storage",
		},
	)

	HistoryRecordErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "history_record_errors_total",
			Help: "Total number of failed history writes",
		},
	)

	// API response cache metrics
	APICacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_cache_hits_total",
			Help: "Total number of API response cache hits",
		},
		[]string{"endpoint"},
	)

	APICacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_cache_misses_total",
			Help: "Total number of API response cache misses",
		},
		[]string{"endpoint"},
	)

	// API request metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"endpoint", "method", "status"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"endpoint", "method", "status"},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Total number of requests rejected by rate limiting",
		},
		[]string{"scope"}, // scope: global, ip
	)

	// Metrics collection error tracking
	MetricsCollectionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metrics_collection_errors_total",
			Help: "Total number of errors during metrics collection",
		},
		[]string{"collector"}, // collector: devices, cache, history
	)

	// Circuit breaker state tracking
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTrips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_trips_total",
			Help: "Total number of times a circuit breaker has tripped open",
		},
		[]string{"name"},
	)

	// WebSocket metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Number of active WebSocket connections",
		},
	)

	WebSocketMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent to clients",
		},
	)
)
