package metrics

import (
	"errors"
	"net/http"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joseph-ayodele/docfields/internal/common"
)

var (
	// System metrics
	SystemMemoryUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "docfields_system_memory_bytes",
		Help: "Current heap allocation",
	})

	SystemGoroutines = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "docfields_system_goroutines",
		Help: "Number of goroutines",
	})

	// Pipeline metrics
	QueueLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "docfields_queue_length",
		Help: "Number of documents waiting to be processed",
	})

	DocumentsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docfields_documents_processed_total",
			Help: "Documents processed, by source format and final status",
		},
		[]string{"source", "status"},
	)

	PagesExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docfields_pages_extracted_total",
			Help: "Pages extracted, by assigned document type and text method",
		},
		[]string{"doc_type", "method"},
	)

	UnresolvedFields = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docfields_unresolved_fields_total",
			Help: "Scalar fields left null by the extractors",
		},
		[]string{"doc_type", "field"},
	)

	TableRows = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docfields_table_rows",
			Help:    "Line items reconstructed per page",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
		[]string{"doc_type"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docfields_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	LLMRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docfields_llm_requests_total",
			Help: "LLM invoice extraction calls, by outcome",
		},
		[]string{"outcome"},
	)

	ProcessingErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docfields_processing_errors_total",
			Help: "Total number of document processing errors",
		},
		[]string{"stage", "error_type"},
	)
)

// UpdateSystemMetrics updates system-level metrics
func UpdateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	SystemMemoryUsage.Set(float64(m.Alloc))
	SystemGoroutines.Set(float64(runtime.NumGoroutine()))
}

// Handler serves the default registry, refreshing the system gauges first.
func Handler() http.Handler {
	h := promhttp.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		UpdateSystemMetrics()
		h.ServeHTTP(w, r)
	})
}

// ErrorType buckets an error into a low-cardinality label value.
func ErrorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, common.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, common.ErrEmptyDocument):
		return "empty_document"
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, common.ErrLLMDisabled):
		return "llm_disabled"
	default:
		return "internal"
	}
}
