package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var importJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "import_jobs_in_queue",
	Help: "Number of bulk import jobs waiting for a worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active import workers",
})

var importedDocuments = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "imported_documents_total",
	Help: "Bulk import record outcomes",
}, []string{"outcome"})

var chatTurnDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "chat_turn_duration_seconds",
	Help:    "Total time spent on one chat turn.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30, 60},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of embedding, cache, store and completion calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func IncrementJobsInQueue() {
	importJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	importJobsInQueue.Dec()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}

func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func CountImportedDocument(outcome string) {
	importedDocuments.WithLabelValues(outcome).Inc()
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureChatTurnMetrics(status string, timeElapsed time.Duration) {
	chatTurnDuration.WithLabelValues(status).Observe(timeElapsed.Seconds())
}
