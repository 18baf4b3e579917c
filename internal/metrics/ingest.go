package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingestion Prometheus metrics.
var (
	DocumentsIngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datasetd",
			Name:      "documents_ingested_total",
			Help:      "Total number of documents written to datasets",
		},
		[]string{"dataset", "outcome"}, // outcome: "ok" / "error"
	)

	OCRTasksEnqueuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datasetd",
			Name:      "ocr_tasks_enqueued_total",
			Help:      "Total number of OCR tasks enqueued after ingestion",
		},
		[]string{"dataset"},
	)

	EntityResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "datasetd",
			Name:      "entity_resolutions_total",
			Help:      "Person marker resolutions by result",
		},
		[]string{"result"}, // "matched" / "created" / "none" / "error"
	)
)

var ingestMetricsRegistered bool

// RegisterIngestMetrics registers ingestion metrics. Must be called once from main.
func RegisterIngestMetrics() {
	if ingestMetricsRegistered {
		return
	}
	prometheus.MustRegister(DocumentsIngestedTotal)
	prometheus.MustRegister(OCRTasksEnqueuedTotal)
	prometheus.MustRegister(EntityResolutionsTotal)
	ingestMetricsRegistered = true
}
