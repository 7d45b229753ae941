package metrics

import "github.com/prometheus/client_golang/prometheus"

// Import Prometheus metrics.
var (
	ImportRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restodir",
			Name:      "import_records_total",
			Help:      "Records seen by bulk import, by outcome",
		},
		[]string{"outcome"}, // "inserted" / "duplicate" / "invalid"
	)

	ImportProgress = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "restodir",
			Name:      "import_progress_ratio",
			Help:      "Completed fraction of the running bulk import",
		},
	)
)

var importMetricsRegistered bool

// RegisterImportMetrics registers Prometheus import metrics. Must be called once from main.
func RegisterImportMetrics() {
	if importMetricsRegistered {
		return
	}
	prometheus.MustRegister(ImportRecordsTotal)
	prometheus.MustRegister(ImportProgress)
	importMetricsRegistered = true
}
