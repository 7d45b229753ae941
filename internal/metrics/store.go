package metrics

import "github.com/prometheus/client_golang/prometheus"

// Store Prometheus metrics.
var (
	StoreOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restodir",
			Name:      "store_operations_total",
			Help:      "Total number of document store operations",
		},
		[]string{"op", "status"},
	)

	StoreOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "restodir",
			Name:      "store_operation_duration_seconds",
			Help:      "Document store operation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"op"},
	)
)

var storeMetricsRegistered bool

// RegisterStoreMetrics registers Prometheus store metrics. Must be called once from main.
func RegisterStoreMetrics() {
	if storeMetricsRegistered {
		return
	}
	prometheus.MustRegister(StoreOperationsTotal)
	prometheus.MustRegister(StoreOperationDuration)
	storeMetricsRegistered = true
}
