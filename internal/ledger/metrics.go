package ledger

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

var recordsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ledger_records_total",
		Help: "How many transactions have been recorded, partitioned by transaction type.",
	},
	[]string{"type"},
)

var voidsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ledger_voids_total",
		Help: "How many transactions have been voided, partitioned by transaction type.",
	},
	[]string{"type"},
)

var metrics = []prometheus.Collector{
	recordsTotal,
	voidsTotal,
}

// RegisterMetrics registers the ledger metrics with the default
// Prometheus registry.
func RegisterMetrics() error {
	for _, c := range metrics {
		if err := prometheus.Register(c); err != nil {
			return fmt.Errorf("could not register %s with Prometheus", c)
		}
	}

	return nil
}

// UnregisterMetrics unregisters the ledger metrics.
//
// This is needed to cleanly exit.
func UnregisterMetrics() bool {
	for _, c := range metrics {
		if ok := prometheus.Unregister(c); !ok {
			return false
		}
	}

	return true
}
