// =============================================================================
// Payments Engine - Run Metrics
// =============================================================================
//
// Prometheus instruments for one processing run. Each Metrics value owns its
// own registry so repeated runs (and tests) never collide on the default
// registerer. A batch run has no scrape endpoint; the registry is exported
// to a node-exporter textfile instead.
//
// =============================================================================

package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the instruments updated by the processor.
type Metrics struct {
	registry *prometheus.Registry

	RowsRead       prometheus.Counter
	Applied        *prometheus.CounterVec
	Rejected       *prometheus.CounterVec
	HeldShortfalls prometheus.Counter
	Clients        prometheus.Gauge
	LockedAccounts prometheus.Gauge
	RunDuration    prometheus.Gauge
}

// New creates the instruments under namespace and registers them.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Data rows read from the input.",
		}),
		Applied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_applied_total",
			Help:      "Records applied to a client ledger, by kind.",
		}, []string{"kind"}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_rejected_total",
			Help:      "Records rejected by validation or by the ledger, by code.",
		}, []string{"code"}),
		HeldShortfalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "held_shortfalls_total",
			Help:      "Resolves and chargebacks skipped because held funds were short.",
		}),
		Clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clients",
			Help:      "Client accounts in the final report.",
		}),
		LockedAccounts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "locked_accounts",
			Help:      "Client accounts locked by a chargeback.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the processing run.",
		}),
	}

	m.registry.MustRegister(
		m.RowsRead,
		m.Applied,
		m.Rejected,
		m.HeldShortfalls,
		m.Clients,
		m.LockedAccounts,
		m.RunDuration,
	)

	return m
}

// Gatherer exposes the registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the current values in the text exposition format.
// The file is written atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
