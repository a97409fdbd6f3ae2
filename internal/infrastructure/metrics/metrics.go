package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transfer metrics
	TransfersCreated prometheus.Counter
	TransferDuration prometheus.Histogram
	TransferAmount   prometheus.Histogram
	TransferErrors   *prometheus.CounterVec

	// Account metrics
	AccountsCreated    prometheus.Counter
	BalanceAdjustments *prometheus.CounterVec
	AdjustmentErrors   *prometheus.CounterVec

	// Cache metrics
	CacheLookups *prometheus.CounterVec

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec

	// Reconciliation metrics
	ReconciliationMismatches prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TransfersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "simplebank_transfers_created_total",
			Help: "Total number of committed transfers",
		}),
		TransferDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "simplebank_transfer_duration_seconds",
			Help:    "Duration of transfer operations including lock waits",
			Buckets: prometheus.DefBuckets,
		}),
		TransferAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "simplebank_transfer_amount",
			Help:    "Transfer amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		TransferErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simplebank_transfer_errors_total",
				Help: "Total number of rejected or failed transfers by error type",
			},
			[]string{"error_type"},
		),

		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "simplebank_accounts_created_total",
			Help: "Total number of accounts opened",
		}),
		BalanceAdjustments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simplebank_balance_adjustments_total",
				Help: "Total committed single-sided balance adjustments",
			},
			[]string{"direction"},
		),
		AdjustmentErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simplebank_balance_adjustment_errors_total",
				Help: "Total rejected or failed balance adjustments by error type",
			},
			[]string{"error_type"},
		),

		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simplebank_account_cache_lookups_total",
				Help: "Account cache lookups by result",
			},
			[]string{"result"},
		),

		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simplebank_auth_attempts_total",
				Help: "Total login attempts by status",
			},
			[]string{"status"},
		),

		ReconciliationMismatches: factory.NewCounter(prometheus.CounterOpts{
			Name: "simplebank_reconciliation_mismatches_total",
			Help: "Accounts whose stored balance differs from the sum of their entries",
		}),
	}
}
