// Package metrics exposes Prometheus collectors for wallet operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"zcc-wallet-backend/internal/domain"
)

// WalletOperations counts wallet calls by operation and outcome kind.
var WalletOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "zcc",
	Subsystem: "wallet",
	Name:      "operations_total",
	Help:      "Wallet operations by operation and outcome.",
}, []string{"operation", "outcome"})

// CreditsMoved sums credits by ledger transaction type.
var CreditsMoved = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "zcc",
	Subsystem: "wallet",
	Name:      "credits_total",
	Help:      "Credits moved through the ledger by transaction type.",
}, []string{"type"})

// WalletLatency tracks wallet call latency.
var WalletLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "zcc",
	Subsystem: "wallet",
	Name:      "operation_duration_seconds",
	Help:      "Wallet operation latency.",
	Buckets:   prometheus.DefBuckets,
}, []string{"operation"})

// Compensations counts compensating refunds of compound purchases.
var Compensations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "zcc",
	Subsystem: "purchase",
	Name:      "compensations_total",
	Help:      "Compensating refunds after a failed dependent write, by result.",
}, []string{"operation", "result"})

// BalanceMismatches is the number of wallets whose balance disagreed with the
// ledger in the last reconciliation run.
var BalanceMismatches = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "zcc",
	Subsystem: "ledger",
	Name:      "balance_mismatches",
	Help:      "Wallets whose projected balance disagrees with the ledger sum.",
})

// JobRuns counts scheduled job executions by job and result.
var JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "zcc",
	Subsystem: "jobs",
	Name:      "runs_total",
	Help:      "Scheduled job runs by job name and result.",
}, []string{"job", "result"})

// Outcome is the label value recorded for err.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(domain.KindOf(err))
}

// ObserveWallet records one wallet call started at start.
func ObserveWallet(operation string, start time.Time, err error) {
	WalletOperations.WithLabelValues(operation, Outcome(err)).Inc()
	WalletLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
