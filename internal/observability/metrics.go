// Package observability provides Prometheus metrics for the token.
package observability

import (
	"math/big"
	"net/http"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	TransfersTotal     *prometheus.CounterVec
	RejectionsTotal    *prometheus.CounterVec
	TaxCollected       *prometheus.CounterVec
	PolicyChangesTotal *prometheus.CounterVec
	SwapBacksTotal     prometheus.Counter

	PendingFees   prometheus.Gauge
	Launched      prometheus.Gauge
	StateSaveErrs prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "taxledger"
	}

	return &Metrics{
		TransfersTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "transfers_total",
			Help:      "Committed transfers by direction and tax regime",
		}, []string{"direction", "regime"}),
		RejectionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "rejections_total",
			Help:      "Rejected operations by reason",
		}, []string{"reason"}),
		TaxCollected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tax",
			Name:      "collected_base_units_total",
			Help:      "Tax collected per fee component, in base units",
		}, []string{"component"}),
		PolicyChangesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "policy",
			Name:      "changes_total",
			Help:      "Accepted owner policy changes by kind",
		}, []string{"kind"}),
		SwapBacksTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tax",
			Name:      "swap_backs_total",
			Help:      "Fee bucket releases to the router",
		}),
		PendingFees: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tax",
			Name:      "pending_fees_base_units",
			Help:      "Fees accrued in the contract buckets awaiting swap-back",
		}),
		Launched: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "launched",
			Help:      "1 once the launch gate has opened",
		}),
		StateSaveErrs: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "save_errors_total",
			Help:      "Failed writes of the state file",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

func toFloat(v *uint256.Int) float64 {
	f, _ := new(big.Float).SetInt(v.ToBig()).Float64()
	return f
}

// RecordTransfer counts a committed transfer.
func RecordTransfer(direction, regime string) {
	DefaultMetrics.TransfersTotal.WithLabelValues(direction, regime).Inc()
}

// RecordRejection counts a rejected operation.
func RecordRejection(reason string) {
	DefaultMetrics.RejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordTax adds collected tax for a component.
func RecordTax(component string, amount *uint256.Int) {
	DefaultMetrics.TaxCollected.WithLabelValues(component).Add(toFloat(amount))
}

// RecordPolicyChange counts an accepted owner mutation.
func RecordPolicyChange(kind string) {
	DefaultMetrics.PolicyChangesTotal.WithLabelValues(kind).Inc()
}

// RecordSwapBack counts a bucket release.
func RecordSwapBack() {
	DefaultMetrics.SwapBacksTotal.Inc()
}

// UpdatePendingFees sets the pending bucket gauge.
func UpdatePendingFees(amount *uint256.Int) {
	DefaultMetrics.PendingFees.Set(toFloat(amount))
}

// UpdateLaunched sets the launch gauge.
func UpdateLaunched(launched bool) {
	if launched {
		DefaultMetrics.Launched.Set(1)
		return
	}
	DefaultMetrics.Launched.Set(0)
}

// RecordStateSaveError counts a failed state write.
func RecordStateSaveError() {
	DefaultMetrics.StateSaveErrs.Inc()
}
