package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

type Metrics struct {
	ops          *prometheus.CounterVec
	saveDuration *prometheus.HistogramVec
	valuation    prometheus.Gauge
	transactions prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ops: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stock",
			Name:      "operations_total",
			Help:      "Mutating operations by kind and result.",
		}, []string{"op", "result"}),
		saveDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stock",
			Name:      "state_save_seconds",
			Help:      "Time spent persisting the state document.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"result"}),
		valuation: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "stock",
			Name:      "packed_valuation",
			Help:      "Value of packed stock at current unit prices.",
		}),
		transactions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "stock",
			Name:      "ledger_transactions",
			Help:      "Number of transactions in the ledger.",
		}),
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) ObserveOp(op string, err error) { m.ops.WithLabelValues(op, result(err)).Inc() }

func (m *Metrics) ObserveSave(d time.Duration, err error) {
	m.saveDuration.WithLabelValues(result(err)).Observe(d.Seconds())
}

func (m *Metrics) SetValuation(v decimal.Decimal) { m.valuation.Set(v.InexactFloat64()) }

func (m *Metrics) SetTransactions(n int) { m.transactions.Set(float64(n)) }
