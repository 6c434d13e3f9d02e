package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveOp("sale", nil)
	m.ObserveOp("sale", nil)
	m.ObserveOp("sale", errors.New("x"))
	m.ObserveSave(3*time.Millisecond, nil)
	m.SetValuation(decimal.RequireFromString("700.50"))
	m.SetTransactions(3)

	families, err := reg.Gather()
	require.NoError(t, err)

	got := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			key := mf.GetName()
			for _, l := range metric.GetLabel() {
				key += "," + l.GetName() + "=" + l.GetValue()
			}
			switch {
			case metric.GetCounter() != nil:
				got[key] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				got[key] = metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				got[key] = float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}

	assert.Equal(t, 2.0, got["stock_operations_total,op=sale,result=ok"])
	assert.Equal(t, 1.0, got["stock_operations_total,op=sale,result=error"])
	assert.Equal(t, 1.0, got["stock_state_save_seconds,result=ok"])
	assert.Equal(t, 700.5, got["stock_packed_valuation"])
	assert.Equal(t, 3.0, got["stock_ledger_transactions"])
}
