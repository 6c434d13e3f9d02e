package tracker

import (
	"time"

	"github.com/shopspring/decimal"
)

// Metrics: наблюдение за операциями. Реализация по умолчанию ничего не делает.
type Metrics interface {
	ObserveOp(op string, err error)
	ObserveSave(d time.Duration, err error)
	SetValuation(v decimal.Decimal)
	SetTransactions(n int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveOp(string, error) {}
func (nopMetrics) ObserveSave(time.Duration, error) {}
func (nopMetrics) SetValuation(decimal.Decimal) {}
func (nopMetrics) SetTransactions(int) {}
