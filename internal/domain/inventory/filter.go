package inventory

import (
	"slices"

	"github.com/Spok95/stock-tracker/internal/domain/catalog"
)

// Filter: отбор записей журнала. Пустые поля не ограничивают; границы дат включительно.
type Filter struct {
	From      Date
	To        Date
	Kinds     []Kind
	ParentID  catalog.ProductID
	VariantID catalog.VariantID
}

func (f Filter) Match(tx Transaction) bool {
	if !f.From.IsZero() && tx.EffectiveDate.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && tx.EffectiveDate.After(f.To) {
		return false
	}
	if len(f.Kinds) > 0 && !slices.Contains(f.Kinds, tx.Kind) {
		return false
	}
	if f.ParentID != "" && tx.ParentID != f.ParentID {
		return false
	}
	if f.VariantID != "" && tx.VariantID != f.VariantID {
		return false
	}
	return true
}
