package inventory

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Spok95/stock-tracker/internal/domain/catalog"
)

var (
	ErrInvalidQuantity         = errors.New("quantity must be positive")
	ErrInvalidSaleKind         = errors.New("unknown sale kind")
	ErrInsufficientLooseStock  = errors.New("insufficient loose stock")
	ErrInsufficientPackedStock = errors.New("insufficient packed stock")
	ErrInvalidRecord           = errors.New("invalid stock record")
	ErrInvalidTransaction      = errors.New("invalid transaction")
	ErrLedgerMismatch          = errors.New("stock records do not match transaction log")
)

// InsufficientStockError: операция просит больше, чем есть.
// Для упаковки Available/Requested в единицах товара (вес), для продажи: в штуках.
type InsufficientStockError struct {
	Kind      Kind
	ParentID  catalog.ProductID
	VariantID catalog.VariantID
	Available decimal.Decimal
	Requested decimal.Decimal
	// MaxUnits: сколько штук можно провести прямо сейчас.
	MaxUnits int64
}

func (e *InsufficientStockError) Error() string {
	what := "packed"
	if e.Kind == KindPack {
		what = "loose"
	}
	return fmt.Sprintf("insufficient %s stock for %s/%s: available %s, requested %s",
		what, e.ParentID, e.VariantID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	switch target {
	case ErrInsufficientLooseStock:
		return e.Kind == KindPack
	case ErrInsufficientPackedStock:
		return e.Kind == KindSale
	}
	return false
}
