package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type (
	ProductID string
	VariantID string
)

type Unit string

const (
	UnitKg      Unit = "kg"
	UnitGm      Unit = "gm"
	UnitLtr     Unit = "ltr"
	UnitMl      Unit = "ml"
	UnitPcs     Unit = "pcs"
	UnitPackets Unit = "packets"
)

// Точность на входе: вес до граммов (для кг), цены до копеек.
const (
	WeightPlaces int32 = 3
	PricePlaces  int32 = 2
)

const DefaultCategory = "General"

// RoundWeight округляет вес half-up до WeightPlaces. Вызывается только на границе ввода.
func RoundWeight(d decimal.Decimal) decimal.Decimal { return d.Round(WeightPlaces) }

// RoundPrice округляет цену half-up до PricePlaces.
func RoundPrice(d decimal.Decimal) decimal.Decimal { return d.Round(PricePlaces) }

type ParentItem struct {
	ID       ProductID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Unit     Unit      `json:"unit"`
}

func (p ParentItem) Validate() error {
	if strings.TrimSpace(string(p.ID)) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidProduct)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: %s: empty name", ErrInvalidProduct, p.ID)
	}
	if p.Unit == "" {
		return fmt.Errorf("%w: %s: empty unit", ErrInvalidProduct, p.ID)
	}
	return nil
}

// PacketVariant: упаковка (SKU) родительского товара, например «1kg pack».
type PacketVariant struct {
	ID            VariantID       `json:"id"`
	ParentID      ProductID       `json:"parent_id"`
	WeightPerUnit decimal.Decimal `json:"weight_per_unit"`
	Description   string          `json:"description"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
}

func (v PacketVariant) Validate() error {
	if strings.TrimSpace(string(v.ID)) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidVariant)
	}
	if v.ParentID == "" {
		return fmt.Errorf("%w: %s: empty parent id", ErrInvalidVariant, v.ID)
	}
	if !v.WeightPerUnit.IsPositive() {
		return fmt.Errorf("%w: %s: %s", ErrInvalidWeight, v.ID, v.WeightPerUnit)
	}
	if v.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: %s: %s", ErrInvalidPrice, v.ID, v.UnitPrice)
	}
	return nil
}

// Label: «Имя товара (описание упаковки)», как в оповещениях и отчётах.
func Label(p ParentItem, v PacketVariant) string {
	desc := v.Description
	if desc == "" {
		desc = string(v.ID)
	}
	return fmt.Sprintf("%s (%s)", p.Name, desc)
}
