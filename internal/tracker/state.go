package tracker

import (
	"fmt"
	"slices"
	"time"

	"github.com/Spok95/stock-tracker/internal/domain/catalog"
	"github.com/Spok95/stock-tracker/internal/domain/inventory"
	"github.com/Spok95/stock-tracker/internal/storage"
)

// State объединяет каталог и журнал. Опубликованное состояние не меняется, мутации идут по копии.
type State struct {
	Catalog *catalog.Catalog
	Ledger  *inventory.Ledger
}

// NewState: состояние поверх каталога с пустыми остатками по каждому товару.
func NewState(cat *catalog.Catalog, opts ...inventory.Option) *State {
	l := inventory.NewLedger(cat, opts...)
	for _, p := range cat.Products() {
		l.Open(p.ID)
	}
	return &State{Catalog: cat, Ledger: l}
}

func (s *State) Clone() *State {
	cat := s.Catalog.Clone()
	return &State{Catalog: cat, Ledger: s.Ledger.Clone(cat)}
}

func (s *State) Document(savedAt time.Time) *storage.Document {
	return &storage.Document{
		Version:        storage.CurrentVersion,
		SavedAt:        savedAt,
		ParentItems:    s.Catalog.Items(),
		PacketVariants: s.Catalog.VariantsByProduct(),
		StockRecords:   s.Ledger.StockRecords(),
		Transactions:   slices.Collect(s.Ledger.Transactions(inventory.Filter{})),
	}
}

// StateFromDocument проверяет документ целиком: каталог, остатки и свёртку журнала.
func StateFromDocument(doc *storage.Document, opts ...inventory.Option) (*State, error) {
	cat, err := catalog.FromItems(doc.ParentItems, doc.PacketVariants)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	l, err := inventory.Restore(cat, doc.StockRecords, doc.Transactions, opts...)
	if err != nil {
		return nil, fmt.Errorf("ledger: %w", err)
	}
	for _, p := range cat.Products() {
		l.Open(p.ID)
	}
	return &State{Catalog: cat, Ledger: l}, nil
}
