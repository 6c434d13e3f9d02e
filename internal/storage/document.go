// Package storage сохраняет состояние одним документом.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Spok95/stock-tracker/internal/domain/catalog"
	"github.com/Spok95/stock-tracker/internal/domain/inventory"
)

const CurrentVersion = 1

// Document хранит полное состояние: каталог, остатки и журнал.
type Document struct {
	Version        int                                                               `json:"version"`
	SavedAt        time.Time                                                         `json:"saved_at"`
	ParentItems    map[catalog.ProductID]catalog.ParentItem                          `json:"parent_items"`
	PacketVariants map[catalog.ProductID]map[catalog.VariantID]catalog.PacketVariant `json:"packet_variants"`
	StockRecords   map[catalog.ProductID]inventory.StockRecord                       `json:"stock_records"`
	Transactions   []inventory.Transaction                                           `json:"transactions"`
}

// Store хранит один документ. Save заменяет его целиком.
type Store interface {
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
}

var (
	ErrNotFound     = errors.New("state not found")
	ErrCorruptState = errors.New("corrupt state")
)

// CorruptStateError: сохранённое состояние нельзя прочитать или оно не проходит проверку.
type CorruptStateError struct {
	Source string
	Err    error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt state in %s: %v", e.Source, e.Err)
}

func (e *CorruptStateError) Unwrap() error { return e.Err }

func (e *CorruptStateError) Is(target error) bool { return target == ErrCorruptState }

func Corrupt(source string, err error) error {
	var ce *CorruptStateError
	if errors.As(err, &ce) {
		return err
	}
	return &CorruptStateError{Source: source, Err: err}
}

// Decode разбирает документ строго. Неизвестные поля и мусор после JSON считаются ошибкой.
func Decode(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if dec.More() {
		return nil, errors.New("decode document: trailing data")
	}
	if doc.Version < 1 || doc.Version > CurrentVersion {
		return nil, fmt.Errorf("unsupported document version %d", doc.Version)
	}
	return &doc, nil
}

func Encode(doc *Document) ([]byte, error) {
	if doc.Version == 0 {
		doc.Version = CurrentVersion
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return append(b, '\n'), nil
}
