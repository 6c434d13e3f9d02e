package storage

import (
	"context"
	"sync"
)

// Memory держит документ в закодированном виде, как настоящее хранилище.
type Memory struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	saveErr error
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Load(_ context.Context) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, ErrNotFound
	}
	doc, err := Decode(m.data)
	if err != nil {
		return nil, Corrupt("memory", err)
	}
	return doc, nil
}

func (m *Memory) Save(_ context.Context, doc *Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	b, err := Encode(doc)
	if err != nil {
		return err
	}
	m.data = b
	m.saves++
	return nil
}

// FailSaves заставляет последующие Save возвращать err (nil: снять).
func (m *Memory) FailSaves(err error) {
	m.mu.Lock()
	m.saveErr = err
	m.mu.Unlock()
}

// SetRaw подменяет сохранённые байты.
func (m *Memory) SetRaw(b []byte) {
	m.mu.Lock()
	m.data = b
	m.mu.Unlock()
}

func (m *Memory) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
