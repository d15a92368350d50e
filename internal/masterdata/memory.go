package masterdata

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryRepository keeps records in process memory. Reads return copies.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[Kind][]json.RawMessage
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[Kind][]json.RawMessage)}
}

func (m *MemoryRepository) GetAll(_ context.Context, kind Kind) ([]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneRecords(m.records[kind]), nil
}

func (m *MemoryRepository) ReplaceAll(_ context.Context, kind Kind, records []json.RawMessage) error {
	if err := Validate(records); err != nil {
		return err
	}
	cp := cloneRecords(records)
	m.mu.Lock()
	m.records[kind] = cp
	m.mu.Unlock()
	return nil
}

func cloneRecords(in []json.RawMessage) []json.RawMessage {
	out := make([]json.RawMessage, len(in))
	for i, r := range in {
		out[i] = append(json.RawMessage(nil), r...)
	}
	return out
}
