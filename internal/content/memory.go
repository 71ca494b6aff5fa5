package content

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory implementation for scaffolding and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
	keys    map[Key]uuid.UUID
}

// NewMemoryRepository creates an empty in-memory content repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[uuid.UUID]*Record),
		keys:    make(map[Key]uuid.UUID),
	}
}

func (m *MemoryRepository) Create(_ context.Context, record *Record) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := record.Key()
	if _, exists := m.keys[key]; exists {
		return nil, ErrContentExists
	}
	copied := cloneRecord(record)
	linkChildren(copied)
	sortChildren(copied)
	m.records[copied.ID] = copied
	m.keys[key] = copied.ID
	return cloneRecord(copied), nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, &NotFoundError{Resource: "content", Key: id.String()}
	}
	return cloneRecord(rec), nil
}

func (m *MemoryRepository) GetByKey(_ context.Context, key Key) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.keys[key]
	if !ok {
		return nil, &NotFoundError{Resource: "content", Key: key.String()}
	}
	return cloneRecord(m.records[id]), nil
}

func (m *MemoryRepository) List(_ context.Context, filter Filter) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Record, 0, len(m.records))
	for _, rec := range m.records {
		if filter.matches(rec) {
			out = append(out, cloneRecord(rec))
		}
	}
	sortRecords(out)
	return out, nil
}

func (m *MemoryRepository) Replace(_ context.Context, record *Record) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.records[record.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "content", Key: record.ID.String()}
	}
	newKey := record.Key()
	if id, taken := m.keys[newKey]; taken && id != record.ID {
		return nil, ErrContentExists
	}
	delete(m.keys, existing.Key())

	copied := cloneRecord(record)
	linkChildren(copied)
	sortChildren(copied)
	m.records[copied.ID] = copied
	m.keys[newKey] = copied.ID
	return cloneRecord(copied), nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return &NotFoundError{Resource: "content", Key: id.String()}
	}
	delete(m.keys, rec.Key())
	delete(m.records, id)
	return nil
}

func linkChildren(record *Record) {
	for _, field := range record.Fields {
		if field.ID == uuid.Nil {
			field.ID = uuid.New()
		}
		field.RecordID = record.ID
	}
	for _, button := range record.Buttons {
		if button.ID == uuid.Nil {
			button.ID = uuid.New()
		}
		button.RecordID = record.ID
	}
}
