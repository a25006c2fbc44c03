package store

import (
	"context"
	"sync"

	"philately/catalog/internal/domain"
)

// Memory is the fallback Store used when persistent storage is unavailable.
// It keeps records in insertion order so pagination behaves exactly like the
// SQLite store, just without surviving a restart.
type Memory struct {
	mu      sync.RWMutex
	order   []string
	records map[string]domain.StampRecord
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]domain.StampRecord)}
}

func (m *Memory) BulkInsert(_ context.Context, records []domain.StampRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		if _, exists := m.records[rec.ID]; !exists {
			m.order = append(m.order, rec.ID)
		}
		m.records[rec.ID] = rec
	}
	return nil
}

func (m *Memory) GetPage(_ context.Context, offset, limit int) ([]domain.StampRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if offset >= len(m.order) {
		return []domain.StampRecord{}, false, nil
	}
	if limit <= 0 {
		return []domain.StampRecord{}, offset < len(m.order), nil
	}
	end := offset + limit
	if end > len(m.order) {
		end = len(m.order)
	}
	page := make([]domain.StampRecord, 0, end-offset)
	for _, id := range m.order[offset:end] {
		page = append(page, m.records[id])
	}
	return page, end < len(m.order), nil
}

func (m *Memory) GetAll(_ context.Context) ([]domain.StampRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]domain.StampRecord, 0, len(m.order))
	for _, id := range m.order {
		all = append(all, m.records[id])
	}
	return all, nil
}

func (m *Memory) GetByID(_ context.Context, id string) (domain.StampRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return domain.StampRecord{}, ErrNotFound
	}
	return rec, nil
}

func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order), nil
}

func (m *Memory) IsEmpty(ctx context.Context) (bool, error) {
	n, _ := m.Count(ctx)
	return n == 0, nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = nil
	m.records = make(map[string]domain.StampRecord)
	return nil
}

func (m *Memory) Recreate(ctx context.Context) error {
	return m.Clear(ctx)
}

func (m *Memory) Close() error {
	return nil
}
