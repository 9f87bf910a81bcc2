package runs

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	errx "github.com/ia-assistant/server/internal/core/error"
	"github.com/ia-assistant/server/internal/pipeline/model"
)

// MemoryRunRepository is the process-local store used when no Redis URL is
// configured. It keeps at most MaxRecent records.
type MemoryRunRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]model.RunRecord
	order   []uuid.UUID // newest first
}

func NewMemoryRunRepository() *MemoryRunRepository {
	return &MemoryRunRepository{records: make(map[uuid.UUID]model.RunRecord)}
}

func (m *MemoryRunRepository) Save(_ context.Context, record model.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[record.ID]; ok {
		m.remove(record.ID)
	}
	m.records[record.ID] = record
	m.order = append([]uuid.UUID{record.ID}, m.order...)

	for len(m.order) > MaxRecent {
		oldest := m.order[len(m.order)-1]
		m.order = m.order[:len(m.order)-1]
		delete(m.records, oldest)
	}
	return nil
}

func (m *MemoryRunRepository) Find(_ context.Context, id uuid.UUID) (*model.RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, errx.WrapNotFound(fmt.Errorf("run %s", id), errx.RedisNotFoundMessage)
	}
	return &rec, nil
}

func (m *MemoryRunRepository) Recent(_ context.Context, limit int) ([]model.RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 || limit > len(m.order) {
		limit = len(m.order)
	}
	out := make([]model.RunRecord, 0, limit)
	for _, id := range m.order[:limit] {
		out = append(out, m.records[id])
	}
	return out, nil
}

func (m *MemoryRunRepository) remove(id uuid.UUID) {
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}

var _ model.RunRepository = (*MemoryRunRepository)(nil)
