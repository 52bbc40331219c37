package storage

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

// MockAnalysisStorage is an in-memory AnalysisStorage for tests and for
// running without a database. Records are deep-copied through JSON so
// callers never share maps with the store.
type MockAnalysisStorage struct {
	mu      sync.RWMutex
	records map[string][]byte
	order   []string

	SaveErr    error
	GetErr     error
	HistoryErr error
}

// NewMockAnalysisStorage creates an empty in-memory store
func NewMockAnalysisStorage() *MockAnalysisStorage {
	return &MockAnalysisStorage{records: make(map[string][]byte)}
}

func (m *MockAnalysisStorage) Save(ctx context.Context, record *models.AnalysisRecord) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if err := record.Validate(); err != nil {
		return err
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	b, err := json.Marshal(record)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.records[record.ID]; !exists {
		m.order = append(m.order, record.ID)
	}
	m.records[record.ID] = b
	return nil
}

func (m *MockAnalysisStorage) Get(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}

	m.mu.RLock()
	b, ok := m.records[id]
	m.mu.RUnlock()
	if !ok {
		return nil, models.ErrAnalysisNotFound
	}

	var record models.AnalysisRecord
	if err := json.Unmarshal(b, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (m *MockAnalysisStorage) History(ctx context.Context, filter HistoryFilter) ([]*models.AnalysisRecord, error) {
	if m.HistoryErr != nil {
		return nil, m.HistoryErr
	}

	m.mu.RLock()
	all := make([]*models.AnalysisRecord, 0, len(m.order))
	for _, id := range m.order {
		var record models.AnalysisRecord
		if err := json.Unmarshal(m.records[id], &record); err != nil {
			m.mu.RUnlock()
			return nil, err
		}
		if filter.Symbol != "" && record.Symbol != filter.Symbol {
			continue
		}
		all = append(all, &record)
	}
	m.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Timestamp.Equal(all[j].Timestamp) {
			return all[i].ID > all[j].ID
		}
		return all[i].Timestamp.After(all[j].Timestamp)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if filter.Offset >= len(all) {
		return []*models.AnalysisRecord{}, nil
	}
	all = all[filter.Offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Len returns the number of stored records
func (m *MockAnalysisStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *MockAnalysisStorage) Close() error {
	return nil
}
