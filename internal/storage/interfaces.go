package storage

import (
	"context"

	"github.com/mohamedkhairy/stock-advisor/internal/models"
)

// AnalysisStorage defines the interface for analysis persistence
type AnalysisStorage interface {
	// Save stores a record, assigning an ID when it has none
	Save(ctx context.Context, record *models.AnalysisRecord) error

	// Get retrieves a record by ID or returns models.ErrAnalysisNotFound
	Get(ctx context.Context, id string) (*models.AnalysisRecord, error)

	// History returns records newest first
	History(ctx context.Context, filter HistoryFilter) ([]*models.AnalysisRecord, error)

	// Close closes the storage connection
	Close() error
}

// HistoryFilter defines filtering options for history queries
type HistoryFilter struct {
	Symbol string
	Limit  int
	Offset int
}

// DefaultHistoryLimit applies when a filter has no positive limit
const DefaultHistoryLimit = 50
