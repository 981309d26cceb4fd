// Package gorm provides GORM-based database operations for promptlean.
package gorm

import (
	"context"
	"fmt"
	"time"

	"github.com/promptlean/promptlean/pkg/models"
)

// HistoryStore provides analysis- and execution-history database operations.
type HistoryStore struct {
	store *Store
}

// NewHistoryStore creates a new history store.
func NewHistoryStore(store *Store) *HistoryStore {
	return &HistoryStore{store: store}
}

// AddAnalysis persists one analysis event and returns the stored record.
// Savings is computed here, once; readers never derive it from the token
// counts again.
func (s *HistoryStore) AddAnalysis(ctx context.Context, draft models.AnalysisDraft) (*models.AnalysisRecord, error) {
	row := &AnalysisRow{
		Username:            draft.Username,
		TimestampEpoch:      time.Now().UnixMilli(),
		OriginalTokenCount:  draft.OriginalTokenCount,
		OptimizedTokenCount: draft.OptimizedTokenCount,
		Savings:             draft.Savings(),
	}

	if err := s.store.DB.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("add analysis record: %w", err)
	}
	return toModelAnalysis(row), nil
}

// GetAllAnalysis returns all analysis records, unsorted. Callers sort if
// they need an order.
func (s *HistoryStore) GetAllAnalysis(ctx context.Context) ([]*models.AnalysisRecord, error) {
	var rows []AnalysisRow
	if err := s.store.DB.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list analysis records: %w", err)
	}

	records := make([]*models.AnalysisRecord, len(rows))
	for i := range rows {
		records[i] = toModelAnalysis(&rows[i])
	}
	return records, nil
}

// AddExecution persists one execution event and returns the stored record.
func (s *HistoryStore) AddExecution(ctx context.Context, draft models.ExecutionDraft) (*models.ExecutionRecord, error) {
	row := &ExecutionRow{
		Username:       draft.Username,
		TimestampEpoch: time.Now().UnixMilli(),
		PromptType:     draft.PromptType,
		PromptText:     draft.PromptText,
		ResultText:     draft.ResultText,
	}

	if err := s.store.DB.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("add execution record: %w", err)
	}
	return toModelExecution(row), nil
}

// GetAllExecutions returns all execution records, unsorted.
func (s *HistoryStore) GetAllExecutions(ctx context.Context) ([]*models.ExecutionRecord, error) {
	var rows []ExecutionRow
	if err := s.store.DB.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list execution records: %w", err)
	}

	records := make([]*models.ExecutionRecord, len(rows))
	for i := range rows {
		records[i] = toModelExecution(&rows[i])
	}
	return records, nil
}
