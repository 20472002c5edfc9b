package storage

import (
	"context"

	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
	"github.com/lcalzada-xor/vulnmap/internal/core/ports"
)

// Ensure interface compliance
var _ ports.RunRepository = (*SQLiteAdapter)(nil)

// SaveRun persists one loader run summary.
func (a *SQLiteAdapter) SaveRun(ctx context.Context, run domain.IngestRun) error {
	return a.db.WithContext(ctx).Save(&run).Error
}

// ListRuns returns the most recent runs, newest first.
func (a *SQLiteAdapter) ListRuns(ctx context.Context, limit int) ([]domain.IngestRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []domain.IngestRun
	err := a.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}
