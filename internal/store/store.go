// Package store persists the per-host Latest row and the append-only History log.
package store

import (
	"context"

	"github.com/monocle-dev/fleetwatch/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// RecordReport appends history and upserts the latest row for the same host in
// one transaction, so the two views cannot diverge on a failed write.
func (s *Store) RecordReport(ctx context.Context, history *models.HistoryRecord, latest *models.LatestStatus) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(history).Error; err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ip"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "last_seen", "response_time", "metrics", "services"}),
		}).Create(latest).Error
	})
}

// Latest returns every current row in scan order.
func (s *Store) Latest(ctx context.Context) ([]models.LatestStatus, error) {
	var rows []models.LatestStatus

	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// History returns the records for ip in ascending write order.
func (s *Store) History(ctx context.Context, ip string) ([]models.HistoryRecord, error) {
	var rows []models.HistoryRecord

	err := s.db.WithContext(ctx).
		Where("ip = ?", ip).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "time"}},
			{Column: clause.Column{Name: "id"}},
		}}).
		Find(&rows).Error

	if err != nil {
		return nil, err
	}

	return rows, nil
}

// DeleteHost removes the latest row and all history for ip. Deleting an unknown
// host is not an error.
func (s *Store) DeleteHost(ctx context.Context, ip string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ip = ?", ip).Delete(&models.LatestStatus{}).Error; err != nil {
			return err
		}

		return tx.Where("ip = ?", ip).Delete(&models.HistoryRecord{}).Error
	})
}
