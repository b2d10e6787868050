package kv

import (
	"context"
	"errors"
	"time"

	"github.com/monocle-dev/fleetwatch/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps entries in the kv_entries table of the main database.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry models.KVEntry

	err := s.db.WithContext(ctx).Where(keyIs(key)).Take(&entry).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return entry.Value, true, nil
}

func (s *GormStore) Put(ctx context.Context, key string, value []byte) error {
	entry := models.KVEntry{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where(keyIs(key)).Delete(&models.KVEntry{}).Error
}

// keyIs quotes the column name; "key" is reserved in MySQL.
func keyIs(key string) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: "key"}, Value: key}
}
