package models

import "time"

// KVEntry backs the key-value registry when no external KV bucket is configured.
type KVEntry struct {
	Key       string `gorm:"primaryKey;size:255"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
