package models

import (
	"gorm.io/datatypes"
)

// LatestStatus is the single current-state row kept per host. Liveness is
// derived from LastSeen on read and never stored.
type LatestStatus struct {
	IP           string         `gorm:"primaryKey;size:64"`
	Name         string         `gorm:"not null;default:''"`
	LastSeen     int64          `gorm:"not null;index"` // unix millis, server clock
	ResponseTime float64        `gorm:"not null;default:0"`
	Metrics      datatypes.JSON
	Services     datatypes.JSON
}

func (LatestStatus) TableName() string {
	return "latest_status"
}
