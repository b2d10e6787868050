package models

// HistoryRecord is one append-only snapshot of the scalar metrics reported by a host.
type HistoryRecord struct {
	ID      uint    `gorm:"primaryKey;autoIncrement"`
	IP      string  `gorm:"not null;size:64;index:idx_history_ip_time"`
	CPU     float64 `gorm:"column:cpu"`
	Memory  float64
	Disk    float64
	Load    float64
	NetRx   float64 `gorm:"column:net_rx"`
	NetTx   float64 `gorm:"column:net_tx"`
	WebTime float64 `gorm:"column:web_time"`
	Time    int64   `gorm:"column:time;not null;index:idx_history_ip_time"` // unix millis
}

func (HistoryRecord) TableName() string {
	return "history"
}
