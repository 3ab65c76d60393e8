package models

import "time"

// Generation records one successful QR generation. The payload itself is
// never stored since it may carry Wi-Fi passwords or contact details.
type Generation struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Session       string    `gorm:"size:64;index" json:"session,omitempty"`
	ContentType   string    `gorm:"size:20;not null;index" json:"content_type"`
	Size          int       `gorm:"not null" json:"size"`
	PayloadLength int       `gorm:"not null" json:"payload_length"`
	CreatedAt     time.Time `gorm:"not null;index" json:"created_at"`
}

// TableName specifies the table name for the Generation model
func (Generation) TableName() string {
	return "qr_generations"
}

// GenerationStats represents generation statistics
type GenerationStats struct {
	TotalGenerations int64            `json:"total_generations"`
	GenerationsToday int64            `json:"generations_today"`
	ByContentType    map[string]int64 `json:"by_content_type"`
}
