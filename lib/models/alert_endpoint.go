package models

import (
	"database/sql"
	"time"
)

// AlertEndpoint is where alerts for a recipient are delivered.
// LastNotifiedAt is the cooldown anchor; it is only written by a successful cooldown claim
// or cleared when the recipient re-registers.
type AlertEndpoint struct {
	RecipientID    uint   `gorm:"primaryKey;autoIncrement:false"`
	DeliveryToken  string `gorm:"uniqueIndex;size:255;not null"`
	PlatformHint   string `gorm:"size:16"`
	OSVersion      string `gorm:"size:32"`
	LastActiveAt   time.Time
	LastNotifiedAt sql.NullTime
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
