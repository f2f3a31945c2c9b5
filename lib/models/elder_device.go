package models

import (
	"database/sql"
	"time"
)

// ElderDevice holds an elder's monitoring device, its pairing and the latest reading.
// A NULL paired_caregiver_id means the device is unpaired; the unique index on it
// keeps a caregiver from being paired to more than one device.
type ElderDevice struct {
	ElderID           uint           `gorm:"primaryKey;autoIncrement:false"`
	DeviceID          sql.NullString `gorm:"uniqueIndex;size:32"`
	PairedCaregiverID sql.NullInt64  `gorm:"uniqueIndex"`
	LastReading       sql.NullInt64
	LastReadingAt     sql.NullTime
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (d *ElderDevice) Paired() bool {
	return d.PairedCaregiverID.Valid
}

// CaregiverID returns the paired caregiver, or nil when unpaired.
func (d *ElderDevice) CaregiverID() *uint {
	if !d.PairedCaregiverID.Valid {
		return nil
	}
	id := uint(d.PairedCaregiverID.Int64)
	return &id
}
