package models

import "time"

// Reading is what vital ingest hands back: the stored value plus who, if anyone, should hear about it.
type Reading struct {
	BPM                  int
	PairedCaregiverID    *uint
	RecipientDisplayName string
	UpdatedAt            time.Time
}

type ElderProfile struct {
	Name     string
	Phone    string
	DeviceID string
	BPM      *int
}

type CaregiverProfile struct {
	Name  string
	Phone string
}
