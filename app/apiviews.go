package app

import (
	"time"

	"github.com/fiffu/vitalwatch/lib/models"
)

type ReadingView struct {
	BPM       int    `json:"bpm"`
	UpdatedAt string `json:"updatedAt"`
}

type DeviceView struct {
	DeviceID string `json:"deviceId"`
}

type ElderView struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	DeviceID string `json:"deviceId"`
	BPM      *int   `json:"bpm"`
}

type CaregiverView struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (view ReadingView) From(entity *models.Reading) ReadingView {
	return ReadingView{
		BPM:       entity.BPM,
		UpdatedAt: isoformat(entity.UpdatedAt),
	}
}

func (view ElderView) From(entity *models.ElderProfile) ElderView {
	return ElderView{
		Name:     entity.Name,
		Phone:    entity.Phone,
		DeviceID: entity.DeviceID,
		BPM:      entity.BPM,
	}
}

func (view CaregiverView) From(entity *models.CaregiverProfile) CaregiverView {
	return CaregiverView{
		Name:  entity.Name,
		Phone: entity.Phone,
	}
}

func isoformat(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
