package lib

import (
	"context"
	"fmt"
	"time"

	"github.com/fiffu/vitalwatch/lib/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AlertThresholdBPM is the reading above which a paired caregiver is alerted.
const AlertThresholdBPM = 120

type vitals struct {
	log        *zap.Logger
	db         *gorm.DB
	dispatcher *dispatcher
	now        func() time.Time
}

// RecordReading overwrites the elder's last reading and returns it with the current pairing.
// bpm is expected to be validated by the caller.
func (svc *vitals) RecordReading(ctx context.Context, elderID uint, bpm int) (*models.Reading, error) {
	now := svc.now().UTC()

	device := &models.ElderDevice{}
	elder := &models.Account{}
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ElderDevice{}).
			Where("elder_id = ?", elderID).
			Updates(map[string]any{"last_reading": bpm, "last_reading_at": now})
		if err := res.Error; err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("elder_id = ?", elderID).First(device).Error; err != nil {
			return err
		}
		return tx.First(elder, elderID).Error
	})
	if err != nil {
		return nil, translate(err, fmt.Sprintf("record reading for elder %d", elderID))
	}

	if !device.LastReading.Valid || !device.LastReadingAt.Valid {
		svc.log.Sugar().Errorw("Reading was written but not read back", "elder_id", elderID)
		return nil, fmt.Errorf("record reading for elder %d: %w", elderID, ErrInternal)
	}

	return &models.Reading{
		BPM:                  int(device.LastReading.Int64),
		PairedCaregiverID:    device.CaregiverID(),
		RecipientDisplayName: elder.Name,
		UpdatedAt:            device.LastReadingAt.Time,
	}, nil
}

// Ingest records the reading and alerts the paired caregiver when it is above the threshold.
// A failed delivery fails the whole call.
func (svc *vitals) Ingest(ctx context.Context, elderID uint, bpm int) (*models.Reading, error) {
	reading, err := svc.RecordReading(ctx, elderID, bpm)
	if err != nil {
		return nil, err
	}

	if bpm <= AlertThresholdBPM || reading.PairedCaregiverID == nil {
		return reading, nil
	}

	if _, err := svc.dispatcher.Dispatch(ctx, *reading.PairedCaregiverID, reading.RecipientDisplayName, bpm); err != nil {
		return nil, err
	}
	return reading, nil
}
