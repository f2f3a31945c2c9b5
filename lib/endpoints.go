package lib

import (
	"context"
	"time"

	"github.com/fiffu/vitalwatch/lib/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type endpoints struct {
	log *zap.Logger
	db  *gorm.DB
	now func() time.Time
}

// UpsertEndpoint registers or replaces the recipient's delivery endpoint.
// Re-registering resets the cooldown, and a token already held by another recipient moves to this one.
func (svc *endpoints) UpsertEndpoint(ctx context.Context, recipientID uint, deliveryToken, platformHint, osVersion string) error {
	endpoint := &models.AlertEndpoint{
		RecipientID:   recipientID,
		DeliveryToken: deliveryToken,
		PlatformHint:  platformHint,
		OSVersion:     osVersion,
		LastActiveAt:  svc.now().UTC(),
	}

	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		evicted := tx.
			Where("delivery_token = ?", deliveryToken).
			Where("recipient_id <> ?", recipientID).
			Delete(&models.AlertEndpoint{})
		if err := evicted.Error; err != nil {
			return err
		}
		if evicted.RowsAffected > 0 {
			svc.log.Sugar().Infow("Moved delivery token to new recipient", "recipient_id", recipientID)
		}

		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "recipient_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"delivery_token", "platform_hint", "os_version", "last_active_at", "last_notified_at", "updated_at",
			}),
		}).Create(endpoint).Error
	})
	return translate(err, "upsert alert endpoint")
}

func (svc *endpoints) FindEndpoint(ctx context.Context, recipientID uint) (*models.AlertEndpoint, error) {
	endpoint := &models.AlertEndpoint{}
	tx := svc.db.WithContext(ctx).Where("recipient_id = ?", recipientID).First(endpoint)
	if err := tx.Error; err != nil {
		return nil, translate(err, "alert endpoint")
	}
	return endpoint, nil
}

func (svc *endpoints) RemoveEndpoint(ctx context.Context, recipientID uint) error {
	tx := svc.db.WithContext(ctx).Where("recipient_id = ?", recipientID).Delete(&models.AlertEndpoint{})
	if err := tx.Error; err != nil {
		return translate(err, "remove alert endpoint")
	}
	if tx.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "alert endpoint")
	}
	return nil
}

// ClaimCooldown stamps last_notified_at = now if the previous alert is older than window, and
// returns the claimed endpoint. It returns nil without error when the recipient has no endpoint
// or is still cooling down. The conditional update is the claim, so concurrent callers for the
// same recipient get at most one endpoint per window.
func (svc *endpoints) ClaimCooldown(ctx context.Context, recipientID uint, now time.Time, window time.Duration) (*models.AlertEndpoint, error) {
	now = now.UTC()
	cutoff := now.Add(-window)

	var claimed *models.AlertEndpoint
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.AlertEndpoint{}).
			Where("recipient_id = ?", recipientID).
			Where("(last_notified_at IS NULL OR last_notified_at < ?)", cutoff).
			Update("last_notified_at", now)
		if err := res.Error; err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return nil
		}

		endpoint := &models.AlertEndpoint{}
		if err := tx.Where("recipient_id = ?", recipientID).First(endpoint).Error; err != nil {
			return err
		}
		claimed = endpoint
		return nil
	})
	if err != nil {
		return nil, translate(err, "claim alert cooldown")
	}
	return claimed, nil
}
