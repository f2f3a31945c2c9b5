package lib

import (
	"context"
	"fmt"

	"github.com/fiffu/vitalwatch/lib/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type pairing struct {
	log *zap.Logger
	db  *gorm.DB
}

func (svc *pairing) FindByDevice(ctx context.Context, deviceID string) (*models.ElderDevice, error) {
	device := &models.ElderDevice{}
	tx := svc.db.WithContext(ctx).Where("device_id = ?", deviceID).First(device)
	if err := tx.Error; err != nil {
		return nil, translate(err, fmt.Sprintf("device %s", deviceID))
	}
	return device, nil
}

// Pair links an unpaired device to the caregiver. The write only matches a row whose caregiver
// slot is empty, so of several racing caregivers exactly one sees a row affected.
// Pairing an already paired device is a conflict even for the caregiver holding it.
func (svc *pairing) Pair(ctx context.Context, deviceID string, caregiverID uint) (string, error) {
	tx := svc.db.WithContext(ctx).
		Model(&models.ElderDevice{}).
		Where("device_id = ?", deviceID).
		Where("paired_caregiver_id IS NULL").
		Update("paired_caregiver_id", caregiverID)
	if err := tx.Error; err != nil {
		// unique index on paired_caregiver_id: caregiver already holds another device
		return "", translate(err, fmt.Sprintf("pair caregiver %d", caregiverID))
	}

	if tx.RowsAffected == 1 {
		svc.log.Sugar().Infow("Paired device", "device_id", deviceID, "caregiver_id", caregiverID)
		return deviceID, nil
	}

	if _, err := svc.FindByDevice(ctx, deviceID); err != nil {
		return "", err
	}
	return "", fmt.Errorf("device %s is already paired: %w", deviceID, ErrConflict)
}

// Unpair releases whichever device the caregiver holds. Not being paired is fine.
func (svc *pairing) Unpair(ctx context.Context, caregiverID uint) error {
	tx := svc.db.WithContext(ctx).
		Model(&models.ElderDevice{}).
		Where("paired_caregiver_id = ?", caregiverID).
		Update("paired_caregiver_id", gorm.Expr("NULL"))
	if err := tx.Error; err != nil {
		return translate(err, fmt.Sprintf("unpair caregiver %d", caregiverID))
	}
	if tx.RowsAffected > 0 {
		svc.log.Sugar().Infow("Unpaired caregiver", "caregiver_id", caregiverID)
	}
	return nil
}

func (svc *pairing) ResolveDeviceForCaregiver(ctx context.Context, caregiverID uint) (string, error) {
	device, err := svc.deviceForCaregiver(ctx, caregiverID)
	if err != nil {
		return "", err
	}
	return device.DeviceID.String, nil
}

func (svc *pairing) ResolveDeviceForElder(ctx context.Context, elderID uint) (string, error) {
	device, err := svc.deviceForElder(ctx, elderID)
	if err != nil {
		return "", err
	}
	if !device.DeviceID.Valid {
		return "", fmt.Errorf("elder %d has no registered device: %w", elderID, ErrNotFound)
	}
	return device.DeviceID.String, nil
}

// RegisterDevice sets the elder's device id. Another elder already owning the id is a conflict.
// An existing pairing carries over to the new id.
func (svc *pairing) RegisterDevice(ctx context.Context, elderID uint, deviceID string) (string, error) {
	tx := svc.db.WithContext(ctx).
		Model(&models.ElderDevice{}).
		Where("elder_id = ?", elderID).
		Update("device_id", deviceID)
	if err := tx.Error; err != nil {
		return "", translate(err, fmt.Sprintf("register device %s", deviceID))
	}
	if tx.RowsAffected == 0 {
		return "", fmt.Errorf("elder %d: %w", elderID, ErrNotFound)
	}

	svc.log.Sugar().Infow("Registered device", "elder_id", elderID, "device_id", deviceID)
	return deviceID, nil
}

// RemoveDevice drops the elder's device together with its pairing and last reading.
func (svc *pairing) RemoveDevice(ctx context.Context, elderID uint) error {
	tx := svc.db.WithContext(ctx).
		Model(&models.ElderDevice{}).
		Where("elder_id = ?", elderID).
		Updates(map[string]any{
			"device_id":           gorm.Expr("NULL"),
			"paired_caregiver_id": gorm.Expr("NULL"),
			"last_reading":        gorm.Expr("NULL"),
			"last_reading_at":     gorm.Expr("NULL"),
		})
	if err := tx.Error; err != nil {
		return translate(err, fmt.Sprintf("remove device of elder %d", elderID))
	}
	svc.log.Sugar().Infow("Removed device", "elder_id", elderID)
	return nil
}

// LinkedElder describes the elder whose device the caregiver is paired to.
func (svc *pairing) LinkedElder(ctx context.Context, caregiverID uint) (*models.ElderProfile, error) {
	device, err := svc.deviceForCaregiver(ctx, caregiverID)
	if err != nil {
		return nil, err
	}

	elder := &models.Account{}
	if err := svc.db.WithContext(ctx).First(elder, device.ElderID).Error; err != nil {
		return nil, svc.internal(err, "account of paired elder", "elder_id", device.ElderID)
	}

	profile := &models.ElderProfile{
		Name:     elder.Name,
		Phone:    elder.Phone,
		DeviceID: device.DeviceID.String,
	}
	if device.LastReading.Valid {
		bpm := int(device.LastReading.Int64)
		profile.BPM = &bpm
	}
	return profile, nil
}

// LinkedCaregiver describes the caregiver paired to the elder's device.
func (svc *pairing) LinkedCaregiver(ctx context.Context, elderID uint) (*models.CaregiverProfile, error) {
	device, err := svc.deviceForElder(ctx, elderID)
	if err != nil {
		return nil, err
	}
	if !device.Paired() {
		return nil, fmt.Errorf("elder %d has no caregiver: %w", elderID, ErrNotFound)
	}

	caregiver := &models.Account{}
	if err := svc.db.WithContext(ctx).First(caregiver, device.PairedCaregiverID.Int64).Error; err != nil {
		return nil, svc.internal(err, "account of paired caregiver", "caregiver_id", device.PairedCaregiverID.Int64)
	}
	return &models.CaregiverProfile{Name: caregiver.Name, Phone: caregiver.Phone}, nil
}

func (svc *pairing) deviceForCaregiver(ctx context.Context, caregiverID uint) (*models.ElderDevice, error) {
	device := &models.ElderDevice{}
	tx := svc.db.WithContext(ctx).Where("paired_caregiver_id = ?", caregiverID).First(device)
	if err := tx.Error; err != nil {
		return nil, translate(err, fmt.Sprintf("device paired to caregiver %d", caregiverID))
	}
	return device, nil
}

func (svc *pairing) deviceForElder(ctx context.Context, elderID uint) (*models.ElderDevice, error) {
	device := &models.ElderDevice{}
	tx := svc.db.WithContext(ctx).Where("elder_id = ?", elderID).First(device)
	if err := tx.Error; err != nil {
		return nil, translate(err, fmt.Sprintf("device of elder %d", elderID))
	}
	return device, nil
}

// internal reports a row that must exist but does not.
func (svc *pairing) internal(err error, what string, kvs ...any) error {
	svc.log.Sugar().Errorw("Store contract violated: "+what, append(kvs, "err", err)...)
	return fmt.Errorf("%s: %w", what, ErrInternal)
}
