package lib

import (
	"context"
	"errors"
	"time"

	"github.com/fiffu/vitalwatch/senders"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CooldownWindow is the minimum gap between two alerts delivered to one recipient.
const CooldownWindow = 30 * time.Second

type dispatcher struct {
	log       *zap.Logger
	endpoints *endpoints
	senders   senders.Registry
	timeout   time.Duration
	now       func() time.Time
}

// Dispatch sends the heart-rate alert to the recipient unless they have no endpoint or were
// alerted within CooldownWindow; both cases return false and no error.
// The slot is claimed before sending and stays claimed if the send fails.
func (d *dispatcher) Dispatch(ctx context.Context, recipientID uint, subjectName string, bpm int) (bool, error) {
	dispatchID := uuid.NewString()
	log := d.log.Sugar().With("dispatch_id", dispatchID, "recipient_id", recipientID)

	endpoint, err := d.endpoints.ClaimCooldown(ctx, recipientID, d.now(), CooldownWindow)
	if err != nil {
		return false, err
	}
	if endpoint == nil {
		log.Debugw("Alert suppressed", "bpm", bpm)
		return false, nil
	}

	sender, ok := d.senders[endpoint.PlatformHint]
	if !ok {
		err := &DeliveryError{recipientID, endpoint.PlatformHint, errors.New("unsupported platform")}
		log.Errorw("Failed to send alert", "err", err)
		return false, err
	}

	msg := &senders.AlertFormat{SubjectName: subjectName, BPM: bpm}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	id, err := sender.Send(ctx, endpoint.DeliveryToken, msg.Title(), msg.Body())
	if err != nil {
		log.Errorw("Failed to send alert", "platform", endpoint.PlatformHint, "err", err)
		return false, &DeliveryError{recipientID, endpoint.PlatformHint, err}
	}

	log.Infow("Sent alert", "platform", endpoint.PlatformHint, "message_id", id, "bpm", bpm)
	return true, nil
}
