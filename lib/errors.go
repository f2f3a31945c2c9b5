package lib

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound means the referenced device, pairing, account or endpoint does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means the write would break device or caregiver exclusivity.
	ErrConflict = errors.New("conflict")
	// ErrInternal means the store broke its own contract, e.g. a write that did not stick.
	ErrInternal = errors.New("internal error")
)

// DeliveryError is returned when the delivery capability fails or times out.
// The cooldown slot claimed for the attempt is kept.
type DeliveryError struct {
	RecipientID uint
	Platform    string
	Err         error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver alert to recipient %d via %q: %v", e.RecipientID, e.Platform, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// sqlite builds without the error translator surface the raw constraint message
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case isDuplicateKey(err):
		return fmt.Errorf("%s: %w", what, ErrConflict)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
