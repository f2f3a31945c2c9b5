package models

import "gorm.io/gorm"

type Role string

const (
	RoleElder     Role = "elder"
	RoleCaregiver Role = "caregiver"
)

func (r Role) Valid() bool {
	return r == RoleElder || r == RoleCaregiver
}

// Account is the slice of a user profile the pairing and alerting code reads.
// Credentials live elsewhere.
type Account struct {
	gorm.Model
	Name  string
	Phone string
	Role  Role `gorm:"index"`
}

// Identity is the authenticated caller handed to every operation.
type Identity struct {
	AccountID uint
	Role      Role
}
