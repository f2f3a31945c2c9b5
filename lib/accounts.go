package lib

import (
	"context"
	"fmt"

	"github.com/fiffu/vitalwatch/lib/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accounts struct {
	log *zap.Logger
	db  *gorm.DB
}

// CreateAccount stores a new account. Elders get their (empty) ElderDevice row in the same transaction.
func (svc *accounts) CreateAccount(ctx context.Context, name, phone string, role models.Role) (*models.Account, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	account := &models.Account{Name: name, Phone: phone, Role: role}
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Returning{}).Create(account).Error; err != nil {
			return err
		}
		if role != models.RoleElder {
			return nil
		}
		return tx.Create(&models.ElderDevice{ElderID: account.ID}).Error
	})
	if err != nil {
		return nil, translate(err, "create account")
	}

	svc.log.Sugar().Infof("Created %s account %v (%s)", role, account.ID, name)
	return account, nil
}

func (svc *accounts) FindAccount(ctx context.Context, accountID uint) (*models.Account, error) {
	account := &models.Account{}
	if err := svc.db.WithContext(ctx).First(account, accountID).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("account %d", accountID))
	}
	return account, nil
}
