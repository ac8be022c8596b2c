package repositories

import (
	"context"
	"errors"
	"fmt"

	"bulkpay/internal/models"

	"gorm.io/gorm"
)

var ErrAccountNotFound = errors.New("account not found")

// AccountRepository is the local account store keyed by MSISDN.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByMSISDN(ctx context.Context, msisdn string) (*models.Account, error)
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepository) GetByMSISDN(ctx context.Context, msisdn string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("msisdn = ?", msisdn).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}
