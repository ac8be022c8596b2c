// Package account resolves local accounts by MSISDN, reading through
// the cache before hitting the database.
package account

import (
	"context"
	"errors"
	"fmt"

	"bulkpay/internal/models"
	"bulkpay/internal/repositories"
	"bulkpay/internal/utils/logger"
)

var ErrAccountNotFound = repositories.ErrAccountNotFound

// Cache is the subset of cache.CacheService used for account lookups.
type Cache interface {
	CacheAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, msisdn string) (*models.Account, error)
	InvalidateAccount(ctx context.Context, msisdn string) error
}

type Service interface {
	GetByMSISDN(ctx context.Context, msisdn string) (*models.Account, error)
	Exists(ctx context.Context, msisdn string) (bool, error)
	Create(ctx context.Context, msisdn, displayName string) (*models.Account, error)
}

type service struct {
	repo  repositories.AccountRepository
	cache Cache
}

// NewService builds the lookup service. cache may be nil.
func NewService(repo repositories.AccountRepository, cache Cache) Service {
	return &service{repo: repo, cache: cache}
}

func (s *service) GetByMSISDN(ctx context.Context, msisdn string) (*models.Account, error) {
	if s.cache != nil {
		cached, err := s.cache.GetAccount(ctx, msisdn)
		if err != nil {
			logger.Warning("account cache read failed for %s: %v", msisdn, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	account, err := s.repo.GetByMSISDN(ctx, msisdn)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheAccount(ctx, account); err != nil {
			logger.Warning("failed to cache account %s: %v", msisdn, err)
		}
	}
	return account, nil
}

func (s *service) Exists(ctx context.Context, msisdn string) (bool, error) {
	_, err := s.GetByMSISDN(ctx, msisdn)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrAccountNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *service) Create(ctx context.Context, msisdn, displayName string) (*models.Account, error) {
	if msisdn == "" {
		return nil, fmt.Errorf("msisdn is required")
	}
	account := &models.Account{MSISDN: msisdn, DisplayName: displayName}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateAccount(ctx, msisdn)
	}
	return account, nil
}
