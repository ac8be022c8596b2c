package cache

import (
	"context"
	"fmt"
	"time"

	"bulkpay/internal/models"

	"github.com/goccy/go-json"
)

// Store is the byte-level backend behind CacheService.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}

type CacheService struct {
	store Store
	ttl   time.Duration
}

func NewCacheService(store Store, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		store: store,
		ttl:   defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.store.Set(ctx, key, data, ttl)
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, found, err := s.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}
	if !found {
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.store.Delete(ctx, keys...)
}

// Key generation
func (s *CacheService) GenerateKey(entityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entityType, keyType, value)
}

// Account caching
func (s *CacheService) CacheAccount(ctx context.Context, account *models.Account) error {
	if account == nil {
		return fmt.Errorf("cannot cache nil account")
	}
	return s.Set(ctx, s.GenerateKey("account", "msisdn", account.MSISDN), account)
}

// GetAccount returns (nil, nil) on a cache miss.
func (s *CacheService) GetAccount(ctx context.Context, msisdn string) (*models.Account, error) {
	var account models.Account
	found, err := s.Get(ctx, s.GenerateKey("account", "msisdn", msisdn), &account)
	if err != nil || !found {
		return nil, err
	}
	return &account, nil
}

func (s *CacheService) InvalidateAccount(ctx context.Context, msisdn string) error {
	return s.Delete(ctx, s.GenerateKey("account", "msisdn", msisdn))
}

// Ping checks the backend is reachable.
func (s *CacheService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Close closes the backend connection
func (s *CacheService) Close() error {
	return s.store.Close()
}
