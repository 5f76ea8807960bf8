package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/models"

	"github.com/redis/go-redis/v9"
)

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
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
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// Key generation
func (s *CacheService) GenerateKey(entityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entityType, keyType, value)
}

// Payment caching. Records are cached by id and, for automated payments,
// by provider ref since the webhook looks them up that way.
func (s *CacheService) CachePayment(ctx context.Context, payment *models.Payment) error {
	if payment == nil {
		return errors.New("cannot cache nil payment")
	}

	keys := []string{s.GenerateKey("payment", "id", payment.ID)}
	if payment.ProviderRef != nil {
		keys = append(keys, s.GenerateKey("payment", "ref", *payment.ProviderRef))
	}

	for _, key := range keys {
		if err := s.Set(ctx, key, payment); err != nil {
			return err
		}
	}
	return nil
}

func (s *CacheService) GetPayment(ctx context.Context, key string) (*models.Payment, error) {
	var payment models.Payment
	found, err := s.Get(ctx, key, &payment)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.New("payment not found in cache")
	}
	return &payment, nil
}

func (s *CacheService) InvalidatePayment(ctx context.Context, payment *models.Payment) error {
	if payment == nil {
		return nil
	}
	keys := []string{s.GenerateKey("payment", "id", payment.ID)}
	if payment.ProviderRef != nil {
		keys = append(keys, s.GenerateKey("payment", "ref", *payment.ProviderRef))
	}
	return s.Delete(ctx, keys...)
}

// Settings caching
func (s *CacheService) CacheSetting(ctx context.Context, key string, value interface{}) error {
	return s.Set(ctx, s.GenerateKey("setting", "key", key), value)
}

func (s *CacheService) GetSetting(ctx context.Context, key string, dest interface{}) (bool, error) {
	return s.Get(ctx, s.GenerateKey("setting", "key", key), dest)
}

func (s *CacheService) InvalidateSetting(ctx context.Context, key string) error {
	return s.Delete(ctx, s.GenerateKey("setting", "key", key))
}

func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

func (s *CacheService) Close() error {
	return s.client.Close()
}
