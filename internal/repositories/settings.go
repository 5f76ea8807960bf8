package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/models"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/repositories/cache"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository persists the runtime-updatable configuration:
// the price table, the per-bundle access links and the manual payment
// instructions. Reads fall back to the provided defaults when a key has
// never been written.
type SettingsRepository interface {
	Prices(ctx context.Context) (models.Prices, error)
	SavePrices(ctx context.Context, prices models.Prices) error
	Links(ctx context.Context) (models.Links, error)
	SaveLinks(ctx context.Context, links models.Links) error
	PaymentInfo(ctx context.Context) (models.PaymentInfo, error)
	SavePaymentInfo(ctx context.Context, info models.PaymentInfo) error
}

type Defaults struct {
	Prices      models.Prices
	Links       models.Links
	PaymentInfo models.PaymentInfo
}

type settingsRepository struct {
	db       *gorm.DB
	cache    *cache.CacheService
	defaults Defaults
}

func NewSettingsRepository(db *gorm.DB, cacheService *cache.CacheService, defaults Defaults) SettingsRepository {
	return &settingsRepository{db: db, cache: cacheService, defaults: defaults}
}

func (r *settingsRepository) Prices(ctx context.Context) (models.Prices, error) {
	var prices models.Prices
	found, err := r.load(ctx, models.SettingPrices, &prices)
	if err != nil {
		return nil, err
	}
	if !found {
		return r.defaults.Prices, nil
	}
	return prices, nil
}

func (r *settingsRepository) SavePrices(ctx context.Context, prices models.Prices) error {
	return r.save(ctx, models.SettingPrices, prices)
}

func (r *settingsRepository) Links(ctx context.Context) (models.Links, error) {
	var links models.Links
	found, err := r.load(ctx, models.SettingLinks, &links)
	if err != nil {
		return nil, err
	}
	if !found {
		return r.defaults.Links, nil
	}
	return links, nil
}

func (r *settingsRepository) SaveLinks(ctx context.Context, links models.Links) error {
	return r.save(ctx, models.SettingLinks, links)
}

func (r *settingsRepository) PaymentInfo(ctx context.Context) (models.PaymentInfo, error) {
	var info models.PaymentInfo
	found, err := r.load(ctx, models.SettingPaymentInfo, &info)
	if err != nil {
		return nil, err
	}
	if !found {
		return r.defaults.PaymentInfo, nil
	}
	return info, nil
}

func (r *settingsRepository) SavePaymentInfo(ctx context.Context, info models.PaymentInfo) error {
	return r.save(ctx, models.SettingPaymentInfo, info)
}

func (r *settingsRepository) load(ctx context.Context, key string, dest interface{}) (bool, error) {
	if r.cache != nil {
		if found, err := r.cache.GetSetting(ctx, key, dest); err == nil && found {
			return true, nil
		}
	}

	var setting models.Setting
	err := r.db.WithContext(ctx).First(&setting, "key = ?", key).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to load setting %s: %w", key, err)
	}

	raw, err := json.Marshal(setting.Value)
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode setting %s: %w", key, err)
	}

	if r.cache != nil {
		if err := r.cache.CacheSetting(ctx, key, dest); err != nil {
			log.Printf("failed to cache setting %s: %v", key, err)
		}
	}
	return true, nil
}

func (r *settingsRepository) save(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var jsonValue models.JSON
	if err := json.Unmarshal(raw, &jsonValue); err != nil {
		return err
	}

	setting := models.Setting{Key: key, Value: jsonValue}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}

	if r.cache != nil {
		if err := r.cache.InvalidateSetting(ctx, key); err != nil {
			log.Printf("failed to invalidate setting %s: %v", key, err)
		}
	}
	return nil
}
