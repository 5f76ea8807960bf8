package repositories

import (
	"context"
	"fmt"
	"log"

	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/models"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/repositories/cache"

	"gorm.io/gorm"
)

type paymentRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

func NewPaymentRepository(db *gorm.DB, cacheService *cache.CacheService) PaymentRepository {
	return &paymentRepository{db: db, cache: cacheService}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	r.cachePayment(ctx, payment)
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	if r.cache != nil {
		if payment, err := r.cache.GetPayment(ctx, r.cache.GenerateKey("payment", "id", id)); err == nil {
			return payment, nil
		}
	}

	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	r.cachePayment(ctx, &payment)
	return &payment, nil
}

func (r *paymentRepository) GetByProviderRef(ctx context.Context, ref string) (*models.Payment, error) {
	if r.cache != nil {
		if payment, err := r.cache.GetPayment(ctx, r.cache.GenerateKey("payment", "ref", ref)); err == nil {
			return payment, nil
		}
	}

	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "provider_ref = ?", ref).Error; err != nil {
		return nil, err
	}
	r.cachePayment(ctx, &payment)
	return &payment, nil
}

func (r *paymentRepository) LatestPendingManual(ctx context.Context, buyerID int64) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? AND status = ? AND method IN ?",
			buyerID, models.StatusPending, []string{models.MethodCrypto, models.MethodRemitly}).
		Order("created_at DESC").
		First(&payment).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) TransitionStatus(ctx context.Context, id string, from []string, to string, set map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range set {
		updates[k] = v
	}

	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("failed to transition payment %s: %w", id, res.Error)
	}

	applied := res.RowsAffected == 1
	if applied {
		r.invalidate(ctx, id)
	}
	return applied, nil
}

func (r *paymentRepository) MarkDelivered(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ? AND delivered = ?", id, models.StatusVerified, false).
		Update("delivered", true)
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark payment %s delivered: %w", id, res.Error)
	}

	applied := res.RowsAffected == 1
	if applied {
		r.invalidate(ctx, id)
	}
	return applied, nil
}

func (r *paymentRepository) SetPromptMessage(ctx context.Context, id, msgID string) error {
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		Update("prompt_msg_id", msgID).Error
	if err != nil {
		return fmt.Errorf("failed to set prompt message for payment %s: %w", id, err)
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *paymentRepository) ListByStatus(ctx context.Context, status string, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) ListBuyers(ctx context.Context) ([]int64, error) {
	var buyers []int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Distinct("buyer_id").
		Pluck("buyer_id", &buyers).Error
	if err != nil {
		return nil, err
	}
	return buyers, nil
}

func (r *paymentRepository) SumVerified(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("status = ?", models.StatusVerified).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

func (r *paymentRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, rr := range rows {
		counts[rr.Status] = rr.Count
	}
	return counts, nil
}

func (r *paymentRepository) cachePayment(ctx context.Context, payment *models.Payment) {
	if r.cache == nil {
		return
	}
	if err := r.cache.CachePayment(ctx, payment); err != nil {
		log.Printf("failed to cache payment %s: %v", payment.ID, err)
	}
}

// invalidate drops the cached record after a write. The next read goes
// to the database, so stale status can never win a transition.
func (r *paymentRepository) invalidate(ctx context.Context, id string) {
	if r.cache == nil {
		return
	}
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return
	}
	if err := r.cache.InvalidatePayment(ctx, &payment); err != nil {
		log.Printf("failed to invalidate payment %s: %v", id, err)
	}
}
