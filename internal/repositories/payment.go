package repositories

import (
	"context"

	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/models"
)

// PaymentRepository is the single serialization point for payment
// records. TransitionStatus and MarkDelivered are guarded updates: the
// write applies only if the record is still in one of the expected
// source states, so racing triggers are arbitrated by the store rather
// than by the callers.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	GetByProviderRef(ctx context.Context, ref string) (*models.Payment, error)
	// LatestPendingManual returns the buyer's most recent pending
	// manual-method record, or nil when there is none.
	LatestPendingManual(ctx context.Context, buyerID int64) (*models.Payment, error)
	// TransitionStatus atomically moves the record from one of the
	// given source statuses to the target status, applying extra column
	// updates in the same write. It returns false when the record was
	// not in a source status (the caller lost the race or replayed).
	TransitionStatus(ctx context.Context, id string, from []string, to string, set map[string]interface{}) (bool, error)
	// MarkDelivered flips the delivered flag, only for verified and
	// not yet delivered records.
	MarkDelivered(ctx context.Context, id string) (bool, error)
	SetPromptMessage(ctx context.Context, id, msgID string) error
	ListByStatus(ctx context.Context, status string, limit int) ([]models.Payment, error)
	ListBuyers(ctx context.Context) ([]int64, error)
	SumVerified(ctx context.Context) (float64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}
