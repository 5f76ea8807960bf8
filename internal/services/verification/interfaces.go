package verification

import (
	"context"
	"time"

	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/models"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/provider"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/timeout"
)

// Outcome reports how a trigger was absorbed. Conflicts and ignores are
// not errors: webhooks replay and admins double-click.
type Outcome string

const (
	// OutcomeApplied means this trigger won and the transition committed.
	OutcomeApplied Outcome = "applied"
	// OutcomeConflict means the record was not in the expected source
	// state; the trigger is a no-op.
	OutcomeConflict Outcome = "conflict"
	// OutcomeIgnored means no matching record exists.
	OutcomeIgnored Outcome = "ignored"
)

// ProviderClient creates charge requests with the payment provider.
type ProviderClient interface {
	CreateQRCharge(ctx context.Context, amount float64, buyerID int64, bundle string) (*provider.QRCharge, error)
}

// Timer is the countdown scheduler consumed by the router.
type Timer interface {
	Start(id string, d time.Duration, onTick timeout.TickFunc) error
	Cancel(id string)
}

// Config carries the static knobs of the router.
type Config struct {
	AdminID       int64
	UPITimeout    time.Duration
	ManualTimeout time.Duration
}

// CreateResult is returned from CreatePayment. QRPayload is set for
// automated payments, Instructions for manual ones.
type CreateResult struct {
	Payment      *models.Payment
	QRPayload    string
	Instructions string
}

// Service normalizes the three resolution triggers (provider credit,
// admin decision, timeout) into idempotent state transitions.
type Service interface {
	CreatePayment(ctx context.Context, buyerID int64, bundle, method string) (*CreateResult, error)
	SetPrompt(ctx context.Context, paymentID, msgID string) error
	HandleProviderCredit(ctx context.Context, providerRef string) (Outcome, error)
	AttachProof(ctx context.Context, buyerID int64, proofRef string) (*models.Payment, Outcome, error)
	Approve(ctx context.Context, actorID int64, paymentID string) (Outcome, error)
	Decline(ctx context.Context, actorID int64, paymentID string) (Outcome, error)
	Expire(ctx context.Context, paymentID string) (Outcome, error)
	Redispatch(ctx context.Context, actorID int64, paymentID string) (Outcome, error)
}
