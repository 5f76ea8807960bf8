// Package verification is the state machine at the center of the
// system. A payment leaves pending or review through exactly one of
// three triggers; every transition is committed with a guarded update
// in the repository, so replays and lost races degrade to no-ops.
package verification

import (
	"context"
	"fmt"
	"log"
	"time"

	domainerrors "github.com/Akash604-crypto/telegram-payment-bot-api/internal/errors"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/models"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/repositories"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/dispatch"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/notify"

	"github.com/google/uuid"
)

type service struct {
	cfg        Config
	repo       repositories.PaymentRepository
	settings   repositories.SettingsRepository
	provider   ProviderClient
	dispatcher dispatch.Service
	timers     Timer
	notifier   notify.Notifier
}

// NewService wires the router. All dependencies are required.
func NewService(cfg Config, repo repositories.PaymentRepository, settings repositories.SettingsRepository, providerClient ProviderClient, dispatcher dispatch.Service, timers Timer, notifier notify.Notifier) Service {
	if repo == nil {
		panic("repo is required")
	}
	if settings == nil {
		panic("settings is required")
	}
	if providerClient == nil {
		panic("provider client is required")
	}
	if dispatcher == nil {
		panic("dispatcher is required")
	}
	if timers == nil {
		panic("timer is required")
	}
	if notifier == nil {
		panic("notifier is required")
	}
	if cfg.UPITimeout == 0 {
		cfg.UPITimeout = 10 * time.Minute
	}
	if cfg.ManualTimeout == 0 {
		cfg.ManualTimeout = 30 * time.Minute
	}

	return &service{
		cfg:        cfg,
		repo:       repo,
		settings:   settings,
		provider:   providerClient,
		dispatcher: dispatcher,
		timers:     timers,
		notifier:   notifier,
	}
}

func (s *service) CreatePayment(ctx context.Context, buyerID int64, bundle, method string) (*CreateResult, error) {
	if !models.ValidMethod(method) {
		return nil, domainerrors.ErrUnknownMethod
	}

	prices, err := s.settings.Prices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load prices: %w", err)
	}
	amount, currency, ok := prices.Amount(bundle, method)
	if !ok {
		return nil, domainerrors.ErrUnknownBundle
	}

	payment := &models.Payment{
		ID:       uuid.NewString(),
		BuyerID:  buyerID,
		Bundle:   bundle,
		Method:   method,
		Amount:   amount,
		Currency: currency,
		Status:   models.StatusPending,
	}

	result := &CreateResult{Payment: payment}
	deadline := s.cfg.ManualTimeout

	if method == models.MethodUPI {
		// The charge request must succeed before anything is persisted.
		charge, err := s.provider.CreateQRCharge(ctx, amount, buyerID, bundle)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domainerrors.ErrProviderUnavailable, err)
		}
		ref := charge.ID
		payment.ProviderRef = &ref
		result.QRPayload = charge.PayloadURL
		deadline = s.cfg.UPITimeout
	} else {
		info, err := s.settings.PaymentInfo(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load payment info: %w", err)
		}
		result.Instructions = info[method]
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, err
	}

	if err := s.timers.Start(payment.ID, deadline, s.countdownTick(payment.ID, buyerID)); err != nil {
		log.Printf("countdown for payment %s not started: %v", payment.ID, err)
	}

	return result, nil
}

func (s *service) SetPrompt(ctx context.Context, paymentID, msgID string) error {
	return s.repo.SetPromptMessage(ctx, paymentID, msgID)
}

func (s *service) HandleProviderCredit(ctx context.Context, providerRef string) (Outcome, error) {
	payment, err := s.repo.GetByProviderRef(ctx, providerRef)
	if err != nil {
		// Unknown references are acknowledged, never errored: the
		// provider retries on anything else.
		return OutcomeIgnored, nil
	}

	applied, err := s.repo.TransitionStatus(ctx, payment.ID,
		[]string{models.StatusPending}, models.StatusVerified, nil)
	if err != nil {
		return OutcomeIgnored, err
	}
	if !applied {
		return OutcomeConflict, nil
	}

	s.timers.Cancel(payment.ID)
	s.withdrawPrompt(ctx, payment)
	s.deliver(ctx, payment.ID)
	s.notifyAdmin(ctx, fmt.Sprintf("Payment %s verified automatically (%s %.2f, %s).",
		payment.ID, payment.Currency, payment.Amount, payment.Bundle))
	return OutcomeApplied, nil
}

func (s *service) AttachProof(ctx context.Context, buyerID int64, proofRef string) (*models.Payment, Outcome, error) {
	payment, err := s.repo.LatestPendingManual(ctx, buyerID)
	if err != nil {
		return nil, OutcomeIgnored, err
	}
	if payment == nil {
		return nil, OutcomeIgnored, nil
	}

	applied, err := s.repo.TransitionStatus(ctx, payment.ID,
		[]string{models.StatusPending}, models.StatusReview,
		map[string]interface{}{"proof_ref": proofRef})
	if err != nil {
		return nil, OutcomeIgnored, err
	}
	if !applied {
		return payment, OutcomeConflict, nil
	}

	// The countdown keeps running: review is still subject to timeout.
	s.notifyAdmin(ctx, fmt.Sprintf(
		"Proof uploaded for payment %s (buyer %d, %s via %s).\nProof: %s\nApprove: POST /api/admin/payments/%s/approve\nDecline: POST /api/admin/payments/%s/decline",
		payment.ID, payment.BuyerID, payment.Bundle, payment.Method, proofRef, payment.ID, payment.ID))
	return payment, OutcomeApplied, nil
}

func (s *service) Approve(ctx context.Context, actorID int64, paymentID string) (Outcome, error) {
	if actorID != s.cfg.AdminID {
		return OutcomeIgnored, domainerrors.ErrNotAdmin
	}

	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return OutcomeIgnored, domainerrors.ErrPaymentNotFound
	}

	applied, err := s.repo.TransitionStatus(ctx, payment.ID,
		[]string{models.StatusReview}, models.StatusVerified, nil)
	if err != nil {
		return OutcomeIgnored, err
	}
	if !applied {
		return OutcomeConflict, nil
	}

	s.timers.Cancel(payment.ID)
	s.deliver(ctx, payment.ID)
	s.notifyAdmin(ctx, fmt.Sprintf("Payment %s approved.", payment.ID))
	return OutcomeApplied, nil
}

func (s *service) Decline(ctx context.Context, actorID int64, paymentID string) (Outcome, error) {
	if actorID != s.cfg.AdminID {
		return OutcomeIgnored, domainerrors.ErrNotAdmin
	}

	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return OutcomeIgnored, domainerrors.ErrPaymentNotFound
	}

	applied, err := s.repo.TransitionStatus(ctx, payment.ID,
		[]string{models.StatusReview}, models.StatusDeclined, nil)
	if err != nil {
		return OutcomeIgnored, err
	}
	if !applied {
		return OutcomeConflict, nil
	}

	s.timers.Cancel(payment.ID)
	s.notifyBuyer(ctx, payment.BuyerID, "Your payment was declined. Contact the admin if you believe this is a mistake.")
	s.notifyAdmin(ctx, fmt.Sprintf("Payment %s declined.", payment.ID))
	return OutcomeApplied, nil
}

func (s *service) Expire(ctx context.Context, paymentID string) (Outcome, error) {
	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return OutcomeIgnored, nil
	}

	applied, err := s.repo.TransitionStatus(ctx, payment.ID,
		[]string{models.StatusPending, models.StatusReview}, models.StatusExpired, nil)
	if err != nil {
		return OutcomeIgnored, err
	}
	if !applied {
		// Another trigger won the race; nothing to undo.
		return OutcomeConflict, nil
	}

	s.withdrawPrompt(ctx, payment)
	s.notifyBuyer(ctx, payment.BuyerID, "Payment window expired. Start again when you are ready.")
	return OutcomeApplied, nil
}

func (s *service) Redispatch(ctx context.Context, actorID int64, paymentID string) (Outcome, error) {
	if actorID != s.cfg.AdminID {
		return OutcomeIgnored, domainerrors.ErrNotAdmin
	}

	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return OutcomeIgnored, domainerrors.ErrPaymentNotFound
	}
	if payment.Status != models.StatusVerified {
		return OutcomeConflict, domainerrors.ErrNotVerified
	}

	delivered, err := s.dispatcher.Dispatch(ctx, payment)
	if err != nil {
		return OutcomeIgnored, err
	}
	if !delivered {
		return OutcomeConflict, nil
	}
	return OutcomeApplied, nil
}

// deliver hands a freshly verified payment to the dispatcher. Dispatch
// failures never roll the transition back; the record stays verified
// and undelivered for a manual retry.
func (s *service) deliver(ctx context.Context, paymentID string) {
	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		log.Printf("cannot reload payment %s for dispatch: %v", paymentID, err)
		return
	}
	if _, err := s.dispatcher.Dispatch(ctx, payment); err != nil {
		log.Printf("dispatch of payment %s failed: %v", paymentID, err)
	}
}

func (s *service) withdrawPrompt(ctx context.Context, payment *models.Payment) {
	if payment.PromptMsgID == "" {
		return
	}
	if err := s.notifier.Delete(ctx, payment.BuyerID, payment.PromptMsgID); err != nil {
		log.Printf("failed to withdraw prompt for payment %s: %v", payment.ID, err)
	}
}

func (s *service) notifyBuyer(ctx context.Context, buyerID int64, text string) {
	if _, err := s.notifier.Send(ctx, buyerID, text); err != nil {
		log.Printf("buyer notification failed: %v", err)
	}
}

func (s *service) notifyAdmin(ctx context.Context, text string) {
	if _, err := s.notifier.Send(ctx, s.cfg.AdminID, text); err != nil {
		log.Printf("admin notification failed: %v", err)
	}
}

// countdownTick edits the outstanding payment prompt with the time
// left. Purely cosmetic; any failure is logged and dropped.
func (s *service) countdownTick(paymentID string, buyerID int64) func(time.Duration) {
	return func(remaining time.Duration) {
		ctx := context.Background()
		payment, err := s.repo.GetByID(ctx, paymentID)
		if err != nil || payment.PromptMsgID == "" || payment.Terminal() {
			return
		}
		text := fmt.Sprintf("Waiting for payment... %s left", remaining.Round(time.Second))
		if err := s.notifier.Edit(ctx, buyerID, payment.PromptMsgID, text); err != nil {
			log.Printf("countdown update for payment %s failed: %v", paymentID, err)
		}
	}
}
