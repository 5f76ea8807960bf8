package handlers

import (
	"errors"
	"log"

	domainerrors "github.com/Akash604-crypto/telegram-payment-bot-api/internal/errors"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/models"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/repositories"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/notify"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/reporting"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/verification"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	verifier verification.Service
	reports  reporting.Service
	payments repositories.PaymentRepository
	settings repositories.SettingsRepository
	notifier notify.Notifier
}

func NewAdminHandler(verifier verification.Service, reports reporting.Service, payments repositories.PaymentRepository, settings repositories.SettingsRepository, notifier notify.Notifier) *AdminHandler {
	return &AdminHandler{
		verifier: verifier,
		reports:  reports,
		payments: payments,
		settings: settings,
		notifier: notifier,
	}
}

func actorID(c *fiber.Ctx) int64 {
	claims, ok := c.Locals("claims").(*models.AdminClaims)
	if !ok {
		return 0
	}
	return claims.AdminID
}

func (h *AdminHandler) outcomeResponse(c *fiber.Ctx, outcome verification.Outcome, err error, applied string) error {
	if err != nil {
		var derr *domainerrors.DomainError
		if errors.As(err, &derr) && derr == domainerrors.ErrNotAdmin {
			return response.Forbidden(c, derr.Message)
		}
		if errors.Is(err, domainerrors.ErrPaymentNotFound) {
			return response.NotFound(c, "payment not found")
		}
		return response.ServerError(c, err.Error())
	}

	switch outcome {
	case verification.OutcomeApplied:
		return response.Success(c, applied, nil)
	case verification.OutcomeConflict:
		return response.Success(c, "already processed", nil)
	default:
		return response.NotFound(c, "payment not found")
	}
}

// ApprovePayment verifies a payment that is under review.
func (h *AdminHandler) ApprovePayment(c *fiber.Ctx) error {
	outcome, err := h.verifier.Approve(c.Context(), actorID(c), c.Params("id"))
	return h.outcomeResponse(c, outcome, err, "Payment approved")
}

// DeclinePayment rejects a payment that is under review.
func (h *AdminHandler) DeclinePayment(c *fiber.Ctx) error {
	outcome, err := h.verifier.Decline(c.Context(), actorID(c), c.Params("id"))
	return h.outcomeResponse(c, outcome, err, "Payment declined")
}

// DispatchPayment retries access delivery for a verified payment whose
// grant never went out, typically after fixing a missing link.
func (h *AdminHandler) DispatchPayment(c *fiber.Ctx) error {
	outcome, err := h.verifier.Redispatch(c.Context(), actorID(c), c.Params("id"))
	if errors.Is(err, domainerrors.ErrNotVerified) {
		return response.Error(c, fiber.StatusConflict, err.Error())
	}
	return h.outcomeResponse(c, outcome, err, "Access dispatched")
}

// ListPayments returns payments, optionally filtered by status.
func (h *AdminHandler) ListPayments(c *fiber.Ctx) error {
	payments, err := h.payments.ListByStatus(c.Context(), c.Query("status"), c.QueryInt("limit", 100))
	if err != nil {
		return response.ServerError(c, "failed to list payments")
	}
	return response.Success(c, "Payments", payments)
}

// Income returns the total of verified payment amounts.
func (h *AdminHandler) Income(c *fiber.Ctx) error {
	total, err := h.reports.Income(c.Context())
	if err != nil {
		return response.ServerError(c, "failed to compute income")
	}
	return response.Success(c, "Income", fiber.Map{"total_verified": total})
}

// Insights returns payment counts per status.
func (h *AdminHandler) Insights(c *fiber.Ctx) error {
	insights, err := h.reports.Insights(c.Context())
	if err != nil {
		return response.ServerError(c, "failed to compute insights")
	}
	return response.Success(c, "Insights", insights)
}

// UpdateLinks replaces the per-bundle access links.
func (h *AdminHandler) UpdateLinks(c *fiber.Ctx) error {
	var links models.Links
	if err := c.BodyParser(&links); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if err := h.settings.SaveLinks(c.Context(), links); err != nil {
		return response.ServerError(c, "failed to save links")
	}
	return response.Success(c, "Links saved", links)
}

// UpdatePaymentInfo replaces the manual payment instructions.
func (h *AdminHandler) UpdatePaymentInfo(c *fiber.Ctx) error {
	var info models.PaymentInfo
	if err := c.BodyParser(&info); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if err := h.settings.SavePaymentInfo(c.Context(), info); err != nil {
		return response.ServerError(c, "failed to save payment info")
	}
	return response.Success(c, "Payment info saved", info)
}

// UpdatePrices replaces the price table.
func (h *AdminHandler) UpdatePrices(c *fiber.Ctx) error {
	var prices models.Prices
	if err := c.BodyParser(&prices); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if len(prices) == 0 {
		return response.BadRequest(c, "price table cannot be empty")
	}
	if err := h.settings.SavePrices(c.Context(), prices); err != nil {
		return response.ServerError(c, "failed to save prices")
	}
	return response.Success(c, "Prices saved", prices)
}

// Broadcast sends a message to every buyer the system has seen.
func (h *AdminHandler) Broadcast(c *fiber.Ctx) error {
	var input struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&input); err != nil || input.Text == "" {
		return response.BadRequest(c, "text is required")
	}

	buyers, err := h.payments.ListBuyers(c.Context())
	if err != nil {
		return response.ServerError(c, "failed to list buyers")
	}

	sent := 0
	for _, buyer := range buyers {
		if _, err := h.notifier.Send(c.Context(), buyer, input.Text); err != nil {
			log.Printf("broadcast to %d failed: %v", buyer, err)
			continue
		}
		sent++
	}
	return response.Success(c, "Broadcast sent", fiber.Map{"recipients": sent})
}
