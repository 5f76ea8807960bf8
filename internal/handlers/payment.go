package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/repositories"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/notify"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/provider"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/storage"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/verification"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type PaymentHandler struct {
	verifier verification.Service
	settings repositories.SettingsRepository
	notifier notify.Notifier
	blobs    storage.BlobStore
}

func NewPaymentHandler(verifier verification.Service, settings repositories.SettingsRepository, notifier notify.Notifier, blobs storage.BlobStore) *PaymentHandler {
	return &PaymentHandler{
		verifier: verifier,
		settings: settings,
		notifier: notifier,
		blobs:    blobs,
	}
}

// CreatePayment opens a pending payment for a buyer. Automated payments
// get a QR prompt, manual ones the payment instructions.
func (h *PaymentHandler) CreatePayment(c *fiber.Ctx) error {
	var input struct {
		BuyerID int64  `json:"buyer_id"`
		Bundle  string `json:"bundle"`
		Method  string `json:"method"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if input.BuyerID == 0 {
		return response.BadRequest(c, "buyer_id is required")
	}

	result, err := h.verifier.CreatePayment(c.Context(), input.BuyerID, input.Bundle, input.Method)
	if err != nil {
		return response.Error(c, fiber.StatusBadRequest, err.Error())
	}

	h.sendPrompt(c.Context(), result)

	return response.Success(c, "Payment created", fiber.Map{
		"payment":      result.Payment,
		"qr_payload":   result.QRPayload,
		"instructions": result.Instructions,
	})
}

// sendPrompt delivers the payment prompt to the buyer and records its
// message id so expiry can withdraw it. Prompt failures do not fail the
// creation: the record and its countdown already exist.
func (h *PaymentHandler) sendPrompt(ctx context.Context, result *verification.CreateResult) {
	payment := result.Payment

	var msgID string
	var err error
	if result.QRPayload != "" {
		var png []byte
		png, err = provider.RenderQR(result.QRPayload)
		if err == nil {
			caption := fmt.Sprintf("Pay %s %.2f\nAccess is sent automatically after payment.", payment.Currency, payment.Amount)
			msgID, err = h.notifier.SendPhoto(ctx, payment.BuyerID, caption, png)
		}
	} else {
		text := fmt.Sprintf("Manual payment (%s %.2f):\n%s\n\nUpload a screenshot as proof when done.",
			payment.Currency, payment.Amount, result.Instructions)
		msgID, err = h.notifier.Send(ctx, payment.BuyerID, text)
	}
	if err != nil {
		log.Printf("payment prompt for %s failed: %v", payment.ID, err)
		return
	}

	if err := h.verifier.SetPrompt(ctx, payment.ID, msgID); err != nil {
		log.Printf("failed to record prompt message for %s: %v", payment.ID, err)
	}
}

// UploadProof attaches proof-of-payment to the buyer's most recent
// pending manual payment.
func (h *PaymentHandler) UploadProof(c *fiber.Ctx) error {
	buyerID, err := strconv.ParseInt(c.FormValue("buyer_id"), 10, 64)
	if err != nil || buyerID == 0 {
		return response.BadRequest(c, "buyer_id is required")
	}

	fileHeader, err := c.FormFile("proof")
	if err != nil {
		return response.BadRequest(c, "proof file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return response.BadRequest(c, "unable to read proof file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return response.BadRequest(c, "unable to read proof file")
	}

	name := fmt.Sprintf("proof_%d_%d_%s", buyerID, time.Now().Unix(), fileHeader.Filename)
	ref, err := h.blobs.Save(c.Context(), data, name)
	if err != nil {
		log.Printf("failed to store proof for buyer %d: %v", buyerID, err)
		return response.ServerError(c, "failed to store proof")
	}

	payment, outcome, err := h.verifier.AttachProof(c.Context(), buyerID, ref)
	if err != nil {
		return response.ServerError(c, err.Error())
	}

	switch outcome {
	case verification.OutcomeApplied:
		return response.Success(c, "Proof submitted for review", payment)
	case verification.OutcomeConflict:
		return response.Error(c, fiber.StatusConflict, "payment is no longer awaiting proof")
	default:
		return response.NotFound(c, "no pending manual payment for this buyer")
	}
}

// GetBundles returns the price table.
func (h *PaymentHandler) GetBundles(c *fiber.Ctx) error {
	prices, err := h.settings.Prices(c.Context())
	if err != nil {
		return response.ServerError(c, "failed to load prices")
	}
	return response.Success(c, "Bundles", prices)
}
