package handlers

import (
	"context"
	"log"

	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/provider"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/verification"

	"github.com/gofiber/fiber/v2"
)

// CreditHandler is the slice of the verification router the webhook needs.
type CreditHandler interface {
	HandleProviderCredit(ctx context.Context, providerRef string) (verification.Outcome, error)
}

// WebhookHandler authenticates and routes inbound provider events.
type WebhookHandler struct {
	verifier CreditHandler
	secret   string
}

func NewWebhookHandler(verifier CreditHandler, secret string) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, secret: secret}
}

// Handle processes a provider webhook call. The signature is checked
// before anything else touches the body; after that every event is
// acknowledged with 200 so the provider stops retrying, whether or not
// it was acted on.
func (h *WebhookHandler) Handle(c *fiber.Ctx) error {
	body := c.Body()
	signature := c.Get("X-Webhook-Signature")

	if !provider.VerifySignature(body, signature, h.secret) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "invalid signature"})
	}

	event, err := provider.ParseEvent(body)
	if err != nil {
		log.Printf("unparseable webhook event: %v", err)
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	if event.Event != provider.EventQRCredited || event.ProviderRef() == "" {
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	outcome, err := h.verifier.HandleProviderCredit(c.Context(), event.ProviderRef())
	if err != nil {
		// Still acknowledged; the transition is replay-safe and the
		// provider must not retry into an error loop.
		log.Printf("credit event for %s failed: %v", event.ProviderRef(), err)
	}

	return c.JSON(fiber.Map{"status": "ok", "outcome": string(outcome)})
}
