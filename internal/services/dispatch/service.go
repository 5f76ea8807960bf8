// Package dispatch resolves a verified payment's bundle to its access
// artifacts and delivers them exactly once.
package dispatch

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/models"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/repositories"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/services/notify"
)

const fallbackMessage = "Your payment is verified but access links are being prepared. Please contact the admin."

type Service interface {
	// Dispatch delivers the access grant for a verified payment.
	// Returns true when the grant is (already) delivered. A record with
	// unconfigured artifacts gets a fallback message and stays
	// undelivered so a later retry can succeed.
	Dispatch(ctx context.Context, payment *models.Payment) (bool, error)
}

type service struct {
	repo     repositories.PaymentRepository
	settings repositories.SettingsRepository
	notifier notify.Notifier
}

func NewService(repo repositories.PaymentRepository, settings repositories.SettingsRepository, notifier notify.Notifier) Service {
	if repo == nil {
		panic("repo is required")
	}
	if settings == nil {
		panic("settings is required")
	}
	if notifier == nil {
		panic("notifier is required")
	}
	return &service{repo: repo, settings: settings, notifier: notifier}
}

func (s *service) Dispatch(ctx context.Context, payment *models.Payment) (bool, error) {
	if payment.Delivered {
		return true, nil
	}
	if payment.Status != models.StatusVerified {
		return false, fmt.Errorf("cannot dispatch payment %s in status %s", payment.ID, payment.Status)
	}

	links, err := s.settings.Links(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load access links: %w", err)
	}

	components := models.BundleComponents(payment.Bundle)
	artifacts := make([]string, 0, len(components))
	for _, component := range components {
		link := links[component]
		if link == "" {
			// Partial grants are worse than none: fall back and keep
			// the record retryable.
			if _, err := s.notifier.Send(ctx, payment.BuyerID, fallbackMessage); err != nil {
				log.Printf("fallback notification for payment %s failed: %v", payment.ID, err)
			}
			return false, nil
		}
		artifacts = append(artifacts, fmt.Sprintf("%s: %s", strings.ToUpper(component), link))
	}

	text := "Access Granted:\n" + strings.Join(artifacts, "\n")
	if _, err := s.notifier.Send(ctx, payment.BuyerID, text); err != nil {
		// Delivery did not happen, so delivered stays false and the
		// admin can re-dispatch.
		log.Printf("access delivery for payment %s failed: %v", payment.ID, err)
		return false, nil
	}

	applied, err := s.repo.MarkDelivered(ctx, payment.ID)
	if err != nil {
		return false, fmt.Errorf("failed to persist delivery of payment %s: %w", payment.ID, err)
	}
	if !applied {
		// Another dispatch won; the grant is already out.
		log.Printf("payment %s was already marked delivered", payment.ID)
	}
	return true, nil
}
