// Package reporting aggregates payment records for the admin surface.
package reporting

import (
	"context"
	"fmt"

	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/models"
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/repositories"
)

// Insights summarizes the payment ledger.
type Insights struct {
	Total     int64            `json:"total"`
	ByStatus  map[string]int64 `json:"by_status"`
	Delivered int64            `json:"delivered"`
}

type Service interface {
	// Income returns the sum of verified payment amounts.
	Income(ctx context.Context) (float64, error)
	Insights(ctx context.Context) (*Insights, error)
}

type service struct {
	repo repositories.PaymentRepository
}

func NewService(repo repositories.PaymentRepository) Service {
	if repo == nil {
		panic("repo is required")
	}
	return &service{repo: repo}
}

func (s *service) Income(ctx context.Context) (float64, error) {
	total, err := s.repo.SumVerified(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to sum verified payments: %w", err)
	}
	return total, nil
}

func (s *service) Insights(ctx context.Context) (*Insights, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}

	insights := &Insights{ByStatus: counts}
	for _, n := range counts {
		insights.Total += n
	}

	delivered, err := s.repo.ListByStatus(ctx, models.StatusVerified, 0)
	if err != nil {
		return nil, err
	}
	for _, p := range delivered {
		if p.Delivered {
			insights.Delivered++
		}
	}
	return insights, nil
}
