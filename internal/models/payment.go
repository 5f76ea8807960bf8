package models

import (
	"time"
)

// Payment statuses
const (
	StatusPending  = "pending"
	StatusReview   = "review"
	StatusVerified = "verified"
	StatusDeclined = "declined"
	StatusExpired  = "expired"
)

// Payment methods
const (
	MethodUPI     = "upi"
	MethodCrypto  = "crypto"
	MethodRemitly = "remitly"
)

// Bundles
const (
	BundleVIP  = "vip"
	BundleDark = "dark"
	BundleBoth = "both"
)

// Payment is the single source of truth for a purchase attempt.
// Status is the only field whose mutation must be serialized per record;
// every transition goes through PaymentRepository.TransitionStatus.
type Payment struct {
	ID          string  `gorm:"primaryKey;size:36" json:"id"`
	BuyerID     int64   `gorm:"not null;index" json:"buyer_id"`
	Bundle      string  `gorm:"not null" json:"bundle"`
	Method      string  `gorm:"not null" json:"method"`
	Amount      float64 `gorm:"not null" json:"amount"`
	Currency    string  `gorm:"not null;default:'INR'" json:"currency"`
	Status      string  `gorm:"not null;default:'pending';index" json:"status"`
	ProviderRef *string `gorm:"uniqueIndex" json:"provider_ref,omitempty"`
	ProofRef    string  `json:"proof_ref,omitempty"`
	PromptMsgID string  `json:"-"`
	Delivered   bool    `gorm:"not null;default:false" json:"delivered"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Terminal reports whether the payment has reached a final status.
func (p *Payment) Terminal() bool {
	switch p.Status {
	case StatusVerified, StatusDeclined, StatusExpired:
		return true
	}
	return false
}

// ManualMethod reports whether the method requires proof upload and
// admin review instead of automated verification.
func ManualMethod(method string) bool {
	return method == MethodCrypto || method == MethodRemitly
}

// ValidMethod reports whether the method belongs to the closed set.
func ValidMethod(method string) bool {
	return method == MethodUPI || ManualMethod(method)
}

// BundleComponents resolves a bundle to the bundles whose access
// artifacts it grants. "both" is the composite of vip and dark.
func BundleComponents(bundle string) []string {
	if bundle == BundleBoth {
		return []string{BundleVIP, BundleDark}
	}
	return []string{bundle}
}
