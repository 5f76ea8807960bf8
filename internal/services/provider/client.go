// Package provider talks to the external payment provider: creating
// single-use UPI QR charges and authenticating inbound webhook events.
package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://api.razorpay.com"

// Config holds the provider credentials.
type Config struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	BaseURL       string
}

// Client is a minimal payment provider API client.
type Client struct {
	http          *resty.Client
	webhookSecret string
}

// NewClient constructs a provider client with basic auth credentials.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	http := resty.New().
		SetBaseURL(base).
		SetBasicAuth(cfg.KeyID, cfg.KeySecret).
		SetTimeout(20 * time.Second)

	return &Client{http: http, webhookSecret: cfg.WebhookSecret}
}

// WebhookSecret returns the shared secret used to sign webhook bodies.
func (c *Client) WebhookSecret() string { return c.webhookSecret }

// QRCharge is the provider's handle for a dynamic QR charge request.
// ID is the join key for inbound webhook events; PayloadURL is the
// scannable UPI payload, opaque to the rest of the system.
type QRCharge struct {
	ID         string
	PayloadURL string
}

type qrChargeResponse struct {
	ID          string `json:"id"`
	PaymentData struct {
		UPIQRURL string `json:"upi_qr_url"`
	} `json:"payment_data"`
	Error struct {
		Description string `json:"description"`
	} `json:"error"`
}

// CreateQRCharge creates a single-use fixed-amount UPI QR for the given
// buyer and bundle. Amounts are sent in the provider's smallest unit.
func (c *Client) CreateQRCharge(ctx context.Context, amount float64, buyerID int64, bundle string) (*QRCharge, error) {
	payload := map[string]interface{}{
		"type":           "upi_qr",
		"name":           fmt.Sprintf("User_%d", buyerID),
		"usage":          "single_use",
		"fixed_amount":   true,
		"payment_amount": int64(amount * 100),
		"notes": map[string]string{
			"buyer_id": strconv.FormatInt(buyerID, 10),
			"bundle":   bundle,
		},
	}

	var out qrChargeResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		SetResult(&out).
		SetError(&out).
		Post("/v1/payments/qr_codes")
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("provider returned %s: %s", resp.Status(), out.Error.Description)
	}
	if out.ID == "" || out.PaymentData.UPIQRURL == "" {
		return nil, fmt.Errorf("provider returned incomplete charge response")
	}

	return &QRCharge{ID: out.ID, PayloadURL: out.PaymentData.UPIQRURL}, nil
}
