package models

// Setting is a persisted key/value settings row. Values are JSON so the
// admin can update prices, links and payment info at runtime without a
// schema change.
type Setting struct {
	Key   string `gorm:"primaryKey;size:64"`
	Value JSON   `gorm:"type:jsonb"`
}

// Settings keys
const (
	SettingPrices      = "prices"
	SettingLinks       = "links"
	SettingPaymentInfo = "payment_info"
)

// BundlePrice holds the per-method price of a bundle. Crypto is priced
// in USD, everything else in INR.
type BundlePrice struct {
	UPI     float64 `json:"upi"`
	Crypto  float64 `json:"crypto_usd"`
	Remitly float64 `json:"remitly"`
}

// Prices maps bundle -> per-method price. Membership defines the closed
// set of purchasable bundles.
type Prices map[string]BundlePrice

// Amount returns the price and currency for a bundle/method pair.
// The boolean is false when the bundle is not configured.
func (p Prices) Amount(bundle, method string) (float64, string, bool) {
	bp, ok := p[bundle]
	if !ok {
		return 0, "", false
	}
	switch method {
	case MethodUPI:
		return bp.UPI, "INR", true
	case MethodCrypto:
		return bp.Crypto, "USD", true
	case MethodRemitly:
		return bp.Remitly, "INR", true
	}
	return 0, "", false
}

// Links maps bundle -> access artifact (an invite link). An empty value
// means the artifact is not configured yet.
type Links map[string]string

// PaymentInfo maps manual method -> payment instructions shown to the buyer.
type PaymentInfo map[string]string
