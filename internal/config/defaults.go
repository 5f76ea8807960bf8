package config

import (
	"github.com/Akash604-crypto/telegram-payment-bot-api/internal/models"
)

// DefaultPrices seeds the price table on first boot. The admin can
// overwrite it through the settings API.
func DefaultPrices() models.Prices {
	return models.Prices{
		models.BundleVIP:  {UPI: 499, Crypto: 6, Remitly: 499},
		models.BundleDark: {UPI: 1999, Crypto: 24, Remitly: 1999},
		models.BundleBoth: {UPI: 1749, Crypto: 20, Remitly: 1749},
	}
}

// DefaultLinks starts every access artifact unconfigured; the admin has
// to set invite links before dispatch can deliver.
func DefaultLinks() models.Links {
	return models.Links{
		models.BundleVIP:  "",
		models.BundleDark: "",
		models.BundleBoth: "",
	}
}

// DefaultPaymentInfo holds the manual-method payment instructions.
func DefaultPaymentInfo() models.PaymentInfo {
	return models.PaymentInfo{
		models.MethodCrypto:  "Address: 0x... | Network: BEP20",
		models.MethodRemitly: "Recipient and UPI handle are set by the admin",
	}
}
