package provider

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// RenderQR renders the scannable payload as a clean PNG, without
// provider branding.
func RenderQR(payload string) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, 512)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR: %w", err)
	}
	return png, nil
}
