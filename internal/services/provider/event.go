package provider

import (
	"encoding/json"
	"fmt"
)

// EventQRCredited is the only webhook event the system acts on.
const EventQRCredited = "qr_code.credited"

// Event is an inbound provider webhook payload.
type Event struct {
	Event   string `json:"event"`
	Payload struct {
		QRCode struct {
			Entity struct {
				ID string `json:"id"`
			} `json:"entity"`
		} `json:"qr_code"`
	} `json:"payload"`
}

// ParseEvent decodes a webhook body.
func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("failed to decode webhook event: %w", err)
	}
	return &ev, nil
}

// ProviderRef returns the provider transaction id embedded in the event.
func (e *Event) ProviderRef() string {
	return e.Payload.QRCode.Entity.ID
}
