package notify

import (
	"context"
	"log"
	"strconv"
)

// Noop is a logging notifier for development and tests.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) Send(_ context.Context, recipient int64, text string) (string, error) {
	log.Printf("notify %d: %s", recipient, text)
	return "noop-" + strconv.FormatInt(recipient, 10), nil
}

func (n *Noop) SendPhoto(_ context.Context, recipient int64, caption string, _ []byte) (string, error) {
	log.Printf("notify %d (photo): %s", recipient, caption)
	return "noop-" + strconv.FormatInt(recipient, 10), nil
}

func (n *Noop) Edit(_ context.Context, recipient int64, msgID, text string) error {
	log.Printf("edit %s for %d: %s", msgID, recipient, text)
	return nil
}

func (n *Noop) Delete(_ context.Context, recipient int64, msgID string) error {
	log.Printf("delete %s for %d", msgID, recipient)
	return nil
}
