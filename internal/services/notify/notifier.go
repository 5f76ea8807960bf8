// Package notify is the outbound message side-channel. Every call is
// best-effort from the caller's perspective: failures are logged by the
// call sites and never block a state transition.
package notify

import "context"

// Notifier sends, edits and withdraws status messages. Recipients are
// chat identities; message ids are opaque references usable with Edit
// and Delete.
type Notifier interface {
	Send(ctx context.Context, recipient int64, text string) (string, error)
	SendPhoto(ctx context.Context, recipient int64, caption string, png []byte) (string, error)
	Edit(ctx context.Context, recipient int64, msgID, text string) error
	Delete(ctx context.Context, recipient int64, msgID string) error
}
