// Package storage persists uploaded proof-of-payment blobs.
package storage

import "context"

// BlobStore saves an uploaded blob and returns a stable reference.
type BlobStore interface {
	Save(ctx context.Context, data []byte, name string) (string, error)
}
