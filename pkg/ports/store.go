package ports

import (
	"context"
)

// DraftStore defines durable key-value storage for serialized drafts.
// Keys are full record keys (see domain.RecordKey); values are opaque bytes.
type DraftStore interface {
	// Save writes the record under key, overwriting any previous value.
	Save(ctx context.Context, key string, data []byte) error

	// Load reads the record under key.
	// Returns domain.ErrDraftNotFound if no record exists.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes the record. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns every stored key.
	List(ctx context.Context) ([]string, error)
}
