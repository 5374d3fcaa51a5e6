// Package storage adapts the external object store to the three
// capabilities the core needs: put, get and delete of named byte blobs.
package storage

import "context"

// BlobStore is the object-store contract consumed by the vault service.
//
// All three operations surface failures as common.ErrUpstreamStorage (or
// one of its sub-categories); backend-specific diagnostics never cross
// this boundary. The store offers no overwrite protection, so callers must
// use collision-resistant names.
type BlobStore interface {
	// Put stores data under name. Rejects empty data or a blank name
	// with ErrValidation before any network call.
	Put(ctx context.Context, name string, data []byte, contentType string) error

	// Get retrieves the blob stored under name.
	Get(ctx context.Context, name string) ([]byte, error)

	// Delete removes the blob stored under name.
	Delete(ctx context.Context, name string) error
}
