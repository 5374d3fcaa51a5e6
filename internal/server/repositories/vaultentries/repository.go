// Package vaultentries provides the Vault Entry Registry: one durable
// record per encrypted stored object.
package vaultentries

import (
	"context"
	"time"

	"github.com/dmitrijs2005/vaultbox/internal/server/models"
)

// Repository is the Vault Entry Registry contract. Lookups of unknown
// tokens or ids return common.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, entry *models.VaultEntry) error
	GetByToken(ctx context.Context, token string) (*models.VaultEntry, error)
	GetByID(ctx context.Context, id string) (*models.VaultEntry, error)
	// GetByIDAndOwner returns ErrNotFound both for unknown ids and for
	// entries owned by someone else, so existence is not leaked.
	GetByIDAndOwner(ctx context.Context, id, ownerID string) (*models.VaultEntry, error)
	// Consume atomically removes the entry for token and returns it.
	// Removal and lookup are one storage-level step, so of two
	// concurrent calls with the same token exactly one gets the entry
	// and the other gets ErrNotFound.
	Consume(ctx context.Context, token string) (*models.VaultEntry, error)
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes entries past their TTL and returns the
	// removed records so the caller can clean up the backing blobs.
	DeleteExpired(ctx context.Context, now time.Time) ([]*models.VaultEntry, error)
}
