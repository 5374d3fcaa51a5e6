// Package shares provides the Share Registry: one durable record per
// sharing action on a Vault Entry, soft-deleted on revocation.
package shares

import (
	"context"
	"time"

	"github.com/dmitrijs2005/vaultbox/internal/server/models"
)

// Repository is the Share Registry contract.
//
// RegisterQRAccess and RegisterDownload are atomic increment-and-check
// operations: the access-cap comparison and the counter bump happen in one
// storage-level step, so two concurrent calls near the cap can never both
// succeed. A read-modify-write here would be a correctness bug.
type Repository interface {
	Create(ctx context.Context, grant *models.ShareGrant) error

	// GetActiveByToken returns the grant for token when it is active and
	// not expired at now; ErrNotFound otherwise. Revoked, expired and
	// exhausted grants are indistinguishable to callers.
	GetActiveByToken(ctx context.Context, token string, now time.Time) (*models.ShareGrant, error)

	// GetByIDAndGranter returns the grant regardless of its active flag,
	// but only to the original granter; ErrNotFound otherwise.
	GetByIDAndGranter(ctx context.Context, id, granterID string) (*models.ShareGrant, error)

	// Touch records a metadata view (last accessed timestamp only).
	Touch(ctx context.Context, id string, now time.Time) error

	// RegisterQRAccess atomically increments the QR access counter iff
	// the cap allows it, returning the new count. Returns
	// ErrAccessLimitExceeded when the cap is already reached.
	RegisterQRAccess(ctx context.Context, id string, now time.Time) (int64, error)

	// RegisterDownload atomically increments the download counter, plus
	// the QR access counter when includeQRAccess is set, enforcing the
	// cap in the same step.
	RegisterDownload(ctx context.Context, id string, includeQRAccess bool, now time.Time) error

	// Revoke flips is_active to false. Idempotent: revoking an already
	// inactive grant succeeds.
	Revoke(ctx context.Context, id string) error

	// ListReceived pages through active, unexpired grants targeting
	// userID, newest first, returning the page and the total count.
	ListReceived(ctx context.Context, userID string, now time.Time, offset, limit int) ([]*models.ShareGrant, int64, error)

	// ListSent pages through active grants issued by userID.
	ListSent(ctx context.Context, userID string, offset, limit int) ([]*models.ShareGrant, int64, error)
}
