// Package recentuploads keeps a small per-owner ring of recent uploads for
// the dashboard view. Only the five most recent records per owner survive.
package recentuploads

import (
	"context"

	"github.com/dmitrijs2005/vaultbox/internal/server/models"
)

// KeepPerUser is how many records survive per owner after trimming.
const KeepPerUser = 5

type Repository interface {
	// Add records an upload and trims the owner's ring to KeepPerUser.
	Add(ctx context.Context, upload *models.RecentUpload) error
	// ListByUser returns the ring newest-first.
	ListByUser(ctx context.Context, userID string) ([]*models.RecentUpload, error)
}
