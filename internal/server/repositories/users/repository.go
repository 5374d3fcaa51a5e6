// Package users provides identity lookup for share targeting. The core
// never authenticates anyone; it only resolves an email to a known
// identity when a grant targets a user.
package users

import (
	"context"

	"github.com/dmitrijs2005/vaultbox/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
