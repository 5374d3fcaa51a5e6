package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/vaultbox/internal/dbx"
	"github.com/dmitrijs2005/vaultbox/internal/server/repositories/recentuploads"
	"github.com/dmitrijs2005/vaultbox/internal/server/repositories/shares"
	"github.com/dmitrijs2005/vaultbox/internal/server/repositories/users"
	"github.com/dmitrijs2005/vaultbox/internal/server/repositories/vaultentries"
)

// RepositoryManager vends repository implementations bound to a DBTX and
// exposes a schema migration hook.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	VaultEntries(db dbx.DBTX) vaultentries.Repository
	Shares(db dbx.DBTX) shares.Repository
	Users(db dbx.DBTX) users.Repository
	RecentUploads(db dbx.DBTX) recentuploads.Repository
}
