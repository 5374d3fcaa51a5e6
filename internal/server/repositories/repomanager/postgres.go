// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/vaultbox/internal/dbx"
	"github.com/dmitrijs2005/vaultbox/internal/server/migrations"
	"github.com/dmitrijs2005/vaultbox/internal/server/repositories/recentuploads"
	"github.com/dmitrijs2005/vaultbox/internal/server/repositories/shares"
	"github.com/dmitrijs2005/vaultbox/internal/server/repositories/users"
	"github.com/dmitrijs2005/vaultbox/internal/server/repositories/vaultentries"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository
// implementations and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

// VaultEntries returns a vaultentries.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) VaultEntries(db dbx.DBTX) vaultentries.Repository {
	return vaultentries.NewPostgresRepository(db)
}

// Shares returns a shares.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Shares(db dbx.DBTX) shares.Repository {
	return shares.NewPostgresRepository(db)
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// RecentUploads returns a recentuploads.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) RecentUploads(db dbx.DBTX) recentuploads.Repository {
	return recentuploads.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}
