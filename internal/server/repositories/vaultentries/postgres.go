package vaultentries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vaultbox/internal/common"
	"github.com/dmitrijs2005/vaultbox/internal/dbx"
	"github.com/dmitrijs2005/vaultbox/internal/server/models"
)

// PostgresRepository implements the registry over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const entryColumns = `id, owner_id, original_name, stored_name, content_type, size, download_token, created_at, expires_at`

func scanEntry(row interface{ Scan(...any) error }) (*models.VaultEntry, error) {
	var e models.VaultEntry
	var owner sql.NullString
	err := row.Scan(&e.ID, &owner, &e.OriginalName, &e.StoredName, &e.ContentType,
		&e.Size, &e.DownloadToken, &e.CreatedAt, &e.ExpiresAt)
	if err != nil {
		return nil, err
	}
	e.OwnerID = owner.String
	return &e, nil
}

func (r *PostgresRepository) Create(ctx context.Context, entry *models.VaultEntry) error {
	query := `
		INSERT INTO vault_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	var owner any
	if entry.OwnerID != "" {
		owner = entry.OwnerID
	}
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, owner, entry.OriginalName, entry.StoredName, entry.ContentType,
		entry.Size, entry.DownloadToken, entry.CreatedAt, entry.ExpiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*models.VaultEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM vault_entries WHERE download_token = $1`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.VaultEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM vault_entries WHERE id = $1`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

func (r *PostgresRepository) GetByIDAndOwner(ctx context.Context, id, ownerID string) (*models.VaultEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM vault_entries WHERE id = $1 AND owner_id = $2`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

// Consume claims the entry with a single DELETE ... RETURNING so the
// lookup and the removal cannot interleave with a concurrent download.
func (r *PostgresRepository) Consume(ctx context.Context, token string) (*models.VaultEntry, error) {
	query := `DELETE FROM vault_entries WHERE download_token = $1 RETURNING ` + entryColumns

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vault_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) ([]*models.VaultEntry, error) {
	query := `DELETE FROM vault_entries WHERE expires_at < $1 RETURNING ` + entryColumns

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.VaultEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
