package shares

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

const grantColumns = `id, entry_id, shared_by, shared_with, share_token,
	can_view, can_download, share_type,
	qr_enabled, qr_image, qr_access_count, qr_max_access, qr_is_public,
	expires_at, is_active, download_count, last_accessed, created_at`

func scanGrant(row interface{ Scan(...any) error }) (*models.ShareGrant, error) {
	var g models.ShareGrant
	var sharedWith sql.NullString
	var qrEnabled bool
	var qrImage sql.NullString
	var qrAccessCount int64
	var qrMaxAccess sql.NullInt64
	var qrIsPublic bool
	var expiresAt, lastAccessed sql.NullTime

	err := row.Scan(&g.ID, &g.EntryID, &g.SharedBy, &sharedWith, &g.ShareToken,
		&g.Permissions.CanView, &g.Permissions.CanDownload, &g.ShareType,
		&qrEnabled, &qrImage, &qrAccessCount, &qrMaxAccess, &qrIsPublic,
		&expiresAt, &g.IsActive, &g.DownloadCount, &lastAccessed, &g.CreatedAt)
	if err != nil {
		return nil, err
	}

	if sharedWith.Valid {
		g.SharedWith = &sharedWith.String
	}
	if qrEnabled {
		qr := &models.QRState{
			Enabled:     true,
			Image:       qrImage.String,
			AccessCount: qrAccessCount,
			IsPublic:    qrIsPublic,
		}
		if qrMaxAccess.Valid {
			qr.MaxAccess = &qrMaxAccess.Int64
		}
		g.QR = qr
	}
	if expiresAt.Valid {
		g.ExpiresAt = &expiresAt.Time
	}
	if lastAccessed.Valid {
		g.LastAccessed = &lastAccessed.Time
	}
	return &g, nil
}

func (r *PostgresRepository) Create(ctx context.Context, grant *models.ShareGrant) error {
	query := `
		INSERT INTO share_grants (` + grantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	var qrEnabled, qrIsPublic bool
	var qrImage any
	var qrAccessCount int64
	var qrMaxAccess any
	if grant.QR != nil {
		qrEnabled = grant.QR.Enabled
		qrImage = grant.QR.Image
		qrAccessCount = grant.QR.AccessCount
		qrIsPublic = grant.QR.IsPublic
		if grant.QR.MaxAccess != nil {
			qrMaxAccess = *grant.QR.MaxAccess
		}
	}

	_, err := r.db.ExecContext(ctx, query,
		grant.ID, grant.EntryID, grant.SharedBy, grant.SharedWith, grant.ShareToken,
		grant.Permissions.CanView, grant.Permissions.CanDownload, grant.ShareType,
		qrEnabled, qrImage, qrAccessCount, qrMaxAccess, qrIsPublic,
		grant.ExpiresAt, grant.IsActive, grant.DownloadCount, grant.LastAccessed, grant.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetActiveByToken(ctx context.Context, token string, now time.Time) (*models.ShareGrant, error) {
	query := `SELECT ` + grantColumns + ` FROM share_grants
		WHERE share_token = $1 AND is_active
		  AND (expires_at IS NULL OR expires_at > $2)`

	grant, err := scanGrant(r.db.QueryRowContext(ctx, query, token, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return grant, nil
}

func (r *PostgresRepository) GetByIDAndGranter(ctx context.Context, id, granterID string) (*models.ShareGrant, error) {
	query := `SELECT ` + grantColumns + ` FROM share_grants
		WHERE id = $1 AND shared_by = $2`

	grant, err := scanGrant(r.db.QueryRowContext(ctx, query, id, granterID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return grant, nil
}

func (r *PostgresRepository) Touch(ctx context.Context, id string, now time.Time) error {
	query := `UPDATE share_grants SET last_accessed = $2 WHERE id = $1 AND is_active`

	result, err := r.db.ExecContext(ctx, query, id, now)
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

// RegisterQRAccess performs the guarded increment in a single UPDATE so the
// cap check and the bump are one atomic storage step.
func (r *PostgresRepository) RegisterQRAccess(ctx context.Context, id string, now time.Time) (int64, error) {
	query := `
		UPDATE share_grants
		SET qr_access_count = qr_access_count + 1, last_accessed = $2
		WHERE id = $1 AND is_active AND qr_enabled
		  AND (qr_max_access IS NULL OR qr_access_count < qr_max_access)
		RETURNING qr_access_count
	`
	var count int64
	err := r.db.QueryRowContext(ctx, query, id, now).Scan(&count)
	if err == nil {
		return count, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("db error: %w", err)
	}

	// The guard refused: distinguish a missing/revoked grant from an
	// exhausted one for the caller's error category.
	return 0, r.limitOrNotFound(ctx, id)
}

func (r *PostgresRepository) RegisterDownload(ctx context.Context, id string, includeQRAccess bool, now time.Time) error {
	query := `
		UPDATE share_grants
		SET download_count = download_count + 1,
		    qr_access_count = qr_access_count + CASE WHEN $2 THEN 1 ELSE 0 END,
		    last_accessed = $3
		WHERE id = $1 AND is_active
		  AND (NOT $2 OR qr_max_access IS NULL OR qr_access_count < qr_max_access)
	`
	result, err := r.db.ExecContext(ctx, query, id, includeQRAccess, now)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 1 {
		return nil
	}
	if includeQRAccess {
		return r.limitOrNotFound(ctx, id)
	}
	return common.ErrNotFound
}

func (r *PostgresRepository) limitOrNotFound(ctx context.Context, id string) error {
	var exhausted bool
	check := `SELECT qr_max_access IS NOT NULL AND qr_access_count >= qr_max_access
		FROM share_grants WHERE id = $1 AND is_active AND qr_enabled`
	if err := r.db.QueryRowContext(ctx, check, id).Scan(&exhausted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	if exhausted {
		return common.ErrAccessLimitExceeded
	}
	return common.ErrNotFound
}

func (r *PostgresRepository) Revoke(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE share_grants SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListReceived(ctx context.Context, userID string, now time.Time, offset, limit int) ([]*models.ShareGrant, int64, error) {
	cond := `shared_with = $1 AND is_active AND (expires_at IS NULL OR expires_at > $2)`

	var total int64
	countQuery := `SELECT COUNT(*) FROM share_grants WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countQuery, userID, now).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := `SELECT ` + grantColumns + ` FROM share_grants WHERE ` + cond + `
		ORDER BY created_at DESC OFFSET $3 LIMIT $4`
	rows, err := r.db.QueryContext(ctx, query, userID, now, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	grants, err := collectGrants(rows)
	if err != nil {
		return nil, 0, err
	}
	return grants, total, nil
}

func (r *PostgresRepository) ListSent(ctx context.Context, userID string, offset, limit int) ([]*models.ShareGrant, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM share_grants WHERE shared_by = $1 AND is_active`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := `SELECT ` + grantColumns + ` FROM share_grants
		WHERE shared_by = $1 AND is_active
		ORDER BY created_at DESC OFFSET $2 LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, userID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	grants, err := collectGrants(rows)
	if err != nil {
		return nil, 0, err
	}
	return grants, total, nil
}

func collectGrants(rows *sql.Rows) ([]*models.ShareGrant, error) {
	var result []*models.ShareGrant
	for rows.Next() {
		grant, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
