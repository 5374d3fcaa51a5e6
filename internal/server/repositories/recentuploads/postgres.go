package recentuploads

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/vaultbox/internal/dbx"
	"github.com/dmitrijs2005/vaultbox/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add records an upload and trims the owner's ring. When bound to a
// *sql.DB the insert and the trim run in one transaction; a transactional
// handle passed in by the caller already provides that.
func (r *PostgresRepository) Add(ctx context.Context, upload *models.RecentUpload) error {
	if db, ok := r.db.(*sql.DB); ok {
		return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return add(ctx, tx, upload)
		})
	}
	return add(ctx, r.db, upload)
}

func add(ctx context.Context, db dbx.DBTX, upload *models.RecentUpload) error {
	insert := `INSERT INTO recent_uploads (id, user_id, original_name, size_kb, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := db.ExecContext(ctx, insert,
		upload.ID, upload.UserID, upload.OriginalName, upload.SizeKB, upload.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	trim := `DELETE FROM recent_uploads WHERE user_id = $1 AND id NOT IN (
		SELECT id FROM recent_uploads WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2)`
	if _, err := db.ExecContext(ctx, trim, upload.UserID, KeepPerUser); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.RecentUpload, error) {
	query := `SELECT id, user_id, original_name, size_kb, created_at FROM recent_uploads
		WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.RecentUpload
	for rows.Next() {
		var item models.RecentUpload
		if err := rows.Scan(&item.ID, &item.UserID, &item.OriginalName, &item.SizeKB, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
