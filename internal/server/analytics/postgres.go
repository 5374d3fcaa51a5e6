package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/vaultbox/internal/dbx"
	"github.com/dmitrijs2005/vaultbox/internal/server/models"
)

// PostgresRecorder persists events into the analytics_events table.
type PostgresRecorder struct {
	db dbx.DBTX
}

func NewPostgresRecorder(db dbx.DBTX) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

func (r *PostgresRecorder) Record(ctx context.Context, event *models.AnalyticsEvent) error {
	id := event.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var metadata []byte
	if event.Metadata != nil {
		var err error
		metadata, err = json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
	}

	query := `INSERT INTO analytics_events (id, user_id, event_type, entry_id, share_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		id, event.UserID, event.EventType, event.EntryID, event.ShareID, metadata, createdAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
