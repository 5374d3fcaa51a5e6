// Package analytics records best-effort audit events. Recording is fire
// and forget: failures are logged and swallowed, never surfaced to or
// retried by the operation that produced the event.
package analytics

import (
	"context"
	"time"

	"github.com/dmitrijs2005/vaultbox/internal/logging"
	"github.com/dmitrijs2005/vaultbox/internal/server/models"
)

// Recorder is the analytics sink contract.
type Recorder interface {
	Record(ctx context.Context, event *models.AnalyticsEvent) error
}

const emitTimeout = 5 * time.Second

// Emit dispatches the event on a detached goroutine after the primary
// operation has committed. The goroutine gets its own context so request
// cancellation cannot interrupt it.
func Emit(log logging.Logger, rec Recorder, event *models.AnalyticsEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := rec.Record(ctx, event); err != nil {
			log.Warn(ctx, "analytics record failed", "event_type", event.EventType, "error", err.Error())
		}
	}()
}

// NopRecorder discards all events; used in tests and when no sink is
// configured.
type NopRecorder struct{}

func (NopRecorder) Record(ctx context.Context, event *models.AnalyticsEvent) error { return nil }
