package models

import "time"

// Analytics event types recorded by the core operations.
const (
	EventFileUpload     = "file_upload"
	EventFileDownload   = "file_download"
	EventFileShare      = "file_share"
	EventFileShareQR    = "file_share_with_qr"
	EventQRAccess       = "qr_code_access"
	EventQRFileDownload = "qr_file_download"
	EventFileDelete     = "file_delete"
)

// AnalyticsEvent is a best-effort audit record. Recording one must never
// fail or retry the operation that produced it.
type AnalyticsEvent struct {
	ID        string
	UserID    *string
	EventType string
	EntryID   *string
	ShareID   *string
	Metadata  map[string]any
	CreatedAt time.Time
}
