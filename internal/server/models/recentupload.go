package models

import "time"

// RecentUpload is a dashboard ring entry; only the five most recent per
// owner are kept.
type RecentUpload struct {
	ID           string
	UserID       string
	OriginalName string
	// SizeKB is the plaintext size rounded up to whole KiB.
	SizeKB    int64
	CreatedAt time.Time
}
