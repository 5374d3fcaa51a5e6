// Package models defines server-side data models persisted in the database.
package models

import "time"

// VaultEntry describes one encrypted stored object. The ciphertext itself
// lives in object storage under StoredName; this record is the only thing
// allowed to reference that name.
//
// Entries are immutable after creation. They leave the registry either by
// being consumed (single-use download) or by expiring, whichever comes
// first.
type VaultEntry struct {
	ID string
	// OwnerID is empty for anonymous uploads.
	OwnerID string

	OriginalName string
	// StoredName is the object-storage key of the ciphertext blob,
	// "enc-<uuid>-<original-name>".
	StoredName  string
	ContentType string
	// Size is the plaintext size in bytes.
	Size int64

	// DownloadToken is the sole external handle for retrieval. Unique,
	// issued once, never reassigned.
	DownloadToken string

	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the entry is past its TTL at the given instant.
func (e VaultEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// EntrySummary is the caller-facing view returned from Upload and share
// resolution. It never exposes the stored name.
type EntrySummary struct {
	ID            string
	OriginalName  string
	ContentType   string
	Size          int64
	DownloadToken string
	UploadedAt    time.Time
}

// Summary derives the external view of the entry.
func (e VaultEntry) Summary() EntrySummary {
	return EntrySummary{
		ID:            e.ID,
		OriginalName:  e.OriginalName,
		ContentType:   e.ContentType,
		Size:          e.Size,
		DownloadToken: e.DownloadToken,
		UploadedAt:    e.CreatedAt,
	}
}
