// Package services orchestrates the vault and share operations over the
// cipher codec, the blob store adapter and the durable registries.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/vaultbox/internal/common"
	"github.com/dmitrijs2005/vaultbox/internal/cryptox"
	"github.com/dmitrijs2005/vaultbox/internal/logging"
	"github.com/dmitrijs2005/vaultbox/internal/server/analytics"
	"github.com/dmitrijs2005/vaultbox/internal/server/models"
	"github.com/dmitrijs2005/vaultbox/internal/server/repositories/recentuploads"
	"github.com/dmitrijs2005/vaultbox/internal/server/repositories/vaultentries"
	"github.com/dmitrijs2005/vaultbox/internal/server/storage"
)

// VaultService handles upload and download of encrypted objects.
//
// Download policy is single-use: a successful direct download consumes the
// Vault Entry and its blob, so a second attempt with the same token finds
// nothing. Share-based retrieval does not consume the entry; the grant
// bounds access instead.
type VaultService struct {
	entries   vaultentries.Repository
	recent    recentuploads.Repository
	blobs     storage.BlobStore
	recorder  analytics.Recorder
	log       logging.Logger
	secretKey []byte

	entryTTL      time.Duration
	uploadTimeout time.Duration
}

// NewVaultService wires the vault orchestrator. The secret key is
// validated here, before the service ever touches storage.
func NewVaultService(
	secretKey []byte,
	entryTTL, uploadTimeout time.Duration,
	entries vaultentries.Repository,
	recent recentuploads.Repository,
	blobs storage.BlobStore,
	recorder analytics.Recorder,
	log logging.Logger,
) (*VaultService, error) {
	if err := cryptox.CheckKey(secretKey); err != nil {
		return nil, err
	}
	return &VaultService{
		entries:       entries,
		recent:        recent,
		blobs:         blobs,
		recorder:      recorder,
		log:           log,
		secretKey:     secretKey,
		entryTTL:      entryTTL,
		uploadTimeout: uploadTimeout,
	}, nil
}

// DownloadResult carries decrypted bytes back to the routing layer.
type DownloadResult struct {
	OriginalName string
	ContentType  string
	Data         []byte
}

// StoredName derives the collision-resistant object-store key for an
// upload: "enc-<uuid>-<original-name>".
func StoredName(originalName string) string {
	return fmt.Sprintf("enc-%s-%s", uuid.NewString(), originalName)
}

// Upload encrypts data, stores the blob and registers a Vault Entry with a
// fresh download token and a TTL. The entry is persisted only after the
// blob store has confirmed the put, so a storage failure leaves no
// half-written record.
func (s *VaultService) Upload(ctx context.Context, ownerID, originalName, contentType string, data []byte) (*models.EntrySummary, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no file content", common.ErrValidation)
	}
	if strings.TrimSpace(originalName) == "" {
		return nil, fmt.Errorf("%w: file name is required", common.ErrValidation)
	}
	if err := cryptox.CheckKey(s.secretKey); err != nil {
		return nil, err
	}

	blob, err := cryptox.Encrypt(data, s.secretKey)
	if err != nil {
		return nil, err
	}

	storedName := StoredName(originalName)

	putCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()
	if err := s.blobs.Put(putCtx, storedName, blob, contentType); err != nil {
		return nil, err
	}

	now := time.Now()
	entry := &models.VaultEntry{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		OriginalName:  originalName,
		StoredName:    storedName,
		ContentType:   contentType,
		Size:          int64(len(data)),
		DownloadToken: uuid.NewString(),
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.entryTTL),
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		// Compensate so the blob does not leak; the put already succeeded.
		if delErr := s.blobs.Delete(ctx, storedName); delErr != nil {
			s.log.Error(ctx, "orphan blob cleanup failed", "stored_name", storedName, "error", delErr.Error())
		}
		return nil, err
	}

	if ownerID != "" {
		ru := &models.RecentUpload{
			ID:           uuid.NewString(),
			UserID:       ownerID,
			OriginalName: originalName,
			SizeKB:       (entry.Size + 1023) / 1024,
			CreatedAt:    now,
		}
		if err := s.recent.Add(ctx, ru); err != nil {
			s.log.Warn(ctx, "recent uploads update failed", "error", err.Error())
		}
	}

	s.emit(ownerID, models.EventFileUpload, &entry.ID, nil, map[string]any{
		"fileSize": entry.Size,
		"fileType": entry.ContentType,
	})

	summary := entry.Summary()
	return &summary, nil
}

// Download resolves a download token, consumes the entry and decrypts the
// blob. The consume happens first and is atomic in the registry, so of two
// concurrent downloads with the same token exactly one returns bytes; the
// token stays burned even if the blob fetch then fails. An expired entry
// is removed and reported as ErrExpired; any later attempt gets
// ErrNotFound.
func (s *VaultService) Download(ctx context.Context, token string) (*DownloadResult, error) {
	entry, err := s.entries.Consume(ctx, token)
	if err != nil {
		return nil, err
	}

	if entry.Expired(time.Now()) {
		s.deleteBlob(ctx, entry.StoredName)
		s.emit(entry.OwnerID, models.EventFileDelete, &entry.ID, nil, nil)
		return nil, fmt.Errorf("%w: download link expired", common.ErrExpired)
	}

	result, err := s.open(ctx, entry)
	if err != nil {
		// The registry record is gone; drop the blob so it cannot leak.
		s.deleteBlob(ctx, entry.StoredName)
		return nil, err
	}

	s.deleteBlob(ctx, entry.StoredName)

	s.emit(entry.OwnerID, models.EventFileDownload, &entry.ID, nil, map[string]any{
		"fileSize": entry.Size,
		"fileType": entry.ContentType,
	})
	return result, nil
}

// OpenEntry fetches and decrypts the object behind an entry id without
// consuming it. Used by the share service, where the grant bounds access.
func (s *VaultService) OpenEntry(ctx context.Context, entryID string) (*DownloadResult, error) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Expired(time.Now()) {
		s.remove(ctx, entry)
		return nil, fmt.Errorf("%w: stored object expired", common.ErrExpired)
	}
	return s.open(ctx, entry)
}

func (s *VaultService) open(ctx context.Context, entry *models.VaultEntry) (*DownloadResult, error) {
	blob, err := s.blobs.Get(ctx, entry.StoredName)
	if err != nil {
		return nil, err
	}

	plaintext, err := cryptox.Decrypt(blob, s.secretKey)
	if err != nil {
		return nil, err
	}

	return &DownloadResult{
		OriginalName: entry.OriginalName,
		ContentType:  entry.ContentType,
		Data:         plaintext,
	}, nil
}

// remove purges an expired registry record and its backing blob. Cleanup
// failures are logged, not surfaced: the caller's operation has already
// produced its result.
func (s *VaultService) remove(ctx context.Context, entry *models.VaultEntry) {
	if err := s.entries.Delete(ctx, entry.ID); err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.log.Error(ctx, "entry delete failed", "entry_id", entry.ID, "error", err.Error())
		}
	} else {
		s.emit(entry.OwnerID, models.EventFileDelete, &entry.ID, nil, nil)
	}
	s.deleteBlob(ctx, entry.StoredName)
}

func (s *VaultService) deleteBlob(ctx context.Context, storedName string) {
	if err := s.blobs.Delete(ctx, storedName); err != nil {
		s.log.Error(ctx, "blob delete failed", "stored_name", storedName, "error", err.Error())
	}
}

// SweepExpired removes all entries past their TTL together with their
// blobs. Wired to the cron scheduler in the app.
func (s *VaultService) SweepExpired(ctx context.Context) (int, error) {
	removed, err := s.entries.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	for _, entry := range removed {
		if err := s.blobs.Delete(ctx, entry.StoredName); err != nil {
			s.log.Error(ctx, "blob delete failed during sweep", "stored_name", entry.StoredName, "error", err.Error())
		}
		s.emit(entry.OwnerID, models.EventFileDelete, &entry.ID, nil, nil)
	}
	if len(removed) > 0 {
		s.log.Info(ctx, "expired entries swept", "count", len(removed))
	}
	return len(removed), nil
}

// DashboardView aggregates the recent-uploads ring for one owner.
type DashboardView struct {
	TotalFiles    int
	StorageUsedKB int64
	RecentFiles   []*models.RecentUpload
}

// Dashboard summarizes the caller's recent uploads.
func (s *VaultService) Dashboard(ctx context.Context, userID string) (*DashboardView, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", common.ErrValidation)
	}
	recent, err := s.recent.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := &DashboardView{TotalFiles: len(recent), RecentFiles: recent}
	for _, r := range recent {
		view.StorageUsedKB += r.SizeKB
	}
	return view, nil
}

// Close wipes the in-process copy of the secret key. The service must not
// be used afterwards.
func (s *VaultService) Close() {
	common.WipeByteArray(s.secretKey)
}

func (s *VaultService) emit(userID, eventType string, entryID, shareID *string, metadata map[string]any) {
	event := &models.AnalyticsEvent{
		EventType: eventType,
		EntryID:   entryID,
		ShareID:   shareID,
		Metadata:  metadata,
	}
	if userID != "" {
		event.UserID = &userID
	}
	analytics.Emit(s.log, s.recorder, event)
}
