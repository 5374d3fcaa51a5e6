package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/vaultbox/internal/common"
	"github.com/dmitrijs2005/vaultbox/internal/logging"
	"github.com/dmitrijs2005/vaultbox/internal/qrx"
	"github.com/dmitrijs2005/vaultbox/internal/server/analytics"
	"github.com/dmitrijs2005/vaultbox/internal/server/models"
	"github.com/dmitrijs2005/vaultbox/internal/server/repositories/shares"
	"github.com/dmitrijs2005/vaultbox/internal/server/repositories/users"
	"github.com/dmitrijs2005/vaultbox/internal/server/repositories/vaultentries"
)

// entryOpener is the slice of the vault service the share service needs
// for byte retrieval.
type entryOpener interface {
	OpenEntry(ctx context.Context, entryID string) (*DownloadResult, error)
}

// ShareService handles grant creation, resolution, revocation and
// access-limit enforcement.
type ShareService struct {
	shares   shares.Repository
	entries  vaultentries.Repository
	users    users.Repository
	vault    entryOpener
	recorder analytics.Recorder
	log      logging.Logger

	// baseURL is the absolute origin embedded in QR access URLs.
	baseURL string
}

// NewShareService wires the share orchestrator.
func NewShareService(
	baseURL string,
	sharesRepo shares.Repository,
	entries vaultentries.Repository,
	usersRepo users.Repository,
	vault entryOpener,
	recorder analytics.Recorder,
	log logging.Logger,
) *ShareService {
	return &ShareService{
		shares:   sharesRepo,
		entries:  entries,
		users:    usersRepo,
		vault:    vault,
		recorder: recorder,
		log:      log,
		baseURL:  baseURL,
	}
}

// QRRequest carries the optional QR parameters of a share call.
type QRRequest struct {
	MaxAccess *int64
	IsPublic  bool
}

// ShareResult is returned from Share.
type ShareResult struct {
	ShareID    string
	ShareToken string
	ShareURL   string
	// QRImage is the base64 PNG data URI, present for qr/both grants.
	QRImage string
}

// GrantView is the resolved view of a grant returned to a token holder.
type GrantView struct {
	File        models.EntrySummary
	SharedBy    *models.User
	Permissions models.SharePermissions
	ShareToken  string
}

// Share creates a grant on one of the caller's entries. The target is a
// user email, a QR request, or both; at least one must be present.
func (s *ShareService) Share(ctx context.Context, ownerID, entryID, targetEmail string, permissions models.SharePermissions, ttlDays int, qr *QRRequest) (*ShareResult, error) {
	entry, err := s.entries.GetByIDAndOwner(ctx, entryID, ownerID)
	if err != nil {
		return nil, err
	}

	if targetEmail == "" && qr == nil {
		return nil, fmt.Errorf("%w: share needs a target user or a qr request", common.ErrValidation)
	}

	var sharedWith *string
	shareType := models.ShareTypeQR
	if targetEmail != "" {
		target, err := s.users.GetByEmail(ctx, targetEmail)
		if err != nil {
			return nil, err
		}
		sharedWith = &target.ID
		shareType = models.ShareTypeUser
		if qr != nil {
			shareType = models.ShareTypeBoth
		}
	}

	token, err := common.MakeRandHexString(common.ShareTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("share token generation: %w", err)
	}

	var qrState *models.QRState
	if qr != nil {
		image, err := qrx.RenderDataURI(s.qrURL(token))
		if err != nil {
			return nil, err
		}
		qrState = &models.QRState{
			Enabled:   true,
			Image:     image,
			MaxAccess: qr.MaxAccess,
			IsPublic:  qr.IsPublic,
		}
	}

	var expiresAt *time.Time
	if ttlDays > 0 {
		t := time.Now().Add(time.Duration(ttlDays) * 24 * time.Hour)
		expiresAt = &t
	}

	grant := &models.ShareGrant{
		ID:          uuid.NewString(),
		EntryID:     entry.ID,
		SharedBy:    ownerID,
		SharedWith:  sharedWith,
		ShareToken:  token,
		Permissions: permissions,
		ShareType:   shareType,
		QR:          qrState,
		ExpiresAt:   expiresAt,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}
	if err := grant.Validate(); err != nil {
		return nil, err
	}
	if err := s.shares.Create(ctx, grant); err != nil {
		return nil, err
	}

	eventType := models.EventFileShare
	if qrState != nil {
		eventType = models.EventFileShareQR
	}
	s.emit(&ownerID, eventType, &entry.ID, &grant.ID, map[string]any{
		"fileSize":  entry.Size,
		"fileType":  entry.ContentType,
		"shareType": string(shareType),
		"hasQR":     qrState != nil,
	})

	result := &ShareResult{
		ShareID:    grant.ID,
		ShareToken: token,
		ShareURL:   s.baseURL + "/api/share/view/" + token,
	}
	if qrState != nil {
		result.QRImage = qrState.Image
	}
	return result, nil
}

func (s *ShareService) qrURL(token string) string {
	return s.baseURL + "/api/share/qr/" + token
}

// Resolve redeems a share token for the grant's metadata view. The QR
// path additionally requires QR capability and charges the access counter
// against the optional cap before anything is returned.
func (s *ShareService) Resolve(ctx context.Context, token string, viaQR bool) (*GrantView, error) {
	grant, err := s.shares.GetActiveByToken(ctx, token, time.Now())
	if err != nil {
		return nil, err
	}
	if viaQR && !grant.QRCapable() {
		return nil, common.ErrNotFound
	}

	if viaQR {
		if _, err := s.shares.RegisterQRAccess(ctx, grant.ID, time.Now()); err != nil {
			return nil, err
		}
	} else {
		if err := s.shares.Touch(ctx, grant.ID, time.Now()); err != nil {
			return nil, err
		}
	}

	view, err := s.grantView(ctx, grant)
	if err != nil {
		return nil, err
	}

	if viaQR {
		s.emit(grant.SharedWith, models.EventQRAccess, &grant.EntryID, &grant.ID, nil)
	}
	return view, nil
}

// DownloadViaShare redeems a share token for the decrypted bytes. Unlike
// the direct path this does not consume the Vault Entry; the grant's
// counters and caps bound repeated access instead.
func (s *ShareService) DownloadViaShare(ctx context.Context, token string) (*DownloadResult, error) {
	grant, err := s.shares.GetActiveByToken(ctx, token, time.Now())
	if err != nil {
		return nil, err
	}
	if !grant.Permissions.CanDownload {
		return nil, fmt.Errorf("%w: download not permitted", common.ErrForbidden)
	}

	if err := s.shares.RegisterDownload(ctx, grant.ID, grant.QRCapable(), time.Now()); err != nil {
		return nil, err
	}

	result, err := s.vault.OpenEntry(ctx, grant.EntryID)
	if err != nil {
		return nil, err
	}

	eventType := models.EventFileDownload
	if grant.QRCapable() {
		eventType = models.EventQRFileDownload
	}
	s.emit(grant.SharedWith, eventType, &grant.EntryID, &grant.ID, map[string]any{
		"fileSize": int64(len(result.Data)),
		"fileType": result.ContentType,
	})
	return result, nil
}

// Revoke permanently deactivates a grant. Only the original granter may
// revoke; revoking an already-inactive grant is a no-op success.
func (s *ShareService) Revoke(ctx context.Context, ownerID, shareID string) error {
	grant, err := s.shares.GetByIDAndGranter(ctx, shareID, ownerID)
	if err != nil {
		return err
	}
	if !grant.IsActive {
		return nil
	}
	return s.shares.Revoke(ctx, grant.ID)
}

// QRDetailsView exposes a grant's QR state to its granter.
type QRDetailsView struct {
	Image       string
	AccessCount int64
	MaxAccess   *int64
	IsPublic    bool
	IsActive    bool
}

// QRDetails returns QR usage for a grant the caller issued. Grants
// without a QR record resolve to ErrNotFound.
func (s *ShareService) QRDetails(ctx context.Context, ownerID, shareID string) (*QRDetailsView, error) {
	grant, err := s.shares.GetByIDAndGranter(ctx, shareID, ownerID)
	if err != nil {
		return nil, err
	}
	if grant.QR == nil || !grant.QR.Enabled {
		return nil, common.ErrNotFound
	}
	return &QRDetailsView{
		Image:       grant.QR.Image,
		AccessCount: grant.QR.AccessCount,
		MaxAccess:   grant.QR.MaxAccess,
		IsPublic:    grant.QR.IsPublic,
		IsActive:    grant.IsActive,
	}, nil
}

// ShareListItem is one row of a sent/received listing. File is nil when
// the referenced entry has already been consumed or swept.
type ShareListItem struct {
	ShareID     string
	File        *models.EntrySummary
	SharedBy    *models.User
	SharedWith  *models.User
	Permissions models.SharePermissions
	ShareType   models.ShareType
	CreatedAt   time.Time
	ExpiresAt   *time.Time
}

// Pagination mirrors the page/pages/total triple of a listing.
type Pagination struct {
	Current int
	Pages   int
	Total   int64
}

// ListReceived pages through grants targeting the caller.
func (s *ShareService) ListReceived(ctx context.Context, userID string, page, limit int) ([]*ShareListItem, *Pagination, error) {
	offset, limit := normalizePage(page, limit)
	grants, total, err := s.shares.ListReceived(ctx, userID, time.Now(), offset, limit)
	if err != nil {
		return nil, nil, err
	}
	return s.listItems(ctx, grants), paginate(page, limit, total), nil
}

// ListSent pages through grants the caller issued.
func (s *ShareService) ListSent(ctx context.Context, userID string, page, limit int) ([]*ShareListItem, *Pagination, error) {
	offset, limit := normalizePage(page, limit)
	grants, total, err := s.shares.ListSent(ctx, userID, offset, limit)
	if err != nil {
		return nil, nil, err
	}
	return s.listItems(ctx, grants), paginate(page, limit, total), nil
}

func normalizePage(page, limit int) (offset, lim int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return (page - 1) * limit, limit
}

func paginate(page, limit int, total int64) *Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	return &Pagination{Current: page, Pages: pages, Total: total}
}

func (s *ShareService) listItems(ctx context.Context, grants []*models.ShareGrant) []*ShareListItem {
	items := make([]*ShareListItem, 0, len(grants))
	for _, g := range grants {
		item := &ShareListItem{
			ShareID:     g.ID,
			Permissions: g.Permissions,
			ShareType:   g.ShareType,
			CreatedAt:   g.CreatedAt,
			ExpiresAt:   g.ExpiresAt,
		}
		if entry, err := s.entries.GetByID(ctx, g.EntryID); err == nil {
			summary := entry.Summary()
			item.File = &summary
		}
		if by, err := s.users.GetByID(ctx, g.SharedBy); err == nil {
			item.SharedBy = by
		}
		if g.SharedWith != nil {
			if with, err := s.users.GetByID(ctx, *g.SharedWith); err == nil {
				item.SharedWith = with
			}
		}
		items = append(items, item)
	}
	return items
}

func (s *ShareService) grantView(ctx context.Context, grant *models.ShareGrant) (*GrantView, error) {
	entry, err := s.entries.GetByID(ctx, grant.EntryID)
	if err != nil {
		return nil, err
	}
	if entry.Expired(time.Now()) {
		return nil, common.ErrNotFound
	}

	view := &GrantView{
		File:        entry.Summary(),
		Permissions: grant.Permissions,
		ShareToken:  grant.ShareToken,
	}
	if by, err := s.users.GetByID(ctx, grant.SharedBy); err == nil {
		view.SharedBy = by
	}
	return view, nil
}

func (s *ShareService) emit(userID *string, eventType string, entryID, shareID *string, metadata map[string]any) {
	analytics.Emit(s.log, s.recorder, &models.AnalyticsEvent{
		UserID:    userID,
		EventType: eventType,
		EntryID:   entryID,
		ShareID:   shareID,
		Metadata:  metadata,
	})
}
