package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/vaultbox/internal/common"
)

// ShareType discriminates who can redeem a grant.
type ShareType string

const (
	// ShareTypeUser targets one known identity.
	ShareTypeUser ShareType = "user"
	// ShareTypeQR targets anonymous holders of the QR image.
	ShareTypeQR ShareType = "qr"
	// ShareTypeBoth targets a known identity and QR holders.
	ShareTypeBoth ShareType = "both"
)

// SharePermissions bounds what a grant holder may do.
type SharePermissions struct {
	CanView     bool
	CanDownload bool
}

// QRState is the QR sub-record of a grant. Present exactly when the grant's
// type is qr or both; Validate enforces this.
type QRState struct {
	Enabled bool
	// Image is the rendered QR code as a base64 PNG data URI.
	Image string
	// AccessCount counts QR resolutions. Monotonically non-decreasing;
	// incremented atomically by the registry.
	AccessCount int64
	// MaxAccess optionally caps QR resolutions.
	MaxAccess *int64
	IsPublic  bool
}

// ShareGrant describes one bounded-access delegation of a VaultEntry.
//
// Grants are soft-deleted: revocation flips IsActive and the record stays
// for audit. An inactive, expired, or access-exhausted grant resolves to
// "not found" for callers; the three terminal states are indistinguishable
// externally.
type ShareGrant struct {
	ID      string
	EntryID string
	// SharedBy is the granter; only they may revoke.
	SharedBy string
	// SharedWith is the target identity for user/both grants.
	SharedWith *string

	// ShareToken is the external handle, 64 hex characters.
	ShareToken string

	Permissions SharePermissions
	ShareType   ShareType
	QR          *QRState

	ExpiresAt *time.Time
	IsActive  bool

	// DownloadCount counts downloads through this grant. Monotonically
	// non-decreasing.
	DownloadCount int64
	LastAccessed  *time.Time
	CreatedAt     time.Time
}

// Validate checks the variant invariants between ShareType, SharedWith and
// the QR sub-record.
func (g ShareGrant) Validate() error {
	switch g.ShareType {
	case ShareTypeUser:
		if g.SharedWith == nil || *g.SharedWith == "" {
			return fmt.Errorf("%w: user share requires a target identity", common.ErrValidation)
		}
	case ShareTypeQR:
		if g.QR == nil || !g.QR.Enabled {
			return fmt.Errorf("%w: qr share requires an enabled qr record", common.ErrValidation)
		}
	case ShareTypeBoth:
		if g.SharedWith == nil || *g.SharedWith == "" {
			return fmt.Errorf("%w: combined share requires a target identity", common.ErrValidation)
		}
		if g.QR == nil || !g.QR.Enabled {
			return fmt.Errorf("%w: combined share requires an enabled qr record", common.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown share type %q", common.ErrValidation, g.ShareType)
	}
	return nil
}

// Expired reports whether the grant is past its optional expiry.
func (g ShareGrant) Expired(now time.Time) bool {
	return g.ExpiresAt != nil && now.After(*g.ExpiresAt)
}

// QRCapable reports whether the grant can be redeemed through the QR path.
func (g ShareGrant) QRCapable() bool {
	return (g.ShareType == ShareTypeQR || g.ShareType == ShareTypeBoth) && g.QR != nil && g.QR.Enabled
}
