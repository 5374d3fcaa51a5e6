package shares

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/vaultbox/internal/common"
	"github.com/dmitrijs2005/vaultbox/internal/server/models"
)

// InMemoryRepository is a map-backed registry used in tests. A single
// mutex makes the increment-and-check operations atomic, matching the
// guarantee the SQL implementation gets from guarded UPDATEs.
type InMemoryRepository struct {
	mu     sync.Mutex
	grants map[string]*models.ShareGrant // by id
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{grants: make(map[string]*models.ShareGrant)}
}

func cloneGrant(g *models.ShareGrant) *models.ShareGrant {
	cp := *g
	if g.QR != nil {
		qr := *g.QR
		cp.QR = &qr
	}
	return &cp
}

func (r *InMemoryRepository) Create(ctx context.Context, grant *models.ShareGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grants[grant.ID] = cloneGrant(grant)
	return nil
}

func (r *InMemoryRepository) GetActiveByToken(ctx context.Context, token string, now time.Time) (*models.ShareGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.grants {
		if g.ShareToken == token && g.IsActive && !g.Expired(now) {
			return cloneGrant(g), nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *InMemoryRepository) GetByIDAndGranter(ctx context.Context, id, granterID string) (*models.ShareGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.grants[id]
	if !ok || g.SharedBy != granterID {
		return nil, common.ErrNotFound
	}
	return cloneGrant(g), nil
}

func (r *InMemoryRepository) Touch(ctx context.Context, id string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.grants[id]
	if !ok || !g.IsActive {
		return common.ErrNotFound
	}
	t := now
	g.LastAccessed = &t
	return nil
}

func (r *InMemoryRepository) RegisterQRAccess(ctx context.Context, id string, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.grants[id]
	if !ok || !g.IsActive || g.QR == nil || !g.QR.Enabled {
		return 0, common.ErrNotFound
	}
	if g.QR.MaxAccess != nil && g.QR.AccessCount >= *g.QR.MaxAccess {
		return 0, common.ErrAccessLimitExceeded
	}
	g.QR.AccessCount++
	t := now
	g.LastAccessed = &t
	return g.QR.AccessCount, nil
}

func (r *InMemoryRepository) RegisterDownload(ctx context.Context, id string, includeQRAccess bool, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.grants[id]
	if !ok || !g.IsActive {
		return common.ErrNotFound
	}
	if includeQRAccess {
		if g.QR == nil || !g.QR.Enabled {
			return common.ErrNotFound
		}
		if g.QR.MaxAccess != nil && g.QR.AccessCount >= *g.QR.MaxAccess {
			return common.ErrAccessLimitExceeded
		}
		g.QR.AccessCount++
	}
	g.DownloadCount++
	t := now
	g.LastAccessed = &t
	return nil
}

func (r *InMemoryRepository) Revoke(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.grants[id]; ok {
		g.IsActive = false
	}
	return nil
}

func (r *InMemoryRepository) ListReceived(ctx context.Context, userID string, now time.Time, offset, limit int) ([]*models.ShareGrant, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.ShareGrant
	for _, g := range r.grants {
		if g.SharedWith != nil && *g.SharedWith == userID && g.IsActive && !g.Expired(now) {
			matched = append(matched, cloneGrant(g))
		}
	}
	return page(matched, offset, limit)
}

func (r *InMemoryRepository) ListSent(ctx context.Context, userID string, offset, limit int) ([]*models.ShareGrant, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*models.ShareGrant
	for _, g := range r.grants {
		if g.SharedBy == userID && g.IsActive {
			matched = append(matched, cloneGrant(g))
		}
	}
	return page(matched, offset, limit)
}

func page(grants []*models.ShareGrant, offset, limit int) ([]*models.ShareGrant, int64, error) {
	sort.Slice(grants, func(i, j int) bool {
		return grants[i].CreatedAt.After(grants[j].CreatedAt)
	})
	total := int64(len(grants))
	if offset >= len(grants) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(grants) {
		end = len(grants)
	}
	return grants[offset:end], total, nil
}
