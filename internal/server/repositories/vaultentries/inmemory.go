package vaultentries

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/vaultbox/internal/common"
	"github.com/dmitrijs2005/vaultbox/internal/server/models"
)

// InMemoryRepository is a map-backed registry used in tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]models.VaultEntry // by id
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{entries: make(map[string]models.VaultEntry)}
}

func (r *InMemoryRepository) Create(ctx context.Context, entry *models.VaultEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = *entry
	return nil
}

func (r *InMemoryRepository) GetByToken(ctx context.Context, token string) (*models.VaultEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.DownloadToken == token {
			cp := e
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.VaultEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := e
	return &cp, nil
}

func (r *InMemoryRepository) GetByIDAndOwner(ctx context.Context, id, ownerID string) (*models.VaultEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok || e.OwnerID != ownerID {
		return nil, common.ErrNotFound
	}
	cp := e
	return &cp, nil
}

func (r *InMemoryRepository) Consume(ctx context.Context, token string) (*models.VaultEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.entries {
		if e.DownloadToken == token {
			cp := e
			delete(r.entries, id)
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *InMemoryRepository) DeleteExpired(ctx context.Context, now time.Time) ([]*models.VaultEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed []*models.VaultEntry
	for id, e := range r.entries {
		if e.Expired(now) {
			cp := e
			removed = append(removed, &cp)
			delete(r.entries, id)
		}
	}
	return removed, nil
}
