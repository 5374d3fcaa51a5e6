package recentuploads

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/vaultbox/internal/server/models"
)

// InMemoryRepository is a map-backed ring used in tests.
type InMemoryRepository struct {
	mu      sync.Mutex
	uploads map[string][]*models.RecentUpload // by user id, newest first
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{uploads: make(map[string][]*models.RecentUpload)}
}

func (r *InMemoryRepository) Add(ctx context.Context, upload *models.RecentUpload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *upload
	ring := append(r.uploads[upload.UserID], &cp)
	sort.Slice(ring, func(i, j int) bool {
		return ring[i].CreatedAt.After(ring[j].CreatedAt)
	})
	if len(ring) > KeepPerUser {
		ring = ring[:KeepPerUser]
	}
	r.uploads[upload.UserID] = ring
	return nil
}

func (r *InMemoryRepository) ListByUser(ctx context.Context, userID string) ([]*models.RecentUpload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ring := r.uploads[userID]
	result := make([]*models.RecentUpload, len(ring))
	for i, u := range ring {
		cp := *u
		result[i] = &cp
	}
	return result, nil
}
