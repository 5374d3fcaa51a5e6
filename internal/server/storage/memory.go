package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/vaultbox/internal/common"
)

// MemoryBlobStore is an in-process BlobStore used in tests and local
// development. Semantics mirror the S3 adapter, including validation and
// the error category for missing objects.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func (s *MemoryBlobStore) Put(ctx context.Context, name string, data []byte, contentType string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: blob name is blank", common.ErrValidation)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: blob is empty", common.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.blobs[name] = cp
	return nil
}

func (s *MemoryBlobStore) Get(ctx context.Context, name string) ([]byte, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: blob name is blank", common.ErrValidation)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: object missing: %s", common.ErrUpstreamStorage, name)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (s *MemoryBlobStore) Delete(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: blob name is blank", common.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, name)
	return nil
}

// Len reports the number of stored blobs; test helper.
func (s *MemoryBlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
