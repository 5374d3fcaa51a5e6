package vaultentries

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/vaultbox/internal/common"
	"github.com/dmitrijs2005/vaultbox/internal/server/models"
)

func TestInMemoryConsume(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	entry := &models.VaultEntry{
		ID:            "entry-1",
		OriginalName:  "a.txt",
		StoredName:    "enc-x-a.txt",
		DownloadToken: "tok",
		CreatedAt:     time.Now(),
		ExpiresAt:     time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.Create(ctx, entry))

	got, err := repo.Consume(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "entry-1", got.ID)

	_, err = repo.Consume(ctx, "tok")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = repo.GetByID(ctx, "entry-1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestInMemoryConsume_ConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	require.NoError(t, repo.Create(ctx, &models.VaultEntry{
		ID:            "entry-1",
		DownloadToken: "tok",
		CreatedAt:     time.Now(),
		ExpiresAt:     time.Now().Add(time.Hour),
	}))

	const attempts = 16
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Consume(ctx, "tok")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, common.ErrNotFound)
		}
	}
	assert.Equal(t, 1, succeeded)
}
