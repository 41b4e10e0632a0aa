package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teammachinist/tiendaqr/services/files/internal/model"
)

func TestMemoryFileRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryFileRepository()

	first := model.File{ID: uuid.New(), Bucket: "avatars", Path: "a.png", Size: 1, CreatedAt: time.Now()}
	_, err := repo.CreateFile(ctx, first)
	require.NoError(t, err)

	// same bucket and path replaces the row
	second := first
	second.ID = uuid.New()
	second.Size = 2
	_, err = repo.CreateFile(ctx, second)
	require.NoError(t, err)

	_, err = repo.GetFileByID(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := repo.GetFileByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Size)

	require.NoError(t, repo.DeleteByPath(ctx, "avatars", "a.png"))
	_, err = repo.GetFileByID(ctx, second.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
