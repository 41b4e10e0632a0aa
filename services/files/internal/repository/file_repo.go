package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/teammachinist/tiendaqr/internal"
	"github.com/teammachinist/tiendaqr/services/files/internal/model"
)

var ErrNotFound = errors.New("not found")

type FileRepositoryInterface interface {
	// CreateFile stores the row, replacing an earlier one with the same bucket and path.
	CreateFile(ctx context.Context, f model.File) (model.File, error)
	GetFileByID(ctx context.Context, id uuid.UUID) (model.File, error)
	DeleteByPath(ctx context.Context, bucket, path string) error
}

type FileRepository struct {
	db internal.DBTX
}

func NewFileRepository(db internal.DBTX) FileRepositoryInterface {
	return &FileRepository{db: db}
}

const fileColumns = `id, bucket, path, file_uri, file_thumbnail_uri, content_type, size, created_at`

func scanFile(row pgx.Row) (model.File, error) {
	var f model.File
	err := row.Scan(&f.ID, &f.Bucket, &f.Path, &f.FileURI, &f.FileThumbnailURI, &f.ContentType, &f.Size, &f.CreatedAt)
	return f, err
}

func (r *FileRepository) CreateFile(ctx context.Context, f model.File) (model.File, error) {
	row := r.db.QueryRow(ctx, `
        INSERT INTO files (`+fileColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (bucket, path) DO UPDATE SET
            id = EXCLUDED.id,
            file_uri = EXCLUDED.file_uri,
            file_thumbnail_uri = EXCLUDED.file_thumbnail_uri,
            content_type = EXCLUDED.content_type,
            size = EXCLUDED.size,
            created_at = EXCLUDED.created_at
        RETURNING `+fileColumns,
		f.ID, f.Bucket, f.Path, f.FileURI, f.FileThumbnailURI, f.ContentType, f.Size, f.CreatedAt)

	created, err := scanFile(row)
	if err != nil {
		return model.File{}, fmt.Errorf("failed to insert file: %w", err)
	}
	return created, nil
}

func (r *FileRepository) GetFileByID(ctx context.Context, id uuid.UUID) (model.File, error) {
	f, err := scanFile(r.db.QueryRow(ctx, `SELECT `+fileColumns+` FROM files WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.File{}, ErrNotFound
		}
		return model.File{}, fmt.Errorf("failed to get file: %w", err)
	}
	return f, nil
}

func (r *FileRepository) DeleteByPath(ctx context.Context, bucket, path string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM files WHERE bucket = $1 AND path = $2`, bucket, path); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// MemoryFileRepository is the in-process variant used without DATABASE_URL.
type MemoryFileRepository struct {
	mu    sync.RWMutex
	files map[uuid.UUID]model.File
}

func NewMemoryFileRepository() *MemoryFileRepository {
	return &MemoryFileRepository{files: map[uuid.UUID]model.File{}}
}

func (m *MemoryFileRepository) CreateFile(_ context.Context, f model.File) (model.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, existing := range m.files {
		if existing.Bucket == f.Bucket && existing.Path == f.Path {
			delete(m.files, id)
		}
	}
	m.files[f.ID] = f
	return f, nil
}

func (m *MemoryFileRepository) GetFileByID(_ context.Context, id uuid.UUID) (model.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[id]
	if !ok {
		return model.File{}, ErrNotFound
	}
	return f, nil
}

func (m *MemoryFileRepository) DeleteByPath(_ context.Context, bucket, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, f := range m.files {
		if f.Bucket == bucket && f.Path == path {
			delete(m.files, id)
		}
	}
	return nil
}
