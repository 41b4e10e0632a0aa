package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfnt/resize"

	"github.com/teammachinist/tiendaqr/internal/logger"
	"github.com/teammachinist/tiendaqr/services/files/internal/model"
	"github.com/teammachinist/tiendaqr/services/files/internal/repository"
	"github.com/teammachinist/tiendaqr/services/files/internal/storage"
)

var (
	ErrInvalidBucket = errors.New("invalid bucket")
	ErrInvalidName   = errors.New("invalid object name")
	ErrNotImage      = errors.New("file must be an image")
	ErrTooLarge      = errors.New("file too large")
	ErrEmptyFile     = errors.New("file is empty")
	ErrFileNotFound  = errors.New("file not found")
	ErrInvalidTTL    = errors.New("invalid ttl")
	ErrFileExists    = errors.New("file already exists")
)

const (
	thumbnailPrefix  = "compressed-"
	thumbnailWidth   = 400
	thumbnailHeight  = 400
	thumbnailQuality = 75
	maxSignedTTL     = 7 * 24 * time.Hour
)

// DefaultBuckets are the storefront buckets: logos and product photos are
// public, payment proofs are private.
var DefaultBuckets = []storage.Bucket{
	{Name: "avatars", Public: true},
	{Name: "productos", Public: true},
	{Name: "comprobantes", Public: false},
}

type UploadInput struct {
	Bucket      string
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type FileServiceInterface interface {
	Upload(ctx context.Context, in UploadInput) (model.File, error)
	GetFile(ctx context.Context, id uuid.UUID) (model.File, error)
	Remove(ctx context.Context, bucket, name string) error
	SignedURL(ctx context.Context, bucket, name string, ttl time.Duration) (model.SignedURL, error)
}

type FileService struct {
	repo     repository.FileRepositoryInterface
	storage  storage.ObjectStorage
	buckets  map[string]storage.Bucket
	maxBytes int64
	now      func() time.Time
}

func NewFileService(
	repo repository.FileRepositoryInterface,
	objects storage.ObjectStorage,
	buckets []storage.Bucket,
	maxBytes int64,
) FileServiceInterface {
	byName := make(map[string]storage.Bucket, len(buckets))
	for _, b := range buckets {
		byName[b.Name] = b
	}
	return &FileService{
		repo:     repo,
		storage:  objects,
		buckets:  byName,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

func (s *FileService) bucket(name string) (storage.Bucket, error) {
	b, ok := s.buckets[name]
	if !ok {
		return storage.Bucket{}, fmt.Errorf("%w: %s", ErrInvalidBucket, name)
	}
	return b, nil
}

// typeExt maps "image/svg+xml; charset=x" to ".svg".
func typeExt(contentType string) string {
	sub := strings.TrimPrefix(contentType, "image/")
	sub, _, _ = strings.Cut(sub, ";")
	sub, _, _ = strings.Cut(sub, "+")
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return ""
	}
	return "." + sub
}

// CleanName rejects names that would escape the bucket root.
func CleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return "", ErrInvalidName
	}
	if strings.HasPrefix(name, thumbnailPrefix) {
		return "", ErrInvalidName
	}
	return name, nil
}

func (s *FileService) Upload(ctx context.Context, in UploadInput) (model.File, error) {
	b, err := s.bucket(in.Bucket)
	if err != nil {
		return model.File{}, err
	}
	contentType := strings.ToLower(strings.TrimSpace(in.ContentType))
	if !strings.HasPrefix(contentType, "image/") {
		return model.File{}, ErrNotImage
	}

	name := in.Name
	if name == "" {
		name = uuid.Must(uuid.NewV7()).String() + typeExt(contentType)
	}
	name, err = CleanName(name)
	if err != nil {
		return model.File{}, err
	}

	// private objects are write-once
	if !b.Public {
		switch err := s.storage.StatObject(ctx, b.Name, name); {
		case err == nil:
			return model.File{}, fmt.Errorf("%w: %s/%s", ErrFileExists, b.Name, name)
		case !errors.Is(err, storage.ErrObjectNotFound):
			return model.File{}, err
		}
	}

	// read one byte past the limit to detect oversized bodies
	data, err := io.ReadAll(io.LimitReader(in.Body, s.maxBytes+1))
	if err != nil {
		return model.File{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return model.File{}, ErrTooLarge
	}
	if len(data) == 0 {
		return model.File{}, ErrEmptyFile
	}

	if err := s.storage.PutObject(ctx, b.Name, name, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return model.File{}, err
	}
	logger.InfoCtx(ctx, "Object stored", "bucket", b.Name, "name", name, "size", len(data))

	f := model.File{
		ID:          uuid.Must(uuid.NewV7()),
		Bucket:      b.Name,
		Path:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		CreatedAt:   s.now().UTC(),
	}

	if b.Public {
		f.FileURI = s.storage.PublicURL(b.Name, name)
		f.FileThumbnailURI = s.storeThumbnail(ctx, b.Name, name, data)
	}

	created, err := s.repo.CreateFile(ctx, f)
	if err != nil {
		logger.ErrorCtx(ctx, "Failed to save file record", "bucket", b.Name, "name", name, "error", err.Error())
		return model.File{}, err
	}
	return created, nil
}

// storeThumbnail is best-effort; any failure leaves the thumbnail empty.
func (s *FileService) storeThumbnail(ctx context.Context, bucket, name string, data []byte) string {
	thumb, err := Thumbnail(data)
	if err != nil {
		logger.WarnCtx(ctx, "Thumbnail skipped", "bucket", bucket, "name", name, "error", err.Error())
		return ""
	}

	thumbName := thumbnailPrefix + name
	if err := s.storage.PutObject(ctx, bucket, thumbName, "image/jpeg", bytes.NewReader(thumb), int64(len(thumb))); err != nil {
		logger.WarnCtx(ctx, "Failed to upload thumbnail", "bucket", bucket, "name", thumbName, "error", err.Error())
		return ""
	}
	return s.storage.PublicURL(bucket, thumbName)
}

// Thumbnail decodes a jpeg, png or gif and re-encodes it as a bounded jpeg.
func Thumbnail(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := resize.Thumbnail(thumbnailWidth, thumbnailHeight, img, resize.Lanczos3)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, resized, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return out.Bytes(), nil
}

func (s *FileService) GetFile(ctx context.Context, id uuid.UUID) (model.File, error) {
	f, err := s.repo.GetFileByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.File{}, ErrFileNotFound
		}
		return model.File{}, err
	}
	return f, nil
}

func (s *FileService) Remove(ctx context.Context, bucket, name string) error {
	b, err := s.bucket(bucket)
	if err != nil {
		return err
	}
	if name, err = CleanName(name); err != nil {
		return err
	}

	if err := s.storage.StatObject(ctx, b.Name, name); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return ErrFileNotFound
		}
		return err
	}
	if err := s.storage.RemoveObject(ctx, b.Name, name); err != nil {
		return err
	}
	if b.Public {
		if err := s.storage.RemoveObject(ctx, b.Name, thumbnailPrefix+name); err != nil {
			logger.WarnCtx(ctx, "Failed to remove thumbnail", "bucket", b.Name, "name", name, "error", err.Error())
		}
	}
	if err := s.repo.DeleteByPath(ctx, b.Name, name); err != nil {
		logger.WarnCtx(ctx, "Object removed but file record kept", "bucket", b.Name, "name", name, "error", err.Error())
	}

	logger.InfoCtx(ctx, "Object removed", "bucket", b.Name, "name", name)
	return nil
}

func (s *FileService) SignedURL(ctx context.Context, bucket, name string, ttl time.Duration) (model.SignedURL, error) {
	b, err := s.bucket(bucket)
	if err != nil {
		return model.SignedURL{}, err
	}
	if name, err = CleanName(name); err != nil {
		return model.SignedURL{}, err
	}
	if ttl < time.Second || ttl > maxSignedTTL {
		return model.SignedURL{}, ErrInvalidTTL
	}

	if err := s.storage.StatObject(ctx, b.Name, name); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return model.SignedURL{}, ErrFileNotFound
		}
		return model.SignedURL{}, err
	}

	u, err := s.storage.PresignedGetObject(ctx, b.Name, name, ttl)
	if err != nil {
		return model.SignedURL{}, err
	}
	return model.SignedURL{URL: u, ExpiresAt: s.now().Add(ttl).UTC()}, nil
}
