package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/teammachinist/tiendaqr/internal/logger"
	"github.com/teammachinist/tiendaqr/services/core/internal/clients"
	"github.com/teammachinist/tiendaqr/services/core/internal/model"
	"github.com/teammachinist/tiendaqr/services/core/internal/repository"
)

type ProfileServiceInterface interface {
	GetOwnProfile(ctx context.Context, callerID uuid.UUID) (model.Profile, error)
	SaveProfile(ctx context.Context, callerID uuid.UUID, req model.ProfileRequest) (model.Profile, error)
	// UploadImage stores an image in a public bucket and returns its URL.
	UploadImage(ctx context.Context, callerID uuid.UUID, bucket string, file *Upload) (string, error)
	// EnsureProfile creates the empty profile of a new account. It is idempotent.
	EnsureProfile(ctx context.Context, req model.CreateProfileRequest) (bool, error)
}

type ProfileService struct {
	profileRepo repository.ProfileRepositoryInterface
	fileClient  clients.FileClientInterface
	catalog     CatalogServiceInterface
	now         func() time.Time
}

func NewProfileService(
	profileRepo repository.ProfileRepositoryInterface,
	fileClient clients.FileClientInterface,
	catalog CatalogServiceInterface,
) ProfileServiceInterface {
	return &ProfileService{
		profileRepo: profileRepo,
		fileClient:  fileClient,
		catalog:     catalog,
		now:         time.Now,
	}
}

func (s *ProfileService) GetOwnProfile(ctx context.Context, callerID uuid.UUID) (model.Profile, error) {
	p, err := s.profileRepo.GetProfileByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, err
	}
	return p.WithDefaults(), nil
}

// SaveProfile writes the editable fields of the caller's own profile,
// creating the row first if signup never did. The row written is always the
// one keyed by callerID.
func (s *ProfileService) SaveProfile(ctx context.Context, callerID uuid.UUID, req model.ProfileRequest) (model.Profile, error) {
	if err := validate(req); err != nil {
		return model.Profile{}, err
	}

	current, err := s.profileRepo.GetProfileByID(ctx, callerID)
	if errors.Is(err, repository.ErrNotFound) {
		if _, err := s.profileRepo.CreateProfile(ctx, callerID); err != nil {
			return model.Profile{}, fmt.Errorf("failed to create profile: %w", err)
		}
		current = model.Profile{ID: callerID}
	} else if err != nil {
		return model.Profile{}, err
	}

	updated, err := s.profileRepo.UpdateProfile(ctx, req.Apply(current))
	if err != nil {
		return model.Profile{}, fmt.Errorf("failed to update profile: %w", err)
	}

	s.catalog.Invalidate(ctx, callerID)
	return updated.WithDefaults(), nil
}

// imageName builds the object name for a public image.
func imageName(bucket string, callerID uuid.UUID, file *Upload, now time.Time) string {
	if bucket == BucketProducts {
		base := strings.ReplaceAll(filepath.Base(file.Filename), " ", "_")
		if base == "." || base == "/" || base == "" {
			base = "image" + file.ext()
		}
		return fmt.Sprintf("%d-%s", now.UnixMilli(), base)
	}
	return fmt.Sprintf("%s-%s%s", callerID, uuid.NewString(), file.ext())
}

func uploadPublicImage(ctx context.Context, fc clients.FileClientInterface, bucket, name string, file *Upload) (string, error) {
	uploaded, err := fc.Upload(ctx, bucket, name, file.ContentType, file.Body)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	if uploaded.FileURI == "" {
		return "", fmt.Errorf("%w: no public URL for %s/%s", clients.ErrUpstream, bucket, name)
	}
	return uploaded.FileURI, nil
}

func (s *ProfileService) UploadImage(ctx context.Context, callerID uuid.UUID, bucket string, file *Upload) (string, error) {
	if bucket != BucketAvatars && bucket != BucketProducts {
		return "", ErrInvalidBucket
	}
	if file == nil || file.Body == nil {
		return "", fieldError("file", "file is required")
	}
	if err := file.checkImage(); err != nil {
		return "", err
	}

	url, err := uploadPublicImage(ctx, s.fileClient, bucket, imageName(bucket, callerID, file, s.now()), file)
	if err != nil {
		return "", err
	}
	logger.InfoCtx(ctx, "Image uploaded", "bucket", bucket, "caller_id", callerID)
	return url, nil
}

func (s *ProfileService) EnsureProfile(ctx context.Context, req model.CreateProfileRequest) (bool, error) {
	if err := validate(req); err != nil {
		return false, err
	}
	id, err := uuid.Parse(req.UserID)
	if err != nil {
		return false, fieldError("user_id", "user_id must be a valid UUID")
	}

	created, err := s.profileRepo.CreateProfile(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to create profile: %w", err)
	}
	if created {
		logger.InfoCtx(ctx, "Profile created", "user_id", id)
	}
	return created, nil
}
