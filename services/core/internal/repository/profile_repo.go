package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/teammachinist/tiendaqr/services/core/internal/database"
	"github.com/teammachinist/tiendaqr/services/core/internal/model"
)

type ProfileRepositoryInterface interface {
	GetProfileByID(ctx context.Context, id uuid.UUID) (model.Profile, error)
	// CreateProfile inserts an empty profile and reports whether a row was created.
	CreateProfile(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateProfile(ctx context.Context, p model.Profile) (model.Profile, error)
}

type ProfileRepository struct {
	db database.DBTX
}

func NewProfileRepository(db database.DBTX) ProfileRepositoryInterface {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, store_name, description, avatar_url, banner_url, primary_color,
	secondary_color, facebook_url, instagram_user, tiktok_user, yape_qr_url, plin_qr_url,
	business_name, whatsapp_number, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (model.Profile, error) {
	var p model.Profile
	err := row.Scan(
		&p.ID, &p.StoreName, &p.Description, &p.AvatarURL, &p.BannerURL, &p.PrimaryColor,
		&p.SecondaryColor, &p.FacebookURL, &p.InstagramUser, &p.TiktokUser, &p.YapeQRURL, &p.PlinQRURL,
		&p.BusinessName, &p.WhatsappNumber, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *ProfileRepository) GetProfileByID(ctx context.Context, id uuid.UUID) (model.Profile, error) {
	row := r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	p, err := scanProfile(row)
	if err != nil {
		return model.Profile{}, notFound(err)
	}
	return p, nil
}

func (r *ProfileRepository) CreateProfile(ctx context.Context, id uuid.UUID) (bool, error) {
	now := time.Now().UTC()
	tag, err := r.db.Exec(ctx, `
		INSERT INTO profiles (id, created_at, updated_at)
		VALUES ($1, $2, $2)
		ON CONFLICT (id) DO NOTHING`, id, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ProfileRepository) UpdateProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE profiles SET
			store_name = $2, description = $3, avatar_url = $4, banner_url = $5,
			primary_color = $6, secondary_color = $7, facebook_url = $8,
			instagram_user = $9, tiktok_user = $10, yape_qr_url = $11, plin_qr_url = $12,
			updated_at = $13
		WHERE id = $1
		RETURNING `+profileColumns,
		p.ID, p.StoreName, p.Description, p.AvatarURL, p.BannerURL,
		p.PrimaryColor, p.SecondaryColor, p.FacebookURL,
		p.InstagramUser, p.TiktokUser, p.YapeQRURL, p.PlinQRURL,
		time.Now().UTC(),
	)
	updated, err := scanProfile(row)
	if err != nil {
		return model.Profile{}, notFound(err)
	}
	return updated, nil
}
