package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the merchant's storefront presentation. ID equals the account id.
type Profile struct {
	ID             uuid.UUID `json:"id"`
	StoreName      string    `json:"store_name"`
	Description    string    `json:"description"`
	AvatarURL      string    `json:"avatar_url"`
	BannerURL      string    `json:"banner_url"`
	PrimaryColor   string    `json:"primary_color"`
	SecondaryColor string    `json:"secondary_color"`
	FacebookURL    string    `json:"facebook_url"`
	InstagramUser  string    `json:"instagram_user"`
	TiktokUser     string    `json:"tiktok_user"`
	YapeQRURL      string    `json:"yape_qr_url"`
	PlinQRURL      string    `json:"plin_qr_url"`
	BusinessName   string    `json:"business_name"`
	WhatsappNumber string    `json:"whatsapp_number"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

const (
	DefaultPrimaryColor   = "#0f172a"
	DefaultSecondaryColor = "#ffffff"
)

// DisplayName falls back to the legacy business name.
func (p Profile) DisplayName() string {
	if p.StoreName != "" {
		return p.StoreName
	}
	return p.BusinessName
}

// WithDefaults fills empty colors with the storefront defaults.
func (p Profile) WithDefaults() Profile {
	if p.PrimaryColor == "" {
		p.PrimaryColor = DefaultPrimaryColor
	}
	if p.SecondaryColor == "" {
		p.SecondaryColor = DefaultSecondaryColor
	}
	return p
}

// ProfileRequest is the editable subset of a profile.
type ProfileRequest struct {
	StoreName      string `json:"store_name" validate:"max=120"`
	Description    string `json:"description" validate:"max=500"`
	AvatarURL      string `json:"avatar_url" validate:"omitempty,url"`
	BannerURL      string `json:"banner_url" validate:"omitempty,url"`
	PrimaryColor   string `json:"primary_color" validate:"hexcolor_or_empty"`
	SecondaryColor string `json:"secondary_color" validate:"hexcolor_or_empty"`
	FacebookURL    string `json:"facebook_url" validate:"omitempty,url"`
	InstagramUser  string `json:"instagram_user" validate:"max=60"`
	TiktokUser     string `json:"tiktok_user" validate:"max=60"`
	YapeQRURL      string `json:"yape_qr_url" validate:"omitempty,url"`
	PlinQRURL      string `json:"plin_qr_url" validate:"omitempty,url"`
}

// Apply copies the request onto p, leaving id, legacy fields and timestamps.
func (r ProfileRequest) Apply(p Profile) Profile {
	p.StoreName = r.StoreName
	p.Description = r.Description
	p.AvatarURL = r.AvatarURL
	p.BannerURL = r.BannerURL
	p.PrimaryColor = r.PrimaryColor
	p.SecondaryColor = r.SecondaryColor
	p.FacebookURL = r.FacebookURL
	p.InstagramUser = r.InstagramUser
	p.TiktokUser = r.TiktokUser
	p.YapeQRURL = r.YapeQRURL
	p.PlinQRURL = r.PlinQRURL
	return p
}

type CreateProfileRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Email  string `json:"email" validate:"omitempty,email"`
}
