package model

import (
	"time"

	"github.com/google/uuid"
)

// File is the metadata row of one stored object. FileURI is empty for
// objects in private buckets.
type File struct {
	ID               uuid.UUID `json:"id"`
	Bucket           string    `json:"bucket"`
	Path             string    `json:"path"`
	FileURI          string    `json:"file_uri"`
	FileThumbnailURI string    `json:"file_thumbnail_uri"`
	ContentType      string    `json:"content_type"`
	Size             int64     `json:"size"`
	CreatedAt        time.Time `json:"created_at"`
}

type SignedURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
