package service

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/teammachinist/tiendaqr/internal/api"
)

var (
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrMissingProof      = errors.New("payment proof image is required")
	ErrNoProof           = errors.New("order has no payment proof")
	ErrNotImage          = errors.New("file must be an image")
	ErrInvalidBucket     = errors.New("invalid bucket")
	ErrStoreNotFound     = errors.New("store not found")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
)

const (
	BucketAvatars  = "avatars"
	BucketProducts = "productos"
	BucketProofs   = "comprobantes"
)

// ValidationError carries per-field messages from request validation.
type ValidationError struct {
	Fields []api.ValidationError
}

func (e *ValidationError) Error() string {
	return api.Messages(e.Fields)
}

func validate(s any) error {
	if errs := api.ValidateStruct(s); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func fieldError(field, message string) error {
	return &ValidationError{Fields: []api.ValidationError{{Field: field, Message: message}}}
}

// Upload is a file received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// checkImage rejects anything whose declared media type is not image/*.
func (u *Upload) checkImage() error {
	if !strings.HasPrefix(strings.ToLower(u.ContentType), "image/") {
		return ErrNotImage
	}
	return nil
}

// ext returns the extension of the original filename, falling back to the
// subtype of the media type.
func (u *Upload) ext() string {
	if e := filepath.Ext(u.Filename); e != "" {
		return strings.ToLower(e)
	}
	if _, sub, ok := strings.Cut(u.ContentType, "/"); ok && sub != "" {
		sub, _, _ = strings.Cut(sub, ";")
		sub, _, _ = strings.Cut(sub, "+")
		return "." + strings.TrimSpace(sub)
	}
	return ""
}
