package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxAmount is the largest price or order total the NUMERIC(12,2) columns hold.
var MaxAmount = decimal.RequireFromString("9999999999.99")

type Product struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ProductRequest comes from the dashboard create form. Price is kept as text
// so "12.50" and "12.5" round-trip without float noise.
type ProductRequest struct {
	Name        string `json:"name" form:"name" validate:"notblank,max=120"`
	Price       string `json:"price" form:"price" validate:"required"`
	Description string `json:"description" form:"description" validate:"max=1000"`
}

type ProductListParams struct {
	OwnerID    uuid.UUID
	ActiveOnly bool
}
