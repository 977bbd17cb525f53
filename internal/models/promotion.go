package models

import (
	"time"

	"github.com/google/uuid"
)

// AdPrice is the flat fee a vendor pays to run a home-board promotion.
const AdPrice = 80.0

type Promotion struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ShopName    string    `db:"shop_name" json:"shop_name"`
	Title       string    `db:"title" json:"title" validate:"required"`
	Description string    `db:"description" json:"description" validate:"required"`
	BgColor     string    `db:"bg_color" json:"bg_color"`
	BannerURL   string    `db:"banner_url" json:"banner_url"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
