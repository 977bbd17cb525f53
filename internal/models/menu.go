package models

import (
	"time"

	"github.com/google/uuid"
)

type Shop struct {
	Name   string `db:"name" json:"name"`
	IsOpen bool   `db:"is_open" json:"is_open"`
}

type MenuItem struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ShopName    string    `db:"shop_name" json:"shop_name"`
	Name        string    `db:"name" json:"name" validate:"required"`
	Price       float64   `db:"price" json:"price" validate:"gt=0"`
	Category    string    `db:"category" json:"category"`
	IsVeg       bool      `db:"is_veg" json:"is_veg"`
	IsAvailable bool      `db:"is_available" json:"is_available"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
