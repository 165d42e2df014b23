package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category represents a product category
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Product represents a product in the catalog. PriceCents is the persisted
// price in integer minor units; decimal representations exist only at the
// transport boundary.
type Product struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	Description   string     `json:"description" db:"description"`
	PriceCents    int64      `json:"price_cents" db:"price_cents"`
	Quantity      int        `json:"quantity" db:"quantity"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty" db:"category_id"`
	ImageFilename string     `json:"image_filename,omitempty" db:"image_filename"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}
