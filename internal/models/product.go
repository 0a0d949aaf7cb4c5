package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"
)

// Specifications is a free-form string map stored as JSONB.
type Specifications map[string]string

// Value implements driver.Valuer for JSONB storage.
func (s Specifications) Value() (driver.Value, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB retrieval.
func (s *Specifications) Scan(src interface{}) error {
	if src == nil {
		*s = Specifications{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return errors.New("specifications: expected []byte from driver")
	}
	return json.Unmarshal(b, s)
}

// Product is a catalog item group deals are created against.
type Product struct {
	ID              string         `db:"id" json:"id"`
	Name            string         `db:"name" json:"name"`
	Description     string         `db:"description" json:"description"`
	CategoryID      string         `db:"category_id" json:"categoryId"`
	BasePrice       float64        `db:"base_price" json:"basePrice"`
	MinimumQuantity int            `db:"minimum_quantity" json:"minimumQuantity"`
	MaxParticipants *int           `db:"max_participants" json:"maxParticipants,omitempty"`
	ImageURLs       pq.StringArray `db:"image_urls" json:"imageUrls"`
	Specifications  Specifications `db:"specifications" json:"specifications"`
	IsActive        bool           `db:"is_active" json:"isActive"`
	CreatedBy       string         `db:"created_by" json:"createdBy"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time      `db:"updated_at" json:"-"`
}

// ProductWithCategory is a product joined with its category name for listings.
type ProductWithCategory struct {
	Product
	CategoryName string `db:"category_name" json:"categoryName"`
}
