package models

import "time"

// Category groups products in the catalog.
type Category struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	ImageURL    *string   `db:"image_url" json:"imageUrl,omitempty"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"-"`
}

// CategoryWithCount is a category joined with the number of active products in it.
type CategoryWithCount struct {
	Category
	ProductCount int `db:"product_count" json:"productCount"`
}
