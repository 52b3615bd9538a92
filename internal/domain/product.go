package domain

import "time"

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	CategoryID  string    `json:"category_id,omitempty"`
	Brand       string    `json:"brand,omitempty"`
	Stock       int64     `json:"stock"`
	Images      []string  `json:"images,omitempty"`
	Rating      int32     `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UpdateProductInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *int64   `json:"price"`
	CategoryID  *string  `json:"category_id"`
	Brand       *string  `json:"brand"`
	Stock       *int64   `json:"stock"`
	Images      []string `json:"images"`
	Rating      *int32   `json:"rating"`
}
