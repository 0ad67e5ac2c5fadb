// internal/domain/product/entity.go
package product

import "time"

// Product is a catalog entry owned by the backend
type Product struct {
	ID          string    `json:"id" validate:"required"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price" validate:"gte=0"` // Integer currency unit
	Category    string    `json:"category"`
	Brand       string    `json:"brand"`
	Images      []string  `json:"images"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PrimaryImage returns the first image URL or an empty string
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// IsPurchasable reports whether the product may be added to a cart
func (p *Product) IsPurchasable() bool {
	return p.IsActive
}

// Inventory tracks stock for one product
type Inventory struct {
	ID           string    `json:"id" validate:"required"`
	ProductID    string    `json:"productId" validate:"required"`
	Quantity     int       `json:"quantity"`
	MinThreshold int       `json:"minThreshold"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

// IsLowStock reports whether stock has fallen to the reorder threshold
func (i *Inventory) IsLowStock() bool {
	return i.Quantity <= i.MinThreshold
}

// CreateRequest is the body for creating a product
type CreateRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Price       int64    `json:"price" validate:"gte=0"`
	Category    string   `json:"category" validate:"required"`
	Brand       string   `json:"brand"`
	Images      []string `json:"images" validate:"omitempty,dive,url"`
	IsActive    bool     `json:"isActive"`
}

// UpdateRequest is a partial product update; nil fields are left untouched
type UpdateRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string  `json:"description,omitempty"`
	Price       *int64   `json:"price,omitempty" validate:"omitempty,gte=0"`
	Category    *string  `json:"category,omitempty"`
	Brand       *string  `json:"brand,omitempty"`
	Images      []string `json:"images,omitempty" validate:"omitempty,dive,url"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

// InventoryUpdate is a partial stock update
type InventoryUpdate struct {
	Quantity     *int `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	MinThreshold *int `json:"minThreshold,omitempty" validate:"omitempty,gte=0"`
}

// Filter narrows a product listing
type Filter struct {
	Search   string
	Category string
	Brand    string
	Skip     int
	Take     int
}

// InventoryFilter narrows an inventory listing
type InventoryFilter struct {
	LowStock bool
	Skip     int
	Take     int
}
