package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product statuses.
const (
	StatusDraft        = "draft"
	StatusActive       = "active"
	StatusOutOfStock   = "out_of_stock"
	StatusDiscontinued = "discontinued"
)

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	CategoryID  string `json:"category_id,omitempty"`
	// Prices are NUMERIC in Postgres, scanned as text.
	Price          decimal.Decimal `json:"price"`
	Cost           decimal.Decimal `json:"cost"`
	Stock          int             `json:"stock"`
	TrackInventory bool            `json:"track_inventory"`
	Status         string          `json:"status"`
	SalesCount     int             `json:"sales_count"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Query are list filters.
type Query struct {
	Q          string
	CategoryID string
	Status     string
	Limit      int
	Offset     int
}

// ListResponse represents the paginated response of products.
// swagger:model
type ListResponse struct {
	Q      string    `json:"q,omitempty"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
	Items  []Product `json:"items"`
}

// CreateProductRequest payload of creation.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Name           string `json:"name"            example:"Mechanical Keyboard"`
	SKU            string `json:"sku"             example:"KB-60-RGB"`
	Description    string `json:"description"     example:"RGB 60%"`
	ImageURL       string `json:"image_url"`
	CategoryID     string `json:"category_id"`
	Price          string `json:"price"           example:"199.90"`
	Cost           string `json:"cost"            example:"120.00"`
	Stock          int    `json:"stock"           example:"10"`
	TrackInventory *bool  `json:"track_inventory" example:"true"`
	Status         string `json:"status"          example:"active"`
}

// UpdateProductRequest payload of partial update.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	CategoryID  string `json:"category_id"`
	Price       string `json:"price"`
	Cost        string `json:"cost"`
	Status      string `json:"status"`
}
