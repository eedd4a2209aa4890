package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable catalog entry. Quantity is mutated exclusively by the
// ledger; catalog writes never touch it after creation.
type Product struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	Barcode       *string         `json:"barcode,omitempty"`
	CategoryID    *uuid.UUID      `json:"category_id,omitempty"`
	SupplierID    *uuid.UUID      `json:"supplier_id,omitempty"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	Currency      string          `json:"currency"`
	Quantity      int64           `json:"quantity"`
	TrackStock    bool            `json:"track_stock"`
	MinStockLevel int64           `json:"min_stock_level"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Category groups products; slug is unique.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// Supplier is a reference entity for purchase orders and products.
type Supplier struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateProductRequest struct {
	Name          string          `json:"name" validate:"required,max=200"`
	SKU           string          `json:"sku" validate:"required,max=64"`
	Barcode       *string         `json:"barcode,omitempty" validate:"omitempty,max=64"`
	CategoryID    *uuid.UUID      `json:"category_id,omitempty"`
	SupplierID    *uuid.UUID      `json:"supplier_id,omitempty"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	Currency      string          `json:"currency" validate:"omitempty,len=3"`
	Quantity      int64           `json:"quantity" validate:"gte=0"`
	TrackStock    *bool           `json:"track_stock,omitempty"`
	MinStockLevel int64           `json:"min_stock_level" validate:"gte=0"`
}

// UpdateProductRequest deliberately has no quantity field; stock changes go
// through the ledger.
type UpdateProductRequest struct {
	Name          *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Barcode       *string          `json:"barcode,omitempty" validate:"omitempty,max=64"`
	CategoryID    *uuid.UUID       `json:"category_id,omitempty"`
	SupplierID    *uuid.UUID       `json:"supplier_id,omitempty"`
	CostPrice     *decimal.Decimal `json:"cost_price,omitempty"`
	SellingPrice  *decimal.Decimal `json:"selling_price,omitempty"`
	MinStockLevel *int64           `json:"min_stock_level,omitempty" validate:"omitempty,gte=0"`
	TrackStock    *bool            `json:"track_stock,omitempty"`
	IsActive      *bool            `json:"is_active,omitempty"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Slug string `json:"slug" validate:"required,max=100,lowercase"`
}

type CreateSupplierRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

type ListProductsRequest struct {
	IsActive *bool
	Search   string
	Limit    int
	Offset   int
}
