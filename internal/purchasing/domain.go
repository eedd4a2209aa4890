package purchasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus enumerates purchase order lifecycle states. received and
// cancelled are terminal.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PurchaseOrder is an order placed with a supplier.
type PurchaseOrder struct {
	ID          uuid.UUID           `json:"id"`
	OrderNumber string              `json:"order_number"`
	SupplierID  uuid.UUID           `json:"supplier_id"`
	Status      OrderStatus         `json:"status"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	UserID      uuid.UUID           `json:"user_id"`
	CreatedAt   time.Time           `json:"created_at"`
	ReceivedAt  *time.Time          `json:"received_at,omitempty"`
	Items       []PurchaseOrderItem `json:"items,omitempty"`
}

// PurchaseOrderItem is one ordered line, owned by its order. On receipt the
// unit cost overwrites the product's cost price.
type PurchaseOrderItem struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

type CreateOrderRequest struct {
	SupplierID uuid.UUID          `json:"supplier_id" validate:"required"`
	Items      []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type OrderItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Quantity  int64           `json:"quantity" validate:"required,gt=0"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

type ListOrdersRequest struct {
	Status *OrderStatus
	Limit  int
	Offset int
}
