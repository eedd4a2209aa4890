package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates accepted tender types.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

// Valid reports whether the payment method is a known value.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

// SaleStatus enumerates sale lifecycle states. A sale is immutable after
// creation except for these transitions, driven by returns.
type SaleStatus string

const (
	SaleStatusCompleted     SaleStatus = "completed"
	SaleStatusRefunded      SaleStatus = "refunded"
	SaleStatusPartialRefund SaleStatus = "partial_refund"
)

// Sale is a durable sales transaction. Monetary fields satisfy
// total == subtotal + tax_amount - discount_amount; they are derived
// server-side from the line items, never trusted from the client.
type Sale struct {
	ID             uuid.UUID       `json:"id"`
	InvoiceNumber  string          `json:"invoice_number"`
	CustomerID     *uuid.UUID      `json:"customer_id,omitempty"`
	UserID         uuid.UUID       `json:"user_id"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	Status         SaleStatus      `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	Items          []SaleItem      `json:"items,omitempty"`
}

// SaleItem is one cart line, owned by exactly one sale and created
// atomically with it.
type SaleItem struct {
	ID         uuid.UUID       `json:"id"`
	SaleID     uuid.UUID       `json:"sale_id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Customer carries loyalty aggregates maintained by completed sales.
type Customer struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Email         *string         `json:"email,omitempty"`
	Phone         *string         `json:"phone,omitempty"`
	LoyaltyPoints int64           `json:"loyalty_points"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Return records restocked quantity against a prior sale.
type Return struct {
	ID           uuid.UUID       `json:"id"`
	SaleID       uuid.UUID       `json:"sale_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	Quantity     int64           `json:"quantity"`
	Reason       string          `json:"reason"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	UserID       uuid.UUID       `json:"user_id"`
	CreatedAt    time.Time       `json:"created_at"`
}

type CreateSaleRequest struct {
	CustomerID     *uuid.UUID        `json:"customer_id,omitempty"`
	PaymentMethod  PaymentMethod     `json:"payment_method" validate:"required"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	Lines          []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type SaleLineRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Quantity  int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type CreateReturnRequest struct {
	SaleID       uuid.UUID       `json:"sale_id" validate:"required"`
	ProductID    uuid.UUID       `json:"product_id" validate:"required"`
	Quantity     int64           `json:"quantity" validate:"required,gt=0"`
	Reason       string          `json:"reason" validate:"required,max=500"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
}

type CreateCustomerRequest struct {
	Name  string  `json:"name" validate:"required,max=200"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=50"`
}

type ListSalesRequest struct {
	Limit  int
	Offset int
}
