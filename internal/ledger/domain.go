package ledger

import (
	"time"

	"github.com/google/uuid"
)

// MovementType enumerates the causes of a stock quantity change.
type MovementType string

const (
	// MovementSale is an outbound movement caused by a completed sale.
	MovementSale MovementType = "sale"
	// MovementPurchase is an inbound movement from a received purchase order.
	MovementPurchase MovementType = "purchase"
	// MovementAdjustment is a manual correction, either direction.
	MovementAdjustment MovementType = "adjustment"
	// MovementReturn restocks quantity returned against a sale.
	MovementReturn MovementType = "return"
	// MovementTransfer is kept for audit-trail compatibility; no transfer
	// operation is exposed.
	MovementTransfer MovementType = "transfer"
)

// Valid reports whether the movement type is a known value.
func (t MovementType) Valid() bool {
	switch t {
	case MovementSale, MovementPurchase, MovementAdjustment, MovementReturn, MovementTransfer:
		return true
	}
	return false
}

// Movement is one immutable audit-log row: a single signed quantity change
// and its cause. Movements are append-only.
type Movement struct {
	ID        uuid.UUID    `json:"id"`
	ProductID uuid.UUID    `json:"product_id"`
	Type      MovementType `json:"movement_type"`
	Delta     int64        `json:"delta"`
	Reason    string       `json:"reason,omitempty"`
	Reference *uuid.UUID   `json:"reference,omitempty"`
	UserID    uuid.UUID    `json:"user_id"`
	CreatedAt time.Time    `json:"created_at"`
}

// ProductStock is the slice of a product the ledger operates on.
type ProductStock struct {
	ID         uuid.UUID
	SKU        string
	TrackStock bool
	Quantity   int64
}

// ApplyInput describes one requested quantity change.
type ApplyInput struct {
	ProductID uuid.UUID
	Delta     int64
	Type      MovementType
	Reason    string
	Reference *uuid.UUID
	ActorID   uuid.UUID
}
