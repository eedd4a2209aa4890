package purchasing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/counterline/counterline/internal/ledger"
	"github.com/counterline/counterline/internal/shared"
)

// TxRepository exposes the writes of one purchase order transaction. It
// embeds ledger.TxStore so receipt restocking shares the order transaction.
type TxRepository interface {
	ledger.TxStore
	InsertOrder(ctx context.Context, order PurchaseOrder) error
	InsertOrderItem(ctx context.Context, item PurchaseOrderItem) error
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (PurchaseOrder, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status OrderStatus, receivedAt *time.Time) error
	UpdateProductCost(ctx context.Context, productID uuid.UUID, cost decimal.Decimal) error
}

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetOrder(ctx context.Context, id uuid.UUID) (PurchaseOrder, error)
	ListOrders(ctx context.Context, req ListOrdersRequest) ([]PurchaseOrder, error)
}

// Service orchestrates the purchase order workflow:
// pending -> received or pending -> cancelled, both terminal.
type Service struct {
	repo   RepositoryPort
	ledger *ledger.Service
}

// NewService builds Service.
func NewService(repo RepositoryPort, ledgerSvc *ledger.Service) *Service {
	return &Service{repo: repo, ledger: ledgerSvc}
}

// CreateOrder persists a pending order with its items.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest, actorID uuid.UUID) (PurchaseOrder, error) {
	if actorID == uuid.Nil {
		return PurchaseOrder{}, shared.Validationf("purchasing: acting user required")
	}
	if len(req.Items) == 0 {
		return PurchaseOrder{}, shared.Validationf("purchasing: at least one item required")
	}
	total := decimal.Zero
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return PurchaseOrder{}, shared.Validationf("purchasing: item %d quantity must be positive", i+1)
		}
		if item.UnitCost.IsNegative() {
			return PurchaseOrder{}, shared.Validationf("purchasing: item %d unit cost must not be negative", i+1)
		}
		total = total.Add(item.UnitCost.Mul(decimal.NewFromInt(item.Quantity)))
	}

	order := PurchaseOrder{
		ID:          uuid.New(),
		OrderNumber: generateOrderNumber(),
		SupplierID:  req.SupplierID,
		Status:      OrderStatusPending,
		TotalAmount: total,
		UserID:      actorID,
		CreatedAt:   time.Now().UTC(),
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.InsertOrder(ctx, order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		for _, item := range req.Items {
			row := PurchaseOrderItem{
				ID:        uuid.New(),
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitCost:  item.UnitCost,
				TotalCost: item.UnitCost.Mul(decimal.NewFromInt(item.Quantity)),
			}
			if err := tx.InsertOrderItem(ctx, row); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return PurchaseOrder{}, err
	}
	return s.repo.GetOrder(ctx, order.ID)
}

// ReceiveOrder restocks every item, updates each product's cost basis and
// marks the order received, all in one transaction. Receiving a non-pending
// order fails without touching stock.
func (s *Service) ReceiveOrder(ctx context.Context, orderID, actorID uuid.UUID) (PurchaseOrder, error) {
	if actorID == uuid.Nil {
		return PurchaseOrder{}, shared.Validationf("purchasing: acting user required")
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != OrderStatusPending {
			return fmt.Errorf("%w: order %s is %s", shared.ErrInvalidTransition, order.OrderNumber, order.Status)
		}
		for _, item := range order.Items {
			id := orderID
			_, err := s.ledger.ApplyIn(ctx, tx, ledger.ApplyInput{
				ProductID: item.ProductID,
				Delta:     item.Quantity,
				Type:      ledger.MovementPurchase,
				Reason:    fmt.Sprintf("Purchase Order %s", order.OrderNumber),
				Reference: &id,
				ActorID:   actorID,
			})
			if err != nil {
				return err
			}
			if err := tx.UpdateProductCost(ctx, item.ProductID, item.UnitCost); err != nil {
				return fmt.Errorf("update product cost: %w", err)
			}
		}
		now := time.Now().UTC()
		return tx.UpdateOrderStatus(ctx, orderID, OrderStatusReceived, &now)
	})
	if err != nil {
		return PurchaseOrder{}, err
	}
	return s.repo.GetOrder(ctx, orderID)
}

// CancelOrder cancels a pending order. No stock effect.
func (s *Service) CancelOrder(ctx context.Context, orderID uuid.UUID) (PurchaseOrder, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != OrderStatusPending {
			return fmt.Errorf("%w: order %s is %s", shared.ErrInvalidTransition, order.OrderNumber, order.Status)
		}
		return tx.UpdateOrderStatus(ctx, orderID, OrderStatusCancelled, nil)
	})
	if err != nil {
		return PurchaseOrder{}, err
	}
	return s.repo.GetOrder(ctx, orderID)
}

// GetOrder fetches one order with its items.
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (PurchaseOrder, error) {
	return s.repo.GetOrder(ctx, id)
}

// ListOrders returns the newest orders.
func (s *Service) ListOrders(ctx context.Context, req ListOrdersRequest) ([]PurchaseOrder, error) {
	return s.repo.ListOrders(ctx, req)
}

func generateOrderNumber() string {
	return fmt.Sprintf("PO-%d", time.Now().UnixNano())
}
