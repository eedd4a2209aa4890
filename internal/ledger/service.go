package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/counterline/counterline/internal/shared"
)

// TxStore exposes the writes the ledger performs inside a transaction.
// The sales and purchasing transaction wrappers implement it so their
// multi-row operations share one transaction with the ledger.
type TxStore interface {
	GetProductStockForUpdate(ctx context.Context, productID uuid.UUID) (ProductStock, error)
	UpdateProductQuantity(ctx context.Context, productID uuid.UUID, quantity int64) error
	InsertMovement(ctx context.Context, movement Movement) error
}

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error
	ListMovements(ctx context.Context, productID uuid.UUID, limit int) ([]Movement, error)
}

// Service is the single choke-point for mutating product quantity. Every
// change pairs the quantity update with one stock movement row.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Apply executes one quantity change in its own transaction. Used by the
// manual adjustment endpoint; sale, receipt and return flows call ApplyIn
// inside their own transactions instead.
func (s *Service) Apply(ctx context.Context, input ApplyInput) (Movement, error) {
	var movement Movement
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		var err error
		movement, err = s.ApplyIn(ctx, tx, input)
		return err
	})
	if err != nil {
		return Movement{}, err
	}
	return movement, nil
}

// ApplyIn executes one quantity change against a caller-owned transaction.
// The quantity update and the movement insert commit or roll back together
// with every other write in that transaction.
func (s *Service) ApplyIn(ctx context.Context, tx TxStore, input ApplyInput) (Movement, error) {
	if input.Delta == 0 {
		return Movement{}, shared.Validationf("ledger: delta must be non zero")
	}
	if !input.Type.Valid() {
		return Movement{}, shared.Validationf("ledger: unknown movement type %q", input.Type)
	}
	if input.ActorID == uuid.Nil {
		return Movement{}, shared.Validationf("ledger: acting user required")
	}

	product, err := tx.GetProductStockForUpdate(ctx, input.ProductID)
	if err != nil {
		return Movement{}, err
	}

	newQty := product.Quantity + input.Delta
	if product.TrackStock && newQty < 0 {
		return Movement{}, fmt.Errorf("%w: product %s has %d on hand, requested %d",
			shared.ErrInsufficientStock, product.SKU, product.Quantity, -input.Delta)
	}

	if err := tx.UpdateProductQuantity(ctx, input.ProductID, newQty); err != nil {
		return Movement{}, err
	}

	movement := Movement{
		ID:        uuid.New(),
		ProductID: input.ProductID,
		Type:      input.Type,
		Delta:     input.Delta,
		Reason:    input.Reason,
		Reference: input.Reference,
		UserID:    input.ActorID,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.InsertMovement(ctx, movement); err != nil {
		return Movement{}, err
	}
	return movement, nil
}

// ListMovements returns the newest movements for a product.
func (s *Service) ListMovements(ctx context.Context, productID uuid.UUID, limit int) ([]Movement, error) {
	if productID == uuid.Nil {
		return nil, shared.Validationf("ledger: product required")
	}
	return s.repo.ListMovements(ctx, productID, limit)
}
