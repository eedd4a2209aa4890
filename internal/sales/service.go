package sales

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/counterline/counterline/internal/ledger"
	"github.com/counterline/counterline/internal/shared"
)

// TxRepository exposes the writes of one sale or return transaction. It
// embeds ledger.TxStore so stock mutation shares the same transaction as the
// sale rows.
type TxRepository interface {
	ledger.TxStore
	InsertSale(ctx context.Context, sale Sale) error
	InsertSaleItem(ctx context.Context, item SaleItem) error
	GetSaleForUpdate(ctx context.Context, id uuid.UUID) (Sale, error)
	UpdateSaleStatus(ctx context.Context, id uuid.UUID, status SaleStatus) error
	GetCustomerForUpdate(ctx context.Context, id uuid.UUID) (Customer, error)
	UpdateCustomerAggregates(ctx context.Context, id uuid.UUID, spent decimal.Decimal, points int64) error
	InsertReturn(ctx context.Context, ret Return) error
	ReturnedQuantity(ctx context.Context, saleID, productID uuid.UUID) (int64, error)
	TotalReturnedQuantity(ctx context.Context, saleID uuid.UUID) (int64, error)
}

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetSale(ctx context.Context, id uuid.UUID) (Sale, error)
	ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, error)
	InsertCustomer(ctx context.Context, c Customer) error
	GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
}

// Enqueuer is the slice of asynq.Client the service needs.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// WarmupTask builds the background task enqueued after a committed sale.
// Wired to jobs.NewReportsWarmupTask; injected to avoid a jobs dependency.
type WarmupTask func() (*asynq.Task, error)

// Service turns carts into durable sales and processes returns.
type Service struct {
	repo       RepositoryPort
	ledger     *ledger.Service
	taxRate    decimal.Decimal
	logger     *slog.Logger
	enqueuer   Enqueuer
	warmupTask WarmupTask
}

// NewService builds Service. The tax rate comes from configuration, not from
// the client. Enqueuer may be nil; cache warmup is then skipped.
func NewService(repo RepositoryPort, ledgerSvc *ledger.Service, taxRate decimal.Decimal, logger *slog.Logger, enqueuer Enqueuer, warmup WarmupTask) *Service {
	return &Service{
		repo:       repo,
		ledger:     ledgerSvc,
		taxRate:    taxRate,
		logger:     logger,
		enqueuer:   enqueuer,
		warmupTask: warmup,
	}
}

// CreateSale persists the sale header, its items, one ledger movement per
// tracked line and the customer aggregate bump as a single transaction.
// Any missing product or insufficient stock aborts the whole sale.
func (s *Service) CreateSale(ctx context.Context, req CreateSaleRequest, actorID uuid.UUID) (Sale, error) {
	if actorID == uuid.Nil {
		return Sale{}, shared.Validationf("sales: acting user required")
	}
	if !req.PaymentMethod.Valid() {
		return Sale{}, shared.Validationf("sales: unknown payment method %q", req.PaymentMethod)
	}
	if len(req.Lines) == 0 {
		return Sale{}, shared.Validationf("sales: at least one line required")
	}
	if req.DiscountAmount.IsNegative() {
		return Sale{}, shared.Validationf("sales: discount must not be negative")
	}

	subtotal := decimal.Zero
	for i, line := range req.Lines {
		if line.Quantity <= 0 {
			return Sale{}, shared.Validationf("sales: line %d quantity must be positive", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return Sale{}, shared.Validationf("sales: line %d unit price must not be negative", i+1)
		}
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(line.Quantity)))
	}
	taxAmount := subtotal.Mul(s.taxRate).Round(2)
	total := subtotal.Add(taxAmount).Sub(req.DiscountAmount)
	if total.IsNegative() {
		return Sale{}, shared.Validationf("sales: discount exceeds sale value")
	}

	sale := Sale{
		ID:             uuid.New(),
		InvoiceNumber:  generateInvoiceNumber(),
		CustomerID:     req.CustomerID,
		UserID:         actorID,
		Subtotal:       subtotal,
		TaxAmount:      taxAmount,
		DiscountAmount: req.DiscountAmount,
		Total:          total,
		PaymentMethod:  req.PaymentMethod,
		Status:         SaleStatusCompleted,
		CreatedAt:      time.Now().UTC(),
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.InsertSale(ctx, sale); err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}
		for _, line := range req.Lines {
			item := SaleItem{
				ID:         uuid.New(),
				SaleID:     sale.ID,
				ProductID:  line.ProductID,
				Quantity:   line.Quantity,
				UnitPrice:  line.UnitPrice,
				TotalPrice: line.UnitPrice.Mul(decimal.NewFromInt(line.Quantity)),
			}
			if err := tx.InsertSaleItem(ctx, item); err != nil {
				return fmt.Errorf("insert sale item: %w", err)
			}
			product, err := tx.GetProductStockForUpdate(ctx, line.ProductID)
			if err != nil {
				return err
			}
			// Untracked products sell without stock effect.
			if !product.TrackStock {
				continue
			}
			saleID := sale.ID
			_, err = s.ledger.ApplyIn(ctx, tx, ledger.ApplyInput{
				ProductID: line.ProductID,
				Delta:     -line.Quantity,
				Type:      ledger.MovementSale,
				Reason:    "Sale transaction",
				Reference: &saleID,
				ActorID:   actorID,
			})
			if err != nil {
				return err
			}
		}
		if req.CustomerID != nil {
			if _, err := tx.GetCustomerForUpdate(ctx, *req.CustomerID); err != nil {
				return err
			}
			points := total.Floor().IntPart()
			if err := tx.UpdateCustomerAggregates(ctx, *req.CustomerID, total, points); err != nil {
				return fmt.Errorf("update customer aggregates: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Sale{}, err
	}

	s.enqueueWarmup()
	return s.repo.GetSale(ctx, sale.ID)
}

// CreateReturn restocks quantity sold on a prior sale. The returned quantity
// is capped at sold-minus-already-returned; the sale status moves to
// partial_refund, or refunded when every sold unit has come back. Customer
// aggregates are left untouched.
func (s *Service) CreateReturn(ctx context.Context, req CreateReturnRequest, actorID uuid.UUID) (Return, error) {
	if actorID == uuid.Nil {
		return Return{}, shared.Validationf("sales: acting user required")
	}
	if req.Quantity <= 0 {
		return Return{}, shared.Validationf("sales: return quantity must be positive")
	}
	if req.Reason == "" {
		return Return{}, shared.Validationf("sales: return reason required")
	}
	if req.RefundAmount.IsNegative() {
		return Return{}, shared.Validationf("sales: refund amount must not be negative")
	}

	ret := Return{
		ID:           uuid.New(),
		SaleID:       req.SaleID,
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		Reason:       req.Reason,
		RefundAmount: req.RefundAmount,
		UserID:       actorID,
		CreatedAt:    time.Now().UTC(),
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		sale, err := tx.GetSaleForUpdate(ctx, req.SaleID)
		if err != nil {
			return err
		}
		var soldQty, soldTotal int64
		for _, item := range sale.Items {
			soldTotal += item.Quantity
			if item.ProductID == req.ProductID {
				soldQty += item.Quantity
			}
		}
		if soldQty == 0 {
			return shared.Validationf("sales: product was not part of sale %s", sale.InvoiceNumber)
		}
		returned, err := tx.ReturnedQuantity(ctx, req.SaleID, req.ProductID)
		if err != nil {
			return err
		}
		if req.Quantity > soldQty-returned {
			return shared.Validationf("sales: return quantity %d exceeds remaining %d", req.Quantity, soldQty-returned)
		}
		if err := tx.InsertReturn(ctx, ret); err != nil {
			return fmt.Errorf("insert return: %w", err)
		}
		saleID := req.SaleID
		_, err = s.ledger.ApplyIn(ctx, tx, ledger.ApplyInput{
			ProductID: req.ProductID,
			Delta:     req.Quantity,
			Type:      ledger.MovementReturn,
			Reason:    req.Reason,
			Reference: &saleID,
			ActorID:   actorID,
		})
		if err != nil {
			return err
		}
		totalReturned, err := tx.TotalReturnedQuantity(ctx, req.SaleID)
		if err != nil {
			return err
		}
		// totalReturned already includes the row inserted above.
		status := SaleStatusPartialRefund
		if totalReturned >= soldTotal {
			status = SaleStatusRefunded
		}
		return tx.UpdateSaleStatus(ctx, req.SaleID, status)
	})
	if err != nil {
		return Return{}, err
	}
	return ret, nil
}

// GetSale fetches one sale with its items.
func (s *Service) GetSale(ctx context.Context, id uuid.UUID) (Sale, error) {
	return s.repo.GetSale(ctx, id)
}

// ListSales returns the newest sales.
func (s *Service) ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, error) {
	return s.repo.ListSales(ctx, req)
}

// CreateCustomer registers a new customer.
func (s *Service) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (Customer, error) {
	customer := Customer{
		ID:         uuid.New(),
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		TotalSpent: decimal.Zero,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.InsertCustomer(ctx, customer); err != nil {
		return Customer{}, err
	}
	return customer, nil
}

// GetCustomer fetches one customer.
func (s *Service) GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

// ListCustomers returns all customers.
func (s *Service) ListCustomers(ctx context.Context) ([]Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *Service) enqueueWarmup() {
	if s.enqueuer == nil || s.warmupTask == nil {
		return
	}
	task, err := s.warmupTask()
	if err == nil {
		_, err = s.enqueuer.Enqueue(task)
	}
	if err != nil && s.logger != nil {
		s.logger.Warn("enqueue reports warmup", slog.Any("error", err))
	}
}

func generateInvoiceNumber() string {
	return fmt.Sprintf("INV-%d", time.Now().UnixNano())
}
