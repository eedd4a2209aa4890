package purchasing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/counterline/counterline/internal/ledger"
	"github.com/counterline/counterline/internal/platform/db"
	"github.com/counterline/counterline/internal/shared"
)

// Repository persists purchase orders in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepository struct {
	*ledger.PgTxStore
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("%w: begin: %v", shared.ErrStoreUnavailable, err)
	}
	wrapper := &txRepository{PgTxStore: ledger.NewPgTxStore(tx)}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return db.Wrap(tx.Commit(ctx))
}

const orderColumns = `id, order_number, supplier_id, status, total_amount, user_id, created_at, received_at`

func scanOrder(row pgx.Row) (PurchaseOrder, error) {
	var o PurchaseOrder
	err := row.Scan(&o.ID, &o.OrderNumber, &o.SupplierID, &o.Status, &o.TotalAmount,
		&o.UserID, &o.CreatedAt, &o.ReceivedAt)
	return o, err
}

// GetOrder fetches an order with its items.
func (r *Repository) GetOrder(ctx context.Context, id uuid.UUID) (PurchaseOrder, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseOrder{}, fmt.Errorf("%w: purchase order %s", shared.ErrNotFound, id)
		}
		return PurchaseOrder{}, db.Wrap(err)
	}
	items, err := orderItems(ctx, r.pool, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	order.Items = items
	return order, nil
}

// ListOrders returns the newest orders without items, optionally filtered by
// status.
func (r *Repository) ListOrders(ctx context.Context, req ListOrdersRequest) ([]PurchaseOrder, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + orderColumns + ` FROM purchase_orders`
	args := []any{}
	if req.Status != nil {
		query += ` WHERE status=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, string(*req.Status), limit, req.Offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, req.Offset)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.Wrap(err)
	}
	defer rows.Close()
	orders := []PurchaseOrder{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, db.Wrap(err)
		}
		orders = append(orders, order)
	}
	return orders, db.Wrap(rows.Err())
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func orderItems(ctx context.Context, q querier, orderID uuid.UUID) ([]PurchaseOrderItem, error) {
	rows, err := q.Query(ctx, `SELECT id, order_id, product_id, quantity, unit_cost, total_cost
FROM purchase_order_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, db.Wrap(err)
	}
	defer rows.Close()
	items := []PurchaseOrderItem{}
	for rows.Next() {
		var item PurchaseOrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitCost, &item.TotalCost); err != nil {
			return nil, db.Wrap(err)
		}
		items = append(items, item)
	}
	return items, db.Wrap(rows.Err())
}

func (t *txRepository) InsertOrder(ctx context.Context, o PurchaseOrder) error {
	_, err := t.Tx.Exec(ctx, `INSERT INTO purchase_orders (id, order_number, supplier_id, status, total_amount, user_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		o.ID, o.OrderNumber, o.SupplierID, string(o.Status), o.TotalAmount, o.UserID, o.CreatedAt)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: order number %s already exists", shared.ErrConflict, o.OrderNumber)
	}
	return db.Wrap(err)
}

func (t *txRepository) InsertOrderItem(ctx context.Context, item PurchaseOrderItem) error {
	_, err := t.Tx.Exec(ctx, `INSERT INTO purchase_order_items (id, order_id, product_id, quantity, unit_cost, total_cost)
VALUES ($1,$2,$3,$4,$5,$6)`, item.ID, item.OrderID, item.ProductID, item.Quantity, item.UnitCost, item.TotalCost)
	return db.Wrap(err)
}

func (t *txRepository) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (PurchaseOrder, error) {
	order, err := scanOrder(t.Tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseOrder{}, fmt.Errorf("%w: purchase order %s", shared.ErrNotFound, id)
		}
		return PurchaseOrder{}, db.Wrap(err)
	}
	items, err := orderItems(ctx, t.Tx, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	order.Items = items
	return order, nil
}

func (t *txRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status OrderStatus, receivedAt *time.Time) error {
	_, err := t.Tx.Exec(ctx, `UPDATE purchase_orders SET status=$2, received_at=$3 WHERE id=$1`,
		id, string(status), receivedAt)
	return db.Wrap(err)
}

func (t *txRepository) UpdateProductCost(ctx context.Context, productID uuid.UUID, cost decimal.Decimal) error {
	_, err := t.Tx.Exec(ctx, `UPDATE products SET cost_price=$2, updated_at=NOW() WHERE id=$1`, productID, cost)
	return db.Wrap(err)
}
