package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/counterline/counterline/internal/ledger"
	"github.com/counterline/counterline/internal/platform/db"
	"github.com/counterline/counterline/internal/shared"
)

// Repository persists sales data in PostgreSQL.
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

const saleColumns = `id, invoice_number, customer_id, user_id, subtotal, tax_amount, discount_amount, total, payment_method, status, created_at`

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.InvoiceNumber, &s.CustomerID, &s.UserID, &s.Subtotal,
		&s.TaxAmount, &s.DiscountAmount, &s.Total, &s.PaymentMethod, &s.Status, &s.CreatedAt)
	return s, err
}

// GetSale fetches a sale with its items.
func (r *Repository) GetSale(ctx context.Context, id uuid.UUID) (Sale, error) {
	sale, err := scanSale(r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, fmt.Errorf("%w: sale %s", shared.ErrNotFound, id)
		}
		return Sale{}, db.Wrap(err)
	}
	items, err := r.saleItems(ctx, id)
	if err != nil {
		return Sale{}, db.Wrap(err)
	}
	sale.Items = items
	return sale, nil
}

func (r *Repository) saleItems(ctx context.Context, saleID uuid.UUID) ([]SaleItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, sale_id, product_id, quantity, unit_price, total_price
FROM sale_items WHERE sale_id=$1 ORDER BY id`, saleID)
	if err != nil {
		return nil, db.Wrap(err)
	}
	defer rows.Close()
	items := []SaleItem{}
	for rows.Next() {
		var item SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.TotalPrice); err != nil {
			return nil, db.Wrap(err)
		}
		items = append(items, item)
	}
	return items, db.Wrap(rows.Err())
}

// ListSales returns the newest sales without items.
func (r *Repository) ListSales(ctx context.Context, req ListSalesRequest) ([]Sale, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, req.Offset)
	if err != nil {
		return nil, db.Wrap(err)
	}
	defer rows.Close()
	sales := []Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, db.Wrap(err)
		}
		sales = append(sales, sale)
	}
	return sales, db.Wrap(rows.Err())
}

// InsertCustomer stores a new customer.
func (r *Repository) InsertCustomer(ctx context.Context, c Customer) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO customers (id, name, email, phone, loyalty_points, total_spent, created_at)
VALUES ($1,$2,$3,$4,0,0,$5)`, c.ID, c.Name, c.Email, c.Phone, c.CreatedAt)
	return db.Wrap(err)
}

// GetCustomer fetches one customer.
func (r *Repository) GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx, `SELECT id, name, email, phone, loyalty_points, total_spent, created_at FROM customers WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.LoyaltyPoints, &c.TotalSpent, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, fmt.Errorf("%w: customer %s", shared.ErrNotFound, id)
		}
		return Customer{}, db.Wrap(err)
	}
	return c, nil
}

// ListCustomers returns all customers.
func (r *Repository) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, email, phone, loyalty_points, total_spent, created_at FROM customers ORDER BY name ASC`)
	if err != nil {
		return nil, db.Wrap(err)
	}
	defer rows.Close()
	customers := []Customer{}
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.LoyaltyPoints, &c.TotalSpent, &c.CreatedAt); err != nil {
			return nil, db.Wrap(err)
		}
		customers = append(customers, c)
	}
	return customers, db.Wrap(rows.Err())
}

func (t *txRepository) InsertSale(ctx context.Context, s Sale) error {
	_, err := t.Tx.Exec(ctx, `INSERT INTO sales (id, invoice_number, customer_id, user_id, subtotal, tax_amount, discount_amount, total, payment_method, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		s.ID, s.InvoiceNumber, s.CustomerID, s.UserID, s.Subtotal, s.TaxAmount,
		s.DiscountAmount, s.Total, string(s.PaymentMethod), string(s.Status), s.CreatedAt)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: invoice number %s already exists", shared.ErrConflict, s.InvoiceNumber)
	}
	return db.Wrap(err)
}

func (t *txRepository) InsertSaleItem(ctx context.Context, item SaleItem) error {
	_, err := t.Tx.Exec(ctx, `INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price, total_price)
VALUES ($1,$2,$3,$4,$5,$6)`, item.ID, item.SaleID, item.ProductID, item.Quantity, item.UnitPrice, item.TotalPrice)
	return db.Wrap(err)
}

func (t *txRepository) GetSaleForUpdate(ctx context.Context, id uuid.UUID) (Sale, error) {
	sale, err := scanSale(t.Tx.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, fmt.Errorf("%w: sale %s", shared.ErrNotFound, id)
		}
		return Sale{}, db.Wrap(err)
	}
	rows, err := t.Tx.Query(ctx, `SELECT id, sale_id, product_id, quantity, unit_price, total_price
FROM sale_items WHERE sale_id=$1 ORDER BY id`, id)
	if err != nil {
		return Sale{}, db.Wrap(err)
	}
	defer rows.Close()
	for rows.Next() {
		var item SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.TotalPrice); err != nil {
			return Sale{}, db.Wrap(err)
		}
		sale.Items = append(sale.Items, item)
	}
	return sale, db.Wrap(rows.Err())
}

func (t *txRepository) UpdateSaleStatus(ctx context.Context, id uuid.UUID, status SaleStatus) error {
	_, err := t.Tx.Exec(ctx, `UPDATE sales SET status=$2 WHERE id=$1`, id, string(status))
	return db.Wrap(err)
}

func (t *txRepository) GetCustomerForUpdate(ctx context.Context, id uuid.UUID) (Customer, error) {
	var c Customer
	err := t.Tx.QueryRow(ctx, `SELECT id, name, email, phone, loyalty_points, total_spent, created_at FROM customers WHERE id=$1 FOR UPDATE`, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.LoyaltyPoints, &c.TotalSpent, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, fmt.Errorf("%w: customer %s", shared.ErrNotFound, id)
		}
		return Customer{}, db.Wrap(err)
	}
	return c, nil
}

func (t *txRepository) UpdateCustomerAggregates(ctx context.Context, id uuid.UUID, spent decimal.Decimal, points int64) error {
	_, err := t.Tx.Exec(ctx, `UPDATE customers SET total_spent = total_spent + $2, loyalty_points = loyalty_points + $3 WHERE id=$1`,
		id, spent, points)
	return db.Wrap(err)
}

func (t *txRepository) InsertReturn(ctx context.Context, ret Return) error {
	_, err := t.Tx.Exec(ctx, `INSERT INTO returns (id, sale_id, product_id, quantity, reason, refund_amount, user_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		ret.ID, ret.SaleID, ret.ProductID, ret.Quantity, ret.Reason, ret.RefundAmount, ret.UserID, ret.CreatedAt)
	return db.Wrap(err)
}

func (t *txRepository) ReturnedQuantity(ctx context.Context, saleID, productID uuid.UUID) (int64, error) {
	var qty int64
	err := t.Tx.QueryRow(ctx, `SELECT COALESCE(SUM(quantity),0) FROM returns WHERE sale_id=$1 AND product_id=$2`, saleID, productID).Scan(&qty)
	return qty, db.Wrap(err)
}

func (t *txRepository) TotalReturnedQuantity(ctx context.Context, saleID uuid.UUID) (int64, error) {
	var qty int64
	err := t.Tx.QueryRow(ctx, `SELECT COALESCE(SUM(quantity),0) FROM returns WHERE sale_id=$1`, saleID).Scan(&qty)
	return qty, db.Wrap(err)
}
