package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/counterline/counterline/internal/platform/db"
	"github.com/counterline/counterline/internal/shared"
)

// Repository persists stock movements in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("%w: begin: %v", shared.ErrStoreUnavailable, err)
	}
	wrapper := &PgTxStore{Tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return db.Wrap(tx.Commit(ctx))
}

// ListMovements returns the newest movements for a product.
func (r *Repository) ListMovements(ctx context.Context, productID uuid.UUID, limit int) ([]Movement, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `SELECT id, product_id, movement_type, delta, reason, reference, user_id, created_at
FROM stock_movements
WHERE product_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2`, productID, limit)
	if err != nil {
		return nil, db.Wrap(err)
	}
	defer rows.Close()
	movements := []Movement{}
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Type, &m.Delta, &m.Reason, &m.Reference, &m.UserID, &m.CreatedAt); err != nil {
			return nil, db.Wrap(err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, db.Wrap(err)
	}
	return movements, nil
}

// PgTxStore implements TxStore over a pgx transaction. The sales and
// purchasing transaction wrappers embed it so their writes and the ledger's
// share one transaction.
type PgTxStore struct {
	Tx pgx.Tx
}

// NewPgTxStore wraps an open transaction.
func NewPgTxStore(tx pgx.Tx) *PgTxStore {
	return &PgTxStore{Tx: tx}
}

func (s *PgTxStore) GetProductStockForUpdate(ctx context.Context, productID uuid.UUID) (ProductStock, error) {
	var p ProductStock
	err := s.Tx.QueryRow(ctx, `SELECT id, sku, track_stock, quantity FROM products WHERE id=$1 FOR UPDATE`, productID).
		Scan(&p.ID, &p.SKU, &p.TrackStock, &p.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProductStock{}, fmt.Errorf("%w: product %s", shared.ErrNotFound, productID)
		}
		return ProductStock{}, db.Wrap(err)
	}
	return p, nil
}

func (s *PgTxStore) UpdateProductQuantity(ctx context.Context, productID uuid.UUID, quantity int64) error {
	_, err := s.Tx.Exec(ctx, `UPDATE products SET quantity=$2, updated_at=NOW() WHERE id=$1`, productID, quantity)
	return db.Wrap(err)
}

func (s *PgTxStore) InsertMovement(ctx context.Context, m Movement) error {
	_, err := s.Tx.Exec(ctx, `INSERT INTO stock_movements (id, product_id, movement_type, delta, reason, reference, user_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`, m.ID, m.ProductID, string(m.Type), m.Delta, m.Reason, m.Reference, m.UserID, m.CreatedAt)
	return db.Wrap(err)
}
