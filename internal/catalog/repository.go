package catalog

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

// Repository persists catalog entities in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `id, name, sku, barcode, category_id, supplier_id, cost_price, selling_price, currency, quantity, track_stock, min_stock_level, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Barcode, &p.CategoryID, &p.SupplierID,
		&p.CostPrice, &p.SellingPrice, &p.Currency, &p.Quantity, &p.TrackStock,
		&p.MinStockLevel, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// InsertProduct stores a new product.
func (r *Repository) InsertProduct(ctx context.Context, p Product) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO products
(id, name, sku, barcode, category_id, supplier_id, cost_price, selling_price, currency, quantity, track_stock, min_stock_level, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NOW(),NOW())`,
		p.ID, p.Name, p.SKU, p.Barcode, p.CategoryID, p.SupplierID, p.CostPrice,
		p.SellingPrice, p.Currency, p.Quantity, p.TrackStock, p.MinStockLevel, p.IsActive)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: sku %s already exists", shared.ErrConflict, p.SKU)
	}
	return db.Wrap(err)
}

// GetProduct fetches a product by id.
func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, fmt.Errorf("%w: product %s", shared.ErrNotFound, id)
		}
		return Product{}, db.Wrap(err)
	}
	return p, nil
}

// UpdateProduct persists mutable product fields. Quantity is owned by the
// ledger and never written here.
func (r *Repository) UpdateProduct(ctx context.Context, p Product) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET
name=$2, barcode=$3, category_id=$4, supplier_id=$5, cost_price=$6, selling_price=$7,
min_stock_level=$8, track_stock=$9, is_active=$10, updated_at=NOW()
WHERE id=$1`,
		p.ID, p.Name, p.Barcode, p.CategoryID, p.SupplierID, p.CostPrice, p.SellingPrice,
		p.MinStockLevel, p.TrackStock, p.IsActive)
	if err != nil {
		return db.Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s", shared.ErrNotFound, p.ID)
	}
	return nil
}

// DeleteProduct removes a product.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return db.Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s", shared.ErrNotFound, id)
	}
	return nil
}

// ListProducts returns a filtered page of products.
func (r *Repository) ListProducts(ctx context.Context, req ListProductsRequest) ([]Product, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products
WHERE ($1::boolean IS NULL OR is_active=$1)
AND ($2 = '' OR name ILIKE '%'||$2||'%' OR sku ILIKE '%'||$2||'%')
ORDER BY name ASC
LIMIT $3 OFFSET $4`, req.IsActive, req.Search, limit, req.Offset)
	if err != nil {
		return nil, db.Wrap(err)
	}
	defer rows.Close()
	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, db.Wrap(err)
		}
		products = append(products, p)
	}
	return products, db.Wrap(rows.Err())
}

// InsertCategory stores a new category.
func (r *Repository) InsertCategory(ctx context.Context, c Category) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO categories (id, name, slug, created_at) VALUES ($1,$2,$3,NOW())`,
		c.ID, c.Name, c.Slug)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: slug %s already exists", shared.ErrConflict, c.Slug)
	}
	return db.Wrap(err)
}

// ListCategories returns all categories.
func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, slug, created_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, db.Wrap(err)
	}
	defer rows.Close()
	categories := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, db.Wrap(err)
		}
		categories = append(categories, c)
	}
	return categories, db.Wrap(rows.Err())
}

// InsertSupplier stores a new supplier.
func (r *Repository) InsertSupplier(ctx context.Context, s Supplier) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO suppliers (id, name, email, phone, address, created_at) VALUES ($1,$2,$3,$4,$5,NOW())`,
		s.ID, s.Name, s.Email, s.Phone, s.Address)
	return db.Wrap(err)
}

// ListSuppliers returns all suppliers.
func (r *Repository) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, email, phone, address, created_at FROM suppliers ORDER BY name ASC`)
	if err != nil {
		return nil, db.Wrap(err)
	}
	defer rows.Close()
	suppliers := []Supplier{}
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Address, &s.CreatedAt); err != nil {
			return nil, db.Wrap(err)
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, db.Wrap(rows.Err())
}
