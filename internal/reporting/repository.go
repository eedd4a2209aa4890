package reporting

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/counterline/counterline/internal/platform/db"
)

// Repository runs the read-only aggregation queries. Refunded revenue still
// counts: sale totals are immutable, refunds only flip the status.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// DashboardMetrics aggregates the headline numbers. now is taken as a
// parameter so the UTC day and month windows are testable.
func (r *Repository) DashboardMetrics(ctx context.Context, now time.Time) (DashboardMetrics, error) {
	now = now.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	m := DashboardMetrics{GeneratedAt: now}
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total),0), COUNT(*) FROM sales WHERE created_at >= $1`, dayStart).
		Scan(&m.TodaySales, &m.TodayCount)
	if err != nil {
		return DashboardMetrics{}, db.Wrap(err)
	}
	err = r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total),0), COUNT(*) FROM sales WHERE created_at >= $1`, monthStart).
		Scan(&m.MonthSales, &m.MonthCount)
	if err != nil {
		return DashboardMetrics{}, db.Wrap(err)
	}
	err = r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total),0), COUNT(*) FROM sales`).
		Scan(&m.TotalSales, &m.TotalCount)
	if err != nil {
		return DashboardMetrics{}, db.Wrap(err)
	}
	err = r.pool.QueryRow(ctx, `SELECT
  (SELECT COUNT(*) FROM products WHERE is_active),
  (SELECT COUNT(*) FROM categories),
  (SELECT COUNT(*) FROM customers),
  (SELECT COUNT(*) FROM products WHERE is_active AND track_stock AND quantity <= min_stock_level),
  (SELECT COUNT(*) FROM purchase_orders WHERE status='pending')`).
		Scan(&m.ProductCount, &m.CategoryCount, &m.CustomerCount, &m.LowStockCount, &m.PendingOrders)
	if err != nil {
		return DashboardMetrics{}, db.Wrap(err)
	}
	return m, nil
}

// TopProducts ranks products by revenue over the whole sale history. A
// non-zero since restricts the ranking to sales at or after that instant.
// Revenue ties come back in product-id order so repeated calls agree.
func (r *Repository) TopProducts(ctx context.Context, since time.Time, limit int) ([]TopProduct, error) {
	query := `SELECT p.id, p.name, p.sku, SUM(si.quantity), SUM(si.total_price)
FROM sale_items si
JOIN sales s ON s.id = si.sale_id
JOIN products p ON p.id = si.product_id
`
	args := []any{limit}
	if !since.IsZero() {
		query += "WHERE s.created_at >= $2\n"
		args = append(args, since.UTC())
	}
	query += `GROUP BY p.id, p.name, p.sku
ORDER BY SUM(si.total_price) DESC, p.id
LIMIT $1`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, db.Wrap(err)
	}
	defer rows.Close()
	products := []TopProduct{}
	for rows.Next() {
		var p TopProduct
		if err := rows.Scan(&p.ProductID, &p.Name, &p.SKU, &p.UnitsSold, &p.Revenue); err != nil {
			return nil, db.Wrap(err)
		}
		products = append(products, p)
	}
	return products, db.Wrap(rows.Err())
}

// SalesByDay returns sale count and total per UTC day for sales at or after
// since, only for days that had sales. The service zero-fills the gaps;
// callers pass since at a day boundary so the first bucket is complete.
func (r *Repository) SalesByDay(ctx context.Context, since time.Time) ([]SalesDataPoint, error) {
	rows, err := r.pool.Query(ctx, `SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD'), COUNT(*), COALESCE(SUM(total),0)
FROM sales WHERE created_at >= $1
GROUP BY 1 ORDER BY 1`, since.UTC())
	if err != nil {
		return nil, db.Wrap(err)
	}
	defer rows.Close()
	points := []SalesDataPoint{}
	for rows.Next() {
		var p SalesDataPoint
		if err := rows.Scan(&p.Date, &p.Count, &p.Total); err != nil {
			return nil, db.Wrap(err)
		}
		points = append(points, p)
	}
	return points, db.Wrap(rows.Err())
}

// LowStock lists active tracked products at or below their minimum level,
// most depleted first, with their category and supplier names.
func (r *Repository) LowStock(ctx context.Context) ([]LowStockProduct, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.id, p.name, p.sku, p.quantity, p.min_stock_level, c.name, s.name
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
LEFT JOIN suppliers s ON s.id = p.supplier_id
WHERE p.is_active AND p.track_stock AND p.quantity <= p.min_stock_level
ORDER BY p.quantity ASC, p.name ASC`)
	if err != nil {
		return nil, db.Wrap(err)
	}
	defer rows.Close()
	products := []LowStockProduct{}
	for rows.Next() {
		var p LowStockProduct
		if err := rows.Scan(&p.ProductID, &p.Name, &p.SKU, &p.Quantity, &p.MinStockLevel, &p.CategoryName, &p.SupplierName); err != nil {
			return nil, db.Wrap(err)
		}
		products = append(products, p)
	}
	return products, db.Wrap(rows.Err())
}
