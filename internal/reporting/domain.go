package reporting

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardMetrics is the storefront headline view. Day windows are UTC;
// TotalSales covers the whole sale history.
type DashboardMetrics struct {
	TodaySales    decimal.Decimal `json:"today_sales"`
	TodayCount    int64           `json:"today_count"`
	MonthSales    decimal.Decimal `json:"month_sales"`
	MonthCount    int64           `json:"month_count"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalCount    int64           `json:"total_count"`
	ProductCount  int64           `json:"product_count"`
	CategoryCount int64           `json:"category_count"`
	CustomerCount int64           `json:"customer_count"`
	LowStockCount int64           `json:"low_stock_count"`
	PendingOrders int64           `json:"pending_orders"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// TopProduct is one row of the revenue ranking.
type TopProduct struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	UnitsSold int64           `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// SalesDataPoint is one day bucket of the sales series. Days without sales
// are present with zero values.
type SalesDataPoint struct {
	Date  string          `json:"date"`
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// LowStockProduct is a tracked product at or below its minimum level.
// Category and supplier names are nil when the product has neither assigned.
type LowStockProduct struct {
	ProductID     uuid.UUID `json:"product_id"`
	Name          string    `json:"name"`
	SKU           string    `json:"sku"`
	Quantity      int64     `json:"quantity"`
	MinStockLevel int64     `json:"min_stock_level"`
	CategoryName  *string   `json:"category_name"`
	SupplierName  *string   `json:"supplier_name"`
}
