package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/counterline/counterline/internal/reporting"
)

// LowStockScanJob surfaces products at or below their minimum stock level in
// the worker log, one line per product so log tooling can alert on it.
type LowStockScanJob struct {
	reports *reporting.Service
	logger  *slog.Logger
}

// NewLowStockScanJob constructs the job.
func NewLowStockScanJob(reports *reporting.Service, logger *slog.Logger) *LowStockScanJob {
	return &LowStockScanJob{reports: reports, logger: logger}
}

// Handle processes TaskTypeLowStockScan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	products, err := j.reports.LowStock(ctx)
	if err != nil {
		j.logger.Error("low stock scan", slog.Any("error", err))
		return err
	}
	for _, p := range products {
		j.logger.Warn("low stock",
			slog.String("sku", p.SKU),
			slog.String("name", p.Name),
			slog.Int64("quantity", p.Quantity),
			slog.Int64("min_stock_level", p.MinStockLevel))
	}
	j.logger.Info("low stock scan completed", slog.Int("flagged", len(products)))
	return nil
}
