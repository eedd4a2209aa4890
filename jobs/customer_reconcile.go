package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CustomerReconcileJob recomputes customer aggregates from the sales table.
// Aggregates are bumped inside the sale transaction, so this is a safety net
// against operator edits, not a correctness requirement.
type CustomerReconcileJob struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewCustomerReconcileJob constructs the job.
func NewCustomerReconcileJob(pool *pgxpool.Pool, logger *slog.Logger) *CustomerReconcileJob {
	return &CustomerReconcileJob{pool: pool, logger: logger}
}

// Handle processes TaskTypeCustomerReconcile tasks.
func (j *CustomerReconcileJob) Handle(ctx context.Context, t *asynq.Task) error {
	tag, err := j.pool.Exec(ctx, `UPDATE customers c
SET total_spent = agg.total, loyalty_points = agg.points
FROM (
  SELECT customer_id, COALESCE(SUM(total),0) AS total, COALESCE(SUM(FLOOR(total)),0) AS points
  FROM sales WHERE customer_id IS NOT NULL
  GROUP BY customer_id
) agg
WHERE c.id = agg.customer_id
  AND (c.total_spent <> agg.total OR c.loyalty_points <> agg.points)`)
	if err != nil {
		j.logger.Error("customer reconcile", slog.Any("error", err))
		return err
	}
	j.logger.Info("customer reconcile completed", slog.Int64("updated", tag.RowsAffected()))
	return nil
}
