package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeReportsWarmup recomputes the report caches.
	TaskTypeReportsWarmup = "reports:warmup"
	// TaskTypeLowStockScan flags products at or below their minimum level.
	TaskTypeLowStockScan = "stock:lowscan"
	// TaskTypeCustomerReconcile recomputes customer aggregates from sales.
	TaskTypeCustomerReconcile = "customers:reconcile"
)

// NewReportsWarmupTask constructs the warmup task. The task carries no
// payload; the worker recomputes the default report windows.
func NewReportsWarmupTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskTypeReportsWarmup, nil), nil
}

// NewLowStockScanTask constructs the low stock scan task.
func NewLowStockScanTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskTypeLowStockScan, nil), nil
}

// NewCustomerReconcileTask constructs the customer reconcile task.
func NewCustomerReconcileTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskTypeCustomerReconcile, nil), nil
}
