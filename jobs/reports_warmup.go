package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/counterline/counterline/internal/reporting"
)

// ReportsWarmupJob refreshes the report caches so the first dashboard hit
// after a sale does not pay the aggregation cost.
type ReportsWarmupJob struct {
	reports *reporting.Service
	logger  *slog.Logger
}

// NewReportsWarmupJob constructs the job.
func NewReportsWarmupJob(reports *reporting.Service, logger *slog.Logger) *ReportsWarmupJob {
	return &ReportsWarmupJob{reports: reports, logger: logger}
}

// Handle processes TaskTypeReportsWarmup tasks.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if err := j.reports.Warm(ctx); err != nil {
		j.logger.Error("reports warmup", slog.Any("error", err))
		return err
	}
	j.logger.Info("reports warmup completed")
	return nil
}
