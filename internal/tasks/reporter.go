package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"internApply/internal/metrics"
)

// Enqueuer 是 *asynq.Client 中用到的部分。
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// OrphanReporter 在记录写入失败后把已上传的对象交给 worker 核对。
type OrphanReporter struct {
	client Enqueuer
	delay  time.Duration
	logger *slog.Logger
}

// NewOrphanReporter returns a reporter that schedules checks after delay.
func NewOrphanReporter(client Enqueuer, delay time.Duration, logger *slog.Logger) *OrphanReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrphanReporter{client: client, delay: delay, logger: logger}
}

// ReportOrphan enqueues an orphan:check task for path. A check already queued
// for the same path counts as success.
func (r *OrphanReporter) ReportOrphan(ctx context.Context, path string) error {
	correlationID := CorrelationIDFrom(ctx)
	task, err := NewOrphanCheckTask(path, correlationID, r.delay)
	if err != nil {
		return fmt.Errorf("build orphan check task: %w", err)
	}

	_, err = r.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		err = nil
	}
	metrics.ObserveEnqueue(TypeOrphanCheck, err)
	if err != nil {
		return fmt.Errorf("enqueue orphan check: %w", err)
	}

	r.logger.Info("orphan check scheduled",
		slog.String("resume_path", path),
		slog.String("correlation_id", correlationID),
	)
	return nil
}

type correlationKey struct{}

// WithCorrelationID 把请求的 correlation id 放进 ctx，随任务一起入队。
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationIDFrom returns the id stored by WithCorrelationID, or "".
func CorrelationIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
