package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"internApply/internal/metrics"
	"internApply/internal/storage"
	"internApply/internal/tasks"
)

// ObjectStore 是对账任务用到的对象存储操作。
type ObjectStore interface {
	StatObject(ctx context.Context, key string) (storage.ObjectMeta, bool, error)
	ListObjects(ctx context.Context, prefix string, limit int) ([]storage.ObjectMeta, error)
	DeleteObject(ctx context.Context, key string) error
}

// PathIndex 查询哪些对象路径已经有申请记录。
type PathIndex interface {
	ReferencedPaths(ctx context.Context, paths []string) (map[string]bool, error)
}

const referenceBatchSize = 500

// ReconcileHandler 找出上传成功但记录写入失败留下的简历对象。
// 提交流程本身从不回滚，这里是唯一的清理入口。
type ReconcileHandler struct {
	objects       ObjectStore
	index         PathIndex
	logger        *slog.Logger
	gracePeriod   time.Duration
	deleteOrphans bool
	now           func() time.Time
}

// NewReconcileHandler 创建对账任务处理器。deleteOrphans 为 false 时只记录不删除。
func NewReconcileHandler(objects ObjectStore, index PathIndex, logger *slog.Logger, gracePeriod time.Duration, deleteOrphans bool) *ReconcileHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcileHandler{
		objects:       objects,
		index:         index,
		logger:        logger,
		gracePeriod:   gracePeriod,
		deleteOrphans: deleteOrphans,
		now:           time.Now,
	}
}

// Register 把两个任务类型挂到 mux 上。
func (h *ReconcileHandler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(tasks.TypeOrphanCheck, h.HandleCheck)
	mux.HandleFunc(tasks.TypeOrphanSweep, h.HandleSweep)
}

// HandleCheck 处理 orphan:check。
func (h *ReconcileHandler) HandleCheck(ctx context.Context, t *asynq.Task) error {
	var payload tasks.OrphanCheckPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal task payload failed", slog.Any("error", err))
		return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}

	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.String("resume_path", payload.ResumePath),
	)

	meta, exists, err := h.objects.StatObject(ctx, payload.ResumePath)
	if err != nil {
		log.Error("stat object failed", slog.Any("error", err))
		return err
	}
	if !exists {
		log.Info("object already gone, nothing to reconcile")
		return nil
	}

	orphans, err := h.orphansOf(ctx, []storage.ObjectMeta{meta})
	if err != nil {
		log.Error("query referenced paths failed", slog.Any("error", err))
		return err
	}
	if len(orphans) == 0 {
		log.Info("object is referenced by an application")
		return nil
	}
	return h.handleOrphan(ctx, log, meta)
}

// SweepResult 汇总一次全量扫描。
type SweepResult struct {
	Scanned int
	Orphans int
	Deleted int
}

// HandleSweep 处理 orphan:sweep。
func (h *ReconcileHandler) HandleSweep(ctx context.Context, t *asynq.Task) error {
	var payload tasks.OrphanSweepPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			h.logger.Error("unmarshal task payload failed", slog.Any("error", err))
			return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
		}
	}
	_, err := h.Sweep(ctx, payload.Prefix, payload.Limit)
	return err
}

// Sweep 检查宽限期之前上传的全部对象，返回统计信息。
func (h *ReconcileHandler) Sweep(ctx context.Context, prefix string, limit int) (SweepResult, error) {
	var result SweepResult

	objects, err := h.objects.ListObjects(ctx, prefix, limit)
	if err != nil {
		h.logger.Error("list objects failed", slog.Any("error", err))
		return result, err
	}
	result.Scanned = len(objects)

	cutoff := h.now().Add(-h.gracePeriod)
	candidates := make([]storage.ObjectMeta, 0, len(objects))
	for _, obj := range objects {
		if obj.LastModified.Before(cutoff) {
			candidates = append(candidates, obj)
		}
	}

	for start := 0; start < len(candidates); start += referenceBatchSize {
		end := min(start+referenceBatchSize, len(candidates))
		orphans, err := h.orphansOf(ctx, candidates[start:end])
		if err != nil {
			h.logger.Error("query referenced paths failed", slog.Any("error", err))
			return result, err
		}
		for _, obj := range orphans {
			result.Orphans++
			if err := h.handleOrphan(ctx, h.logger.With(slog.String("resume_path", obj.Key)), obj); err != nil {
				return result, err
			}
			if h.deleteOrphans {
				result.Deleted++
			}
		}
	}

	h.logger.Info("orphan sweep finished",
		slog.Int("scanned", result.Scanned),
		slog.Int("orphans", result.Orphans),
		slog.Int("deleted", result.Deleted),
	)
	return result, nil
}

func (h *ReconcileHandler) orphansOf(ctx context.Context, objects []storage.ObjectMeta) ([]storage.ObjectMeta, error) {
	paths := make([]string, len(objects))
	for i, obj := range objects {
		paths[i] = obj.Key
	}
	referenced, err := h.index.ReferencedPaths(ctx, paths)
	if err != nil {
		return nil, err
	}
	orphans := make([]storage.ObjectMeta, 0)
	for _, obj := range objects {
		if !referenced[obj.Key] {
			orphans = append(orphans, obj)
		}
	}
	return orphans, nil
}

func (h *ReconcileHandler) handleOrphan(ctx context.Context, log *slog.Logger, obj storage.ObjectMeta) error {
	if !h.deleteOrphans {
		log.Warn("orphaned resume found, deletion disabled",
			slog.Int64("size", obj.Size),
			slog.Time("last_modified", obj.LastModified),
		)
		metrics.ObserveOrphan(false)
		return nil
	}
	if err := h.objects.DeleteObject(ctx, obj.Key); err != nil {
		log.Error("delete orphaned resume failed", slog.Any("error", err))
		return err
	}
	log.Info("orphaned resume deleted", slog.Int64("size", obj.Size))
	metrics.ObserveOrphan(true)
	return nil
}
