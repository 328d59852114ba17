package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeOrphanCheck = "orphan:check"
	TypeOrphanSweep = "orphan:sweep"
)

// QueueReconcile 是对账任务使用的队列。
const QueueReconcile = "reconcile"

// OrphanCheckPayload 指向一个可能没有对应记录的简历对象。
type OrphanCheckPayload struct {
	ResumePath    string `json:"resume_path"`
	CorrelationID string `json:"correlation_id"`
}

// NewOrphanCheckTask 构造单个对象的孤儿检查任务。
// 同一路径只会存在一个待处理任务。
func NewOrphanCheckTask(path, correlationID string, delay time.Duration) (*asynq.Task, error) {
	payload, err := json.Marshal(OrphanCheckPayload{
		ResumePath:    path,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeOrphanCheck, payload,
		asynq.Queue(QueueReconcile),
		asynq.TaskID(TypeOrphanCheck+":"+path),
		asynq.ProcessIn(delay),
		asynq.MaxRetry(5),
	), nil
}

// OrphanSweepPayload 控制一次全量扫描。
type OrphanSweepPayload struct {
	Prefix string `json:"prefix,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// NewOrphanSweepTask 构造周期性扫描任务。
func NewOrphanSweepTask(prefix string, limit int) (*asynq.Task, error) {
	payload, err := json.Marshal(OrphanSweepPayload{Prefix: prefix, Limit: limit})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeOrphanSweep, payload,
		asynq.Queue(QueueReconcile),
		asynq.MaxRetry(1),
	), nil
}
