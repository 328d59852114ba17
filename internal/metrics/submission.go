package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "submission",
			Name:      "attempts_total",
			Help:      "提交尝试总数，按模式与错误码（0 为成功）划分。",
		},
		[]string{"mode", "code"},
	)

	submissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "intake",
			Subsystem: "submission",
			Name:      "duration_seconds",
			Help:      "一次提交（上传 + 写库）的耗时分布（秒）。",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	bucketProvisionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "storage",
			Name:      "bucket_provision_total",
			Help:      "上传时发现 Bucket 缺失而自动创建的次数。",
		},
		[]string{"result"},
	)

	draftsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "intake",
			Subsystem: "drafts",
			Name:      "open",
			Help:      "内存中尚未过期的草稿数量。",
		},
	)

	orphansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intake",
			Subsystem: "reconcile",
			Name:      "orphans_total",
			Help:      "对账发现的无记录简历对象数量。",
		},
		[]string{"action"},
	)
)

// ObserveSubmission records one submission attempt.
func ObserveSubmission(mode string, code int, took time.Duration) {
	submissionsTotal.WithLabelValues(mode, strconv.Itoa(code)).Inc()
	submissionDuration.WithLabelValues(mode).Observe(took.Seconds())
}

// ObserveBucketProvision records an auto-provisioning attempt.
func ObserveBucketProvision(ok bool) {
	result := "failed"
	if ok {
		result = "created"
	}
	bucketProvisionTotal.WithLabelValues(result).Inc()
}

// ObserveOrphan records an orphaned object found by the reconciler.
func ObserveOrphan(deleted bool) {
	action := "kept"
	if deleted {
		action = "deleted"
	}
	orphansTotal.WithLabelValues(action).Inc()
}

// SetOpenDrafts publishes the current draft registry size.
func SetOpenDrafts(n int) {
	draftsOpen.Set(float64(n))
}
