package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"internApply/internal/application"
	"internApply/internal/database"
	"internApply/internal/errcode"
	"internApply/internal/metrics"
	"internApply/internal/storage"
)

// LiveSubmitter 先上传简历再写入申请记录。两步之间没有事务：
// 记录写入失败时已上传的对象不会回滚，只会交给 OrphanReporter。
type LiveSubmitter struct {
	objects ObjectStore
	records RecordStore
	bucket  string
	logger  *slog.Logger
	orphans OrphanReporter
	now     func() time.Time
}

// LiveOption customizes a LiveSubmitter.
type LiveOption func(*LiveSubmitter)

// WithOrphanReporter registers a reporter for uploads left without a record.
func WithOrphanReporter(r OrphanReporter) LiveOption {
	return func(s *LiveSubmitter) { s.orphans = r }
}

// WithClock overrides the timestamp source used for object paths.
func WithClock(now func() time.Time) LiveOption {
	return func(s *LiveSubmitter) { s.now = now }
}

// NewLiveSubmitter wires the two collaborators. bucket is only used in messages.
func NewLiveSubmitter(objects ObjectStore, records RecordStore, bucket string, logger *slog.Logger, opts ...LiveOption) *LiveSubmitter {
	if logger == nil {
		logger = slog.Default()
	}
	s := &LiveSubmitter{
		objects: objects,
		records: records,
		bucket:  bucket,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LiveSubmitter) Mode() string { return ModeLive }

// Submit 按顺序执行：生成路径 → 上传 → (Bucket 缺失时创建并重试一次) → 写入记录。
func (s *LiveSubmitter) Submit(ctx context.Context, snap application.Snapshot) (Receipt, error) {
	if snap.Resume == nil {
		return Receipt{}, errcode.New(errcode.MissingAttachment, "Please attach your resume.")
	}

	path := ResumePath(s.now(), snap.FullName, snap.Resume)
	log := s.logger.With(slog.String("resume_path", path), slog.String("role", string(snap.Role)))
	receipt := Receipt{Mode: ModeLive, Role: snap.Role, ResumePath: path}

	err := s.upload(ctx, path, snap.Resume)
	if err != nil && storage.IsNoSuchBucket(err) {
		missing := errcode.Wrap(errcode.ContainerMissing, fmt.Sprintf("storage bucket '%s' not found", s.bucket), err)
		log.Warn("bucket not found, attempting to create", slog.Any("error", missing))
		if createErr := s.objects.MakeBucket(ctx, true); createErr != nil {
			metrics.ObserveBucketProvision(false)
			log.Error("auto-creation of bucket failed", slog.Any("error", createErr))
			return Receipt{}, errcode.Wrap(errcode.ContainerMissingFatal, fmt.Sprintf(
				"Storage bucket '%s' is missing. Open the object storage console and create a new public bucket named '%s'.",
				s.bucket, s.bucket), errors.Join(missing, createErr))
		}
		metrics.ObserveBucketProvision(true)
		receipt.BucketProvisioned = true
		err = s.upload(ctx, path, snap.Resume)
	}
	if err != nil {
		log.Error("upload resume failed", slog.Any("error", err))
		return Receipt{}, errcode.Wrap(errcode.UploadFailed, "Upload failed: "+err.Error(), err)
	}

	record := &database.Application{
		FullName:     snap.FullName,
		Email:        snap.Email,
		Phone:        snap.Phone,
		LinkedInURL:  optional(snap.LinkedIn),
		PortfolioURL: optional(snap.Portfolio),
		Role:         string(snap.Role),
		ResumePath:   path,
		Status:       database.StatusNew,
		ResumeMeta:   resumeMeta(snap.Resume),
	}
	if err := s.records.Insert(ctx, record); err != nil {
		log.Error("insert application failed, uploaded resume left in place", slog.Any("error", err))
		s.reportOrphan(ctx, log, path)
		return Receipt{}, errcode.Wrap(errcode.InsertFailed, "Database insert failed: "+err.Error(), err)
	}

	receipt.ApplicationID = record.ID
	log.Info("application submitted", slog.Uint64("application_id", uint64(record.ID)))
	return receipt, nil
}

func (s *LiveSubmitter) upload(ctx context.Context, path string, a *application.Attachment) error {
	contentType := a.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.objects.UploadFile(ctx, path, bytes.NewReader(a.Data), int64(len(a.Data)), contentType)
	return err
}

func (s *LiveSubmitter) reportOrphan(ctx context.Context, log *slog.Logger, path string) {
	if s.orphans == nil {
		return
	}
	if err := s.orphans.ReportOrphan(context.WithoutCancel(ctx), path); err != nil {
		log.Warn("report orphaned resume failed", slog.Any("error", err))
	}
}

// optional 把空字符串存成 NULL。
func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func resumeMeta(a *application.Attachment) datatypes.JSON {
	raw, err := json.Marshal(map[string]any{
		"name":         a.Name,
		"size":         len(a.Data),
		"content_type": a.ContentType,
	})
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
