package submission

import (
	"context"
	"log/slog"
	"time"

	"internApply/internal/application"
	"internApply/internal/errcode"
)

// DegradedSubmitter 在未配置存储凭据时使用：等待固定时长、记录日志后直接成功，
// 不访问任何外部服务。
type DegradedSubmitter struct {
	delay  time.Duration
	logger *slog.Logger
}

// NewDegradedSubmitter returns the mock submitter.
func NewDegradedSubmitter(delay time.Duration, logger *slog.Logger) *DegradedSubmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DegradedSubmitter{delay: delay, logger: logger}
}

func (d *DegradedSubmitter) Mode() string { return ModeMock }

func (d *DegradedSubmitter) Submit(ctx context.Context, snap application.Snapshot) (Receipt, error) {
	d.logger.Warn("storage backend not configured, simulating successful submission")

	if d.delay > 0 {
		timer := time.NewTimer(d.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Receipt{}, errcode.Wrap(errcode.SystemError, "submission cancelled", ctx.Err())
		case <-timer.C:
		}
	}

	resumeName := ""
	if snap.Resume != nil {
		resumeName = snap.Resume.Name
	}
	d.logger.Info("mock submission",
		slog.String("full_name", snap.FullName),
		slog.String("email", snap.Email),
		slog.String("phone", snap.Phone),
		slog.String("linkedin", snap.LinkedIn),
		slog.String("portfolio", snap.Portfolio),
		slog.String("role", string(snap.Role)),
		slog.String("resume_name", resumeName),
	)
	return Receipt{Mode: ModeMock, Role: snap.Role}, nil
}
