package submission

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"

	"internApply/internal/application"
	"internApply/internal/database"
)

// 运行模式，进程启动时确定。
const (
	ModeLive = "live"
	ModeMock = "mock"
)

// Receipt 描述一次成功提交的结果。
type Receipt struct {
	Mode              string           `json:"mode"`
	Role              application.Role `json:"role"`
	ApplicationID     uint             `json:"applicationId,omitempty"`
	ResumePath        string           `json:"resumePath,omitempty"`
	BucketProvisioned bool             `json:"bucketProvisioned,omitempty"`
}

// Submitter 持久化一份申请快照。
type Submitter interface {
	Mode() string
	Submit(ctx context.Context, snap application.Snapshot) (Receipt, error)
}

// ObjectStore is the object storage collaborator; *storage.Client satisfies it.
type ObjectStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	MakeBucket(ctx context.Context, public bool) error
}

// RecordStore is the structured record collaborator; *database.ApplicationStore satisfies it.
type RecordStore interface {
	Insert(ctx context.Context, app *database.Application) error
}

// OrphanReporter 在记录写入失败、对象已上传时收到通知，用于后续对账。
type OrphanReporter interface {
	ReportOrphan(ctx context.Context, resumePath string) error
}
