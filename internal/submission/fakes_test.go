package submission

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"

	"internApply/internal/application"
	"internApply/internal/database"
	"internApply/internal/storage"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var pdfBytes = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")

type fakeObjects struct {
	mu          sync.Mutex
	uploadErrs  []error
	makeErr     error
	uploads     []string
	uploaded    map[string][]byte
	makeCalls   int
	makePublic  bool
	uploadBlock chan struct{}
}

func newFakeObjects(uploadErrs ...error) *fakeObjects {
	return &fakeObjects{uploadErrs: uploadErrs, uploaded: map[string][]byte{}}
}

func (f *fakeObjects) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (*minio.UploadInfo, error) {
	if f.uploadBlock != nil {
		<-f.uploadBlock
	}
	b, _ := io.ReadAll(reader)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, objectName)
	if len(f.uploadErrs) > 0 {
		err := f.uploadErrs[0]
		f.uploadErrs = f.uploadErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if _, exists := f.uploaded[objectName]; exists {
		return nil, fmt.Errorf("put object %q: %w", objectName, storage.ErrObjectExists)
	}
	f.uploaded[objectName] = b
	return &minio.UploadInfo{Key: objectName}, nil
}

func (f *fakeObjects) MakeBucket(_ context.Context, public bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.makeCalls++
	f.makePublic = public
	return f.makeErr
}

type fakeRecords struct {
	mu       sync.Mutex
	err      error
	inserted []database.Application
}

func (f *fakeRecords) Insert(_ context.Context, app *database.Application) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	app.ID = uint(len(f.inserted) + 1)
	f.inserted = append(f.inserted, *app)
	return nil
}

type fakeOrphans struct {
	paths []string
}

func (f *fakeOrphans) ReportOrphan(_ context.Context, path string) error {
	f.paths = append(f.paths, path)
	return nil
}

func fixedClock() time.Time {
	return time.UnixMilli(1700000000000)
}

func sampleSnapshot() application.Snapshot {
	return application.Snapshot{
		FullName: "Jane O'Doe!!",
		Email:    "jane@example.com",
		Phone:    "+1 555 000 0000",
		Role:     application.RoleUIUX,
		Resume:   &application.Attachment{Name: "cv.pdf", Size: int64(len(pdfBytes)), ContentType: "application/pdf", Data: pdfBytes},
	}
}
