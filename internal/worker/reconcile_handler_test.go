package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"

	"internApply/internal/storage"
	"internApply/internal/tasks"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeStore struct {
	objects map[string]storage.ObjectMeta
	deleted []string
	listErr error
}

func newFakeStore(objs ...storage.ObjectMeta) *fakeStore {
	s := &fakeStore{objects: map[string]storage.ObjectMeta{}}
	for _, o := range objs {
		s.objects[o.Key] = o
	}
	return s
}

func (s *fakeStore) StatObject(_ context.Context, key string) (storage.ObjectMeta, bool, error) {
	obj, ok := s.objects[key]
	return obj, ok, nil
}

func (s *fakeStore) ListObjects(_ context.Context, _ string, _ int) ([]storage.ObjectMeta, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]storage.ObjectMeta, 0, len(s.objects))
	for _, o := range s.objects {
		out = append(out, o)
	}
	return out, nil
}

func (s *fakeStore) DeleteObject(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	delete(s.objects, key)
	return nil
}

type fakeIndex map[string]bool

func (f fakeIndex) ReferencedPaths(_ context.Context, paths []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, p := range paths {
		if f[p] {
			out[p] = true
		}
	}
	return out, nil
}

var now = time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)

func newHandler(store *fakeStore, index fakeIndex, deleteOrphans bool) *ReconcileHandler {
	h := NewReconcileHandler(store, index, quiet, 24*time.Hour, deleteOrphans)
	h.now = func() time.Time { return now }
	return h
}

func checkTask(t *testing.T, path string) *asynq.Task {
	t.Helper()
	task, err := tasks.NewOrphanCheckTask(path, "req-1", 0)
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	return task
}

func TestHandleCheckDeletesUnreferencedObject(t *testing.T) {
	store := newFakeStore(storage.ObjectMeta{Key: "orphan.pdf", LastModified: now})
	h := newHandler(store, fakeIndex{}, true)

	if err := h.HandleCheck(context.Background(), checkTask(t, "orphan.pdf")); err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "orphan.pdf" {
		t.Fatalf("expected orphan to be deleted, got %v", store.deleted)
	}
}

func TestHandleCheckKeepsReferencedObject(t *testing.T) {
	store := newFakeStore(storage.ObjectMeta{Key: "kept.pdf", LastModified: now})
	h := newHandler(store, fakeIndex{"kept.pdf": true}, true)

	if err := h.HandleCheck(context.Background(), checkTask(t, "kept.pdf")); err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(store.deleted) != 0 {
		t.Fatalf("referenced object deleted")
	}
}

func TestHandleCheckMissingObjectIsNoop(t *testing.T) {
	store := newFakeStore()
	h := newHandler(store, fakeIndex{}, true)
	if err := h.HandleCheck(context.Background(), checkTask(t, "gone.pdf")); err != nil {
		t.Fatalf("check: %v", err)
	}
}

func TestHandleCheckRejectsBadPayload(t *testing.T) {
	h := newHandler(newFakeStore(), fakeIndex{}, true)
	err := h.HandleCheck(context.Background(), asynq.NewTask(tasks.TypeOrphanCheck, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestSweepRespectsGracePeriod(t *testing.T) {
	store := newFakeStore(
		storage.ObjectMeta{Key: "old-orphan.pdf", LastModified: now.Add(-48 * time.Hour)},
		storage.ObjectMeta{Key: "old-kept.pdf", LastModified: now.Add(-48 * time.Hour)},
		storage.ObjectMeta{Key: "fresh.pdf", LastModified: now.Add(-time.Hour)},
	)
	h := newHandler(store, fakeIndex{"old-kept.pdf": true}, true)

	result, err := h.Sweep(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Scanned != 3 || result.Orphans != 1 || result.Deleted != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, ok := store.objects["fresh.pdf"]; !ok {
		t.Fatalf("object inside grace period must survive")
	}
	if _, ok := store.objects["old-orphan.pdf"]; ok {
		t.Fatalf("old orphan should be deleted")
	}
}

func TestSweepReportOnly(t *testing.T) {
	store := newFakeStore(storage.ObjectMeta{Key: "old.pdf", LastModified: now.Add(-72 * time.Hour)})
	h := newHandler(store, fakeIndex{}, false)

	result, err := h.Sweep(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Orphans != 1 || result.Deleted != 0 || len(store.deleted) != 0 {
		t.Fatalf("report-only sweep must not delete: %+v", result)
	}
}

func TestHandleSweepPropagatesListFailure(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("minio unavailable")
	h := newHandler(store, fakeIndex{}, true)

	task, err := tasks.NewOrphanSweepTask("", 0)
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if err := h.HandleSweep(context.Background(), task); err == nil {
		t.Fatalf("expected list failure")
	}
}
