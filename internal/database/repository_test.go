package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }

func TestInsertDefaultsStatusAndKeepsNullURLs(t *testing.T) {
	ctx := context.Background()
	store := NewApplicationStore(newTestDB(t))

	app := &Application{
		FullName:   "Jane Doe",
		Email:      "jane@example.com",
		Phone:      "+1 555",
		Role:       "Market Research",
		ResumePath: "1700000000000_jane_doe.pdf",
		ResumeMeta: datatypes.JSON(`{"name":"cv.pdf"}`),
	}
	if err := store.Insert(ctx, app); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if app.ID == 0 {
		t.Fatalf("id not assigned")
	}

	got, err := store.Get(ctx, app.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusNew {
		t.Fatalf("unexpected status %q", got.Status)
	}
	if got.LinkedInURL != nil || got.PortfolioURL != nil {
		t.Fatalf("optional urls should stay NULL: %v %v", got.LinkedInURL, got.PortfolioURL)
	}
}

func TestInsertRejectsDuplicatePath(t *testing.T) {
	ctx := context.Background()
	store := NewApplicationStore(newTestDB(t))

	first := &Application{FullName: "A", Email: "a@x", Phone: "1", Role: "UI/UX Design", ResumePath: "p.pdf", LinkedInURL: strPtr("https://l")}
	if err := store.Insert(ctx, first); err != nil {
		t.Fatalf("insert: %v", err)
	}
	dup := &Application{FullName: "B", Email: "b@x", Phone: "2", Role: "UI/UX Design", ResumePath: "p.pdf"}
	if err := store.Insert(ctx, dup); err == nil {
		t.Fatalf("expected unique violation on resume_path")
	}
}

func TestGetMissing(t *testing.T) {
	store := NewApplicationStore(newTestDB(t))
	if _, err := store.Get(context.Background(), 42); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestListRecentAndReferencedPaths(t *testing.T) {
	ctx := context.Background()
	store := NewApplicationStore(newTestDB(t))

	for i := 0; i < 3; i++ {
		app := &Application{FullName: "N", Email: "e", Phone: "p", Role: "Frontend Developer", ResumePath: fmt.Sprintf("%d.pdf", i)}
		if err := store.Insert(ctx, app); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	apps, err := store.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(apps) != 2 || apps[0].ResumePath != "2.pdf" {
		t.Fatalf("unexpected list %+v", apps)
	}

	refs, err := store.ReferencedPaths(ctx, []string{"0.pdf", "2.pdf", "orphan.pdf"})
	if err != nil {
		t.Fatalf("referenced: %v", err)
	}
	if !refs["0.pdf"] || !refs["2.pdf"] || refs["orphan.pdf"] {
		t.Fatalf("unexpected refs %v", refs)
	}

	empty, err := store.ReferencedPaths(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty input should short-circuit: %v %v", empty, err)
	}
}
