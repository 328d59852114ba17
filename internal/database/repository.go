package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// ApplicationStore 封装 applications 表的读写。
type ApplicationStore struct {
	db *gorm.DB
}

// NewApplicationStore returns a store bound to db.
func NewApplicationStore(db *gorm.DB) *ApplicationStore {
	return &ApplicationStore{db: db}
}

// Insert 写入一条申请记录，成功后回填 ID。
func (s *ApplicationStore) Insert(ctx context.Context, app *Application) error {
	if app.Status == "" {
		app.Status = StatusNew
	}
	if err := s.db.WithContext(ctx).Create(app).Error; err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// Get 按 ID 读取申请记录，不存在时返回 gorm.ErrRecordNotFound。
func (s *ApplicationStore) Get(ctx context.Context, id uint) (*Application, error) {
	var app Application
	if err := s.db.WithContext(ctx).First(&app, id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// ListRecent 按创建时间倒序列出申请记录。
func (s *ApplicationStore) ListRecent(ctx context.Context, limit int) ([]Application, error) {
	if limit <= 0 {
		limit = 50
	}
	var apps []Application
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// ReferencedPaths 返回 paths 中已被申请记录引用的部分。
func (s *ApplicationStore) ReferencedPaths(ctx context.Context, paths []string) (map[string]bool, error) {
	found := make(map[string]bool, len(paths))
	if len(paths) == 0 {
		return found, nil
	}
	var rows []string
	if err := s.db.WithContext(ctx).
		Model(&Application{}).
		Where("resume_path IN ?", paths).
		Pluck("resume_path", &rows).Error; err != nil {
		return nil, fmt.Errorf("query resume paths: %w", err)
	}
	for _, p := range rows {
		found[p] = true
	}
	return found, nil
}
