package database

import (
	"time"

	"gorm.io/datatypes"
)

// 申请记录状态。新记录统一为 StatusNew。
const (
	StatusNew = "new"
)

// Application 表示一次已提交的岗位申请，对应 applications 表。
// ResumePath 指向 resumes Bucket 中已成功写入的对象。
type Application struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	FullName     string    `gorm:"size:255;not null" json:"full_name"`
	Email        string    `gorm:"size:255;not null;index" json:"email"`
	Phone        string    `gorm:"size:64;not null" json:"phone"`
	LinkedInURL  *string   `gorm:"column:linkedin_url;size:512" json:"linkedin_url"`
	PortfolioURL *string   `gorm:"column:portfolio_url;size:512" json:"portfolio_url"`
	Role         string    `gorm:"size:64;not null" json:"role"`
	ResumePath   string    `gorm:"size:512;not null;uniqueIndex" json:"resume_path"`
	Status       string    `gorm:"size:32;not null" json:"status"`

	// ResumeMeta 记录原始文件名、大小与类型，便于人工核对。
	ResumeMeta datatypes.JSON `gorm:"type:jsonb" json:"resume_meta,omitempty"`
}

// TableName pins the table name used by the intake form.
func (Application) TableName() string { return "applications" }
