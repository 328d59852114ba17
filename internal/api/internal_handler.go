package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"internApply/internal/api/middleware"
	"internApply/internal/database"
)

const resumeLinkTTL = 15 * time.Minute

// ApplicationReader 读取已提交的申请记录。
type ApplicationReader interface {
	ListRecent(ctx context.Context, limit int) ([]database.Application, error)
	Get(ctx context.Context, id uint) (*database.Application, error)
}

// Presigner 生成简历的限时下载链接。
type Presigner interface {
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error)
}

// InternalHandler 供招聘人员的内部工具使用，需要 X-Internal-Secret。
type InternalHandler struct {
	records ApplicationReader
	links   Presigner
}

// NewInternalHandler 返回 InternalHandler 实例。
func NewInternalHandler(records ApplicationReader, links Presigner) *InternalHandler {
	return &InternalHandler{records: records, links: links}
}

// ListApplications 按提交时间倒序列出申请。
func (h *InternalHandler) ListApplications(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	apps, err := h.records.ListRecent(c.Request.Context(), limit)
	if err != nil {
		middleware.LoggerFromContext(c).Error("list applications", "error", err)
		Internal(c, "failed to list applications")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": apps})
}

// ResumeLink 返回某条申请对应简历的预签名链接。
func (h *InternalHandler) ResumeLink(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "invalid application id")
		return
	}

	app, err := h.records.Get(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "application not found")
			return
		}
		middleware.LoggerFromContext(c).Error("load application", "error", err)
		Internal(c, "failed to load application")
		return
	}

	url, err := h.links.GeneratePresignedURL(c.Request.Context(), app.ResumePath, resumeLinkTTL)
	if err != nil {
		middleware.LoggerFromContext(c).Error("generate resume link", "resume_path", app.ResumePath, "error", err)
		Internal(c, "failed to generate resume link")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"url":        url,
		"resumePath": app.ResumePath,
		"expiresIn":  int(resumeLinkTTL.Seconds()),
	})
}
