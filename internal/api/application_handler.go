package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"internApply/internal/application"
	"internApply/internal/errcode"
	"internApply/internal/submission"
)

// ApplicationHandler 处理一次性提交：同一个 multipart 请求里带上全部字段与简历。
type ApplicationHandler struct {
	newDraft func() *submission.Orchestrator
	maxBytes int64
}

// NewApplicationHandler 返回 ApplicationHandler 实例。
func NewApplicationHandler(newDraft func() *submission.Orchestrator, maxBytes int64) *ApplicationHandler {
	return &ApplicationHandler{newDraft: newDraft, maxBytes: maxBytes}
}

var formFields = []application.Field{
	application.FieldFullName,
	application.FieldEmail,
	application.FieldPhone,
	application.FieldLinkedIn,
	application.FieldPortfolio,
}

// Submit 接收 multipart 表单并立即提交。
func (h *ApplicationHandler) Submit(c *gin.Context) {
	limitBody(c, h.maxBytes)
	o := h.newDraft()

	att, err := readAttachment(c, h.maxBytes)
	if err != nil {
		Fail(c, errcode.Wrap(errcode.InvalidRequest, "invalid multipart upload", err))
		return
	}

	for _, field := range formFields {
		if err := o.SetField(field, c.PostForm(string(field))); err != nil {
			Fail(c, err)
			return
		}
	}
	if raw := strings.TrimSpace(c.PostForm("role")); raw != "" {
		role, err := application.ParseRole(raw)
		if err != nil {
			Fail(c, err)
			return
		}
		if err := o.SetRole(role); err != nil {
			Fail(c, err)
			return
		}
	}
	if att != nil {
		if err := o.AttachResume(c.Request.Context(), att); err != nil {
			Fail(c, err)
			return
		}
	}

	ctx, cancel := submitContext(c)
	defer cancel()

	receipt, err := o.Submit(ctx)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"receipt": receipt})
}
