package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"internApply/internal/application"
	"internApply/internal/errcode"
	"internApply/internal/submission"
)

// submitTimeout 限制一次提交（上传 + 写库）的总时长。
const submitTimeout = 2 * time.Minute

// DraftHandler 暴露服务端保存的申请草稿。
type DraftHandler struct {
	drafts   *submission.Registry
	maxBytes int64
}

// NewDraftHandler 返回 DraftHandler 实例。
func NewDraftHandler(drafts *submission.Registry, maxBytes int64) *DraftHandler {
	return &DraftHandler{drafts: drafts, maxBytes: maxBytes}
}

type draftResponse struct {
	ID    string          `json:"id"`
	Draft submission.View `json:"draft"`
}

type fieldRequest struct {
	Value string `json:"value"`
}

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

// Create 新建空白草稿，默认岗位为 Market Research。
func (h *DraftHandler) Create(c *gin.Context) {
	id, o := h.drafts.Create()
	c.JSON(http.StatusCreated, draftResponse{ID: id, Draft: o.View()})
}

// Get 返回草稿当前内容与提交状态。
func (h *DraftHandler) Get(c *gin.Context) {
	h.withDraft(c, func(id string, o *submission.Orchestrator) error {
		return nil
	})
}

// SetField 写入单个文本字段，链接字段会被补全协议。
func (h *DraftHandler) SetField(c *gin.Context) {
	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}
	h.withDraft(c, func(_ string, o *submission.Orchestrator) error {
		return o.SetField(application.Field(c.Param("name")), req.Value)
	})
}

// SetRole 切换岗位。
func (h *DraftHandler) SetRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "role is required")
		return
	}
	h.withDraft(c, func(_ string, o *submission.Orchestrator) error {
		role, err := application.ParseRole(req.Role)
		if err != nil {
			return err
		}
		return o.SetRole(role)
	})
}

// AttachResume 接收 multipart 字段 resume。
func (h *DraftHandler) AttachResume(c *gin.Context) {
	limitBody(c, h.maxBytes)
	h.withDraft(c, func(_ string, o *submission.Orchestrator) error {
		att, err := readAttachment(c, h.maxBytes)
		if err != nil {
			return errcode.Wrap(errcode.InvalidRequest, "invalid multipart upload", err)
		}
		return o.AttachResume(c.Request.Context(), att)
	})
}

// RemoveResume 移除已选择的简历。
func (h *DraftHandler) RemoveResume(c *gin.Context) {
	h.withDraft(c, func(_ string, o *submission.Orchestrator) error {
		return o.RemoveResume()
	})
}

// Reset 清空表单，开始新的申请。
func (h *DraftHandler) Reset(c *gin.Context) {
	h.withDraft(c, func(_ string, o *submission.Orchestrator) error {
		return o.Reset()
	})
}

// Submit 提交草稿。客户端断开不会中断进行中的提交。
func (h *DraftHandler) Submit(c *gin.Context) {
	o, ok := h.lookup(c)
	if !ok {
		return
	}

	ctx, cancel := submitContext(c)
	defer cancel()

	receipt, err := o.Submit(ctx)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":      c.Param("id"),
		"receipt": receipt,
		"draft":   o.View(),
	})
}

func (h *DraftHandler) lookup(c *gin.Context) (*submission.Orchestrator, bool) {
	o, ok := h.drafts.Get(c.Param("id"))
	if !ok {
		NotFound(c, "draft not found")
		return nil, false
	}
	return o, true
}

// withDraft 执行 fn 后返回最新视图；fn 出错时按错误码响应。
func (h *DraftHandler) withDraft(c *gin.Context, fn func(id string, o *submission.Orchestrator) error) {
	o, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := fn(c.Param("id"), o); err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, draftResponse{ID: c.Param("id"), Draft: o.View()})
}

// submitContext 与客户端断开解耦：上传完成后浏览器关闭也要把记录写完。
// correlation id 已由中间件放进 request ctx，WithoutCancel 会保留它。
func submitContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(c.Request.Context()), submitTimeout)
}
