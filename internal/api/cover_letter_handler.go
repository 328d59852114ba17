package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"internApply/internal/application"
	"internApply/internal/errcode"
)

const maxExperienceLength = 4000

// CoverLetterDrafter 生成求职信草稿。
type CoverLetterDrafter interface {
	Draft(ctx context.Context, fullName string, role application.Role, experience string) (string, error)
}

// CoverLetterHandler 是与提交流程无关的辅助接口。
type CoverLetterHandler struct {
	drafter CoverLetterDrafter
}

// NewCoverLetterHandler 返回处理器；drafter 为 nil 时接口返回 503。
func NewCoverLetterHandler(drafter CoverLetterDrafter) *CoverLetterHandler {
	return &CoverLetterHandler{drafter: drafter}
}

type coverLetterRequest struct {
	FullName   string `json:"fullName"`
	Role       string `json:"role"`
	Experience string `json:"experience"`
}

// Generate 生成一份约 150 词的求职信。
func (h *CoverLetterHandler) Generate(c *gin.Context) {
	if h.drafter == nil {
		Fail(c, errcode.New(errcode.CoverLetterDisabled, "cover letter drafting is not configured"))
		return
	}

	var req coverLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}
	role, err := application.ParseRole(req.Role)
	if err != nil {
		Fail(c, err)
		return
	}
	experience := strings.TrimSpace(req.Experience)
	if experience == "" {
		BadRequest(c, "experience is required")
		return
	}
	if len(experience) > maxExperienceLength {
		BadRequest(c, "experience is too long")
		return
	}

	text, err := h.drafter.Draft(c.Request.Context(), strings.TrimSpace(req.FullName), role, experience)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": text})
}
