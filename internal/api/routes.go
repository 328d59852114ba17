package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"internApply/internal/api/middleware"
	"internApply/internal/application"
	"internApply/internal/submission"
)

// Deps 汇总路由需要的依赖。Records/Links 为 nil 时（降级模式）不注册内部接口。
type Deps struct {
	Drafts         *submission.Registry
	NewDraft       func() *submission.Orchestrator
	MaxResumeBytes int64
	Accept         string
	Drafter        CoverLetterDrafter
	Records        ApplicationReader
	Links          Presigner
	InternalSecret string
}

// RegisterRoutes 注册 API 路由，不包含 /api 前缀。
func RegisterRoutes(router *gin.Engine, deps Deps) {
	draftHandler := NewDraftHandler(deps.Drafts, deps.MaxResumeBytes)
	applicationHandler := NewApplicationHandler(deps.NewDraft, deps.MaxResumeBytes)
	coverLetterHandler := NewCoverLetterHandler(deps.Drafter)

	v1 := router.Group("/v1")
	{
		v1.GET("/roles", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"roles":          application.Roles(),
				"default":        application.DefaultRole,
				"accept":         deps.Accept,
				"maxResumeBytes": deps.MaxResumeBytes,
			})
		})

		draftGroup := v1.Group("/drafts")
		{
			draftGroup.POST("", draftHandler.Create)
			draftGroup.GET("/:id", draftHandler.Get)
			draftGroup.PUT("/:id/fields/:name", draftHandler.SetField)
			draftGroup.PUT("/:id/role", draftHandler.SetRole)
			draftGroup.PUT("/:id/resume", draftHandler.AttachResume)
			draftGroup.DELETE("/:id/resume", draftHandler.RemoveResume)
			draftGroup.POST("/:id/submit", draftHandler.Submit)
			draftGroup.POST("/:id/reset", draftHandler.Reset)
		}

		v1.POST("/applications", applicationHandler.Submit)
		v1.POST("/cover-letter", coverLetterHandler.Generate)

		if deps.Records != nil && deps.Links != nil {
			internalHandler := NewInternalHandler(deps.Records, deps.Links)
			internalGroup := v1.Group("/internal")
			internalGroup.Use(middleware.InternalSecretMiddleware(deps.InternalSecret))
			{
				internalGroup.GET("/applications", internalHandler.ListApplications)
				internalGroup.GET("/applications/:id/resume-link", internalHandler.ResumeLink)
			}
		}
	}
}
