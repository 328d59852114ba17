package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"internApply/internal/api/middleware"
	"internApply/internal/metrics"
)

// NewRouter 构建 Gin 路由引擎，挂载通用中间件、健康检查与指标端点。
// mode 为 live 或 mock，便于运维确认当前是否真的在写存储。
func NewRouter(logger *slog.Logger, mode string) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.CorrelationIDMiddleware(),
		middleware.SlogLoggerMiddleware(logger),
		metrics.GinMiddleware(),
		gin.Recovery(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": mode})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	return router
}
