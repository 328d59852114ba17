package middleware

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const slogLoggerKey = "slogLogger"

// resourceTags maps a route prefix to the attribute name its :id is logged under.
var resourceTags = []struct {
	prefix string
	attr   string
}{
	{"/v1/drafts/", "draft_id"},
	{"/v1/internal/applications/", "application_id"},
}

// SlogLoggerMiddleware 为每个请求派生带 correlation_id 与草稿/申请 id 的 logger，
// 请求结束时按状态码选择日志级别。
func SlogLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		path := route
		if path == "" {
			path = c.Request.URL.Path
		}

		attrs := []any{
			slog.String("correlation_id", GetCorrelationID(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
		}
		if id := c.Param("id"); id != "" {
			for _, tag := range resourceTags {
				if strings.HasPrefix(route, tag.prefix) {
					attrs = append(attrs, slog.String(tag.attr, id))
					break
				}
			}
		}
		requestLogger := logger.With(attrs...)
		c.Set(slogLoggerKey, requestLogger)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		requestLogger.Log(context.Background(), levelFor(status), "request completed",
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// LoggerFromContext 返回上下文中的 slog.Logger。
func LoggerFromContext(c *gin.Context) *slog.Logger {
	if value, ok := c.Get(slogLoggerKey); ok {
		if logger, ok := value.(*slog.Logger); ok {
			return logger
		}
	}
	return slog.Default()
}
