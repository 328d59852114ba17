package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"internApply/internal/api/middleware"
	"internApply/internal/errcode"
)

// Error 输出统一的错误响应：{"error": msg, "code": code}。
func Error(c *gin.Context, status, code int, msg string) {
	c.JSON(status, gin.H{"error": msg, "code": code})
}

func BadRequest(c *gin.Context, msg string) { Error(c, http.StatusBadRequest, errcode.InvalidRequest, msg) }
func NotFound(c *gin.Context, msg string)   { Error(c, http.StatusNotFound, errcode.DraftNotFound, msg) }
func Internal(c *gin.Context, msg string)   { Error(c, http.StatusInternalServerError, errcode.SystemError, msg) }

// Fail 把 errcode 错误映射为 HTTP 状态码；非 errcode 错误不向客户端暴露细节。
func Fail(c *gin.Context, err error) {
	var e *errcode.Error
	if !errors.As(err, &e) {
		middleware.LoggerFromContext(c).Error("unhandled error", "error", err)
		Internal(c, "internal server error")
		return
	}
	if !errcode.IsUserError(e.Code) {
		middleware.LoggerFromContext(c).Error("request failed", "code", e.Code, "error", err)
	}
	Error(c, StatusOf(e.Code), e.Code, e.Message)
}

// StatusOf returns the HTTP status used for an error code.
func StatusOf(code int) int {
	switch code {
	case errcode.OK:
		return http.StatusOK
	case errcode.OversizedAttachment:
		return http.StatusRequestEntityTooLarge
	case errcode.UnsupportedAttachment:
		return http.StatusUnsupportedMediaType
	case errcode.MissingAttachment, errcode.UnknownField, errcode.InvalidRole,
		errcode.InfectedAttachment, errcode.InvalidRequest:
		return http.StatusBadRequest
	case errcode.SubmissionInFlight:
		return http.StatusConflict
	case errcode.DraftNotFound:
		return http.StatusNotFound
	case errcode.UploadFailed, errcode.InsertFailed, errcode.ContainerMissing,
		errcode.ContainerMissingFatal, errcode.CoverLetterFailed:
		return http.StatusBadGateway
	case errcode.CoverLetterDisabled:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
