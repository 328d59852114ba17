package errcode

import (
	"errors"
	"fmt"
)

// 错误码约定：
// - 0：无错误
// - 4xxx：用户可修正/可恢复的错误（表单保持可编辑）
// - 5xxx：系统或外部协作方错误（提交中断，用户可重试）
const (
	OK                    = 0
	MissingAttachment     = 4001
	OversizedAttachment   = 4002
	UnsupportedAttachment = 4003
	ContainerMissing      = 4004
	SubmissionInFlight    = 4009
	UnknownField          = 4010
	InvalidRole           = 4011
	InfectedAttachment    = 4012
	InvalidRequest        = 4022
	DraftNotFound         = 4040

	SystemError           = 5000
	UploadFailed          = 5001
	InsertFailed          = 5002
	ContainerMissingFatal = 5003
	CoverLetterFailed     = 5004
	CoverLetterDisabled   = 5030
)

// Error 携带错误码与面向用户的提示信息，Err 保留底层原因。
type Error struct {
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is 让 errors.Is 可以按错误码比较。
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Code == e.Code
	}
	return false
}

// New 构造不带底层原因的错误。
func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap 构造带底层原因的错误。
func Wrap(code int, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Of 返回错误链上第一个 *Error 的错误码；没有则返回 SystemError，nil 返回 OK。
func Of(err error) int {
	if err == nil {
		return OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return SystemError
}

// MessageOf 返回可以直接展示给用户的错误信息。
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsUserError 判断错误是否属于 4xxx 段。
func IsUserError(code int) bool {
	return code >= 4000 && code < 5000
}
