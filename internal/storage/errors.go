package storage

import (
	"errors"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
)

// ErrBucketNotFound 由 UploadFile 包装返回，调用方用 errors.Is 判断是否需要创建 Bucket。
var ErrBucketNotFound = errors.New("bucket not found")

// ErrObjectExists 表示目标路径上已有对象，上传被拒绝。
var ErrObjectExists = errors.New("object already exists")

// IsNoSuchKey 判断错误是否明确表示对象不存在（S3/MinIO: NoSuchKey/NotFound）。
func IsNoSuchKey(err error) bool {
	if err == nil {
		return false
	}

	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) {
		switch strings.ToLower(strings.TrimSpace(minioErr.Code)) {
		case "nosuchkey", "notfound":
			return true
		}
	}

	// 兜底：不同网关/代理可能会把错误包装成字符串。
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "nosuchkey") ||
		strings.Contains(lower, "specified key does not exist") ||
		strings.Contains(lower, "not found")
}

// IsNoSuchBucket 判断错误是否明确表示 Bucket 不存在（S3/MinIO: NoSuchBucket）。
// 结构化错误码优先；字符串匹配只是兼容层，用于把错误转成文本的网关。
func IsNoSuchBucket(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrBucketNotFound) {
		return true
	}

	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) {
		return strings.EqualFold(strings.TrimSpace(minioErr.Code), "NoSuchBucket")
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "nosuchbucket") ||
		strings.Contains(lower, "specified bucket does not exist") ||
		strings.Contains(lower, "bucket not found")
}

// isBucketAlreadyOwned 处理并发创建 Bucket 时的竞争。
func isBucketAlreadyOwned(err error) bool {
	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) {
		switch minioErr.Code {
		case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
			return true
		}
	}
	return false
}

// isPreconditionFailed 对应 If-None-Match 条件不成立（对象已存在）。
func isPreconditionFailed(err error) bool {
	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) {
		return minioErr.Code == "PreconditionFailed" || minioErr.StatusCode == http.StatusPreconditionFailed
	}
	return false
}
