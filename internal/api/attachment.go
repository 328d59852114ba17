package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"internApply/internal/application"
)

const (
	resumeFormField = "resume"
	// multipart 头与其他字段的额外余量
	multipartOverhead = 1 << 20
)

// limitBody 限制请求体大小，超过简历上限太多的请求直接截断。
func limitBody(c *gin.Context, maxBytes int64) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)
}

// readAttachment 从 multipart 表单读取简历。没有文件时返回 nil, nil。
// 超过上限的文件不读取内容，只带上大小交给 Guard 拒绝。
func readAttachment(c *gin.Context, maxBytes int64) (*application.Attachment, error) {
	fh, err := c.FormFile(resumeFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return &application.Attachment{Size: maxBytes + 1}, nil
		case errors.Is(err, http.ErrMissingFile):
			return nil, nil
		}
		return nil, fmt.Errorf("read multipart form: %w", err)
	}

	att := &application.Attachment{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
	}
	if fh.Size > maxBytes {
		return att, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer f.Close()

	att.Data, err = io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read uploaded file: %w", err)
	}
	att.Size = int64(len(att.Data))
	return att, nil
}
