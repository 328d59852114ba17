package scan

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dutchcoders/go-clamd"

	"internApply/internal/errcode"
)

// ClamdScanner 通过 clamd 的 INSTREAM 接口扫描上传内容。
type ClamdScanner struct {
	addr string
}

// NewClamdScanner returns nil when addr is empty (scanning disabled).
func NewClamdScanner(addr string) *ClamdScanner {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}
	return &ClamdScanner{addr: addr}
}

// Scan 返回 errcode.InfectedAttachment 表示检出病毒，其余错误表示扫描本身失败。
func (s *ClamdScanner) Scan(ctx context.Context, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	client := clamd.NewClamd(s.addr)
	abortChan := make(chan bool)
	defer close(abortChan)

	scanChan, err := client.ScanStream(r, abortChan)
	if err != nil {
		return fmt.Errorf("clamd scan stream: %w", err)
	}

	for result := range scanChan {
		switch result.Status {
		case clamd.RES_OK:
		case clamd.RES_FOUND:
			return errcode.New(errcode.InfectedAttachment, "malicious file detected")
		default:
			return fmt.Errorf("clamd scan: %s %s", result.Status, result.Description)
		}
	}
	return nil
}
