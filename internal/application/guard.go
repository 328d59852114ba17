package application

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"internApply/internal/errcode"
)

// Scanner 在附件进入表单前做病毒扫描。
type Scanner interface {
	Scan(ctx context.Context, r io.Reader) error
}

// contentFamilies 列出每种扩展名可接受的嗅探结果（包含父类型）。
var contentFamilies = map[string][]string{
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword", "application/x-ole-storage"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
}

// Guard 校验单个简历文件是否可以放入表单。
type Guard struct {
	maxBytes      int64
	extensions    map[string]struct{}
	extList       []string
	strictContent bool
	scanner       Scanner
}

// NewGuard builds a guard. scanner may be nil.
func NewGuard(maxBytes int64, extensions []string, strictContent bool, scanner Scanner) *Guard {
	set := make(map[string]struct{}, len(extensions))
	list := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, dup := set[ext]; dup {
			continue
		}
		set[ext] = struct{}{}
		list = append(list, ext)
	}
	return &Guard{
		maxBytes:      maxBytes,
		extensions:    set,
		extList:       list,
		strictContent: strictContent,
		scanner:       scanner,
	}
}

// MaxBytes returns the configured size ceiling.
func (g *Guard) MaxBytes() int64 { return g.maxBytes }

// Accept returns the value for an <input accept="..."> attribute.
func (g *Guard) Accept() string { return strings.Join(g.extList, ",") }

// Record 清除上一次的附件错误后应用 Check 的结果：通过则替换表单中的附件，
// 不通过则记录错误并保持原附件不变。不做 I/O，调用方可在锁外先跑 Check。
func (g *Guard) Record(form *Form, candidate *Attachment, checkErr error) error {
	form.AttachmentError = ""
	if checkErr != nil {
		form.AttachmentError = errcode.MessageOf(checkErr)
		return checkErr
	}
	form.SetAttachment(candidate)
	return nil
}

// Check validates size, extension, sniffed content and, when configured, runs
// the virus scanner.
func (g *Guard) Check(ctx context.Context, a *Attachment) error {
	if a == nil {
		return errcode.New(errcode.MissingAttachment, "Please attach your resume.")
	}
	size := a.Size
	if int64(len(a.Data)) > size {
		size = int64(len(a.Data))
	}
	if size > g.maxBytes {
		return errcode.New(errcode.OversizedAttachment, "File size must be less than "+formatMB(g.maxBytes))
	}

	ext := strings.ToLower(filepath.Ext(a.Name))
	if _, ok := g.extensions[ext]; !ok {
		return errcode.New(errcode.UnsupportedAttachment,
			fmt.Sprintf("Only %s files are accepted", strings.Join(g.extList, ", ")))
	}

	if g.strictContent {
		if err := checkContent(ext, a); err != nil {
			return err
		}
	}

	if g.scanner != nil {
		if err := g.scanner.Scan(ctx, bytes.NewReader(a.Data)); err != nil {
			if errcode.Of(err) == errcode.InfectedAttachment {
				return err
			}
			return errcode.Wrap(errcode.SystemError, "failed to scan file", err)
		}
	}
	return nil
}

func checkContent(ext string, a *Attachment) error {
	families, known := contentFamilies[ext]
	if !known {
		return nil
	}
	detected := mimetype.Detect(a.Data)
	for m := detected; m != nil; m = m.Parent() {
		for _, want := range families {
			if m.Is(want) {
				if a.ContentType == "" || a.ContentType == "application/octet-stream" {
					a.ContentType = detected.String()
				}
				return nil
			}
		}
	}
	return errcode.New(errcode.UnsupportedAttachment,
		fmt.Sprintf("File content does not look like a %s document", strings.TrimPrefix(ext, ".")))
}

func formatMB(n int64) string {
	return strconv.FormatFloat(float64(n)/(1024*1024), 'f', -1, 64) + "MB"
}
