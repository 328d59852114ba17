package submission

import (
	"fmt"
	"strings"
	"time"

	"internApply/internal/application"
)

// SanitizeName replaces every rune outside [A-Za-z0-9] with '_' and lowercases
// the result, so the name fragment is safe inside an object key.
// One '_' per rune: characters outside the BMP such as emoji also yield a
// single '_', not one per UTF-16 unit.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// ResumePath 生成 {毫秒时间戳}_{清洗后的姓名}.{原扩展名} 形式的对象路径。
func ResumePath(at time.Time, fullName string, resume *application.Attachment) string {
	return fmt.Sprintf("%d_%s.%s", at.UnixMilli(), SanitizeName(fullName), resume.Extension())
}
