package application

import (
	"fmt"
	"strings"

	"internApply/internal/errcode"
)

// Field 是表单中可编辑的文本字段名，与前端 input 的 name 保持一致。
type Field string

const (
	FieldFullName  Field = "fullName"
	FieldEmail     Field = "email"
	FieldPhone     Field = "phone"
	FieldLinkedIn  Field = "linkedIn"
	FieldPortfolio Field = "portfolio"
)

// IsURL reports whether the field holds a link that gets normalized on commit.
func (f Field) IsURL() bool {
	return f == FieldLinkedIn || f == FieldPortfolio
}

// Attachment 是用户选择的简历文件，仅存在于内存中的表单里。
type Attachment struct {
	Name        string
	Size        int64
	ContentType string
	Data        []byte
}

// Extension returns the text after the last dot of the file name, or the whole
// name when it has none.
func (a *Attachment) Extension() string {
	if i := strings.LastIndex(a.Name, "."); i >= 0 {
		return a.Name[i+1:]
	}
	return a.Name
}

func (a *Attachment) clone() *Attachment {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Data = append([]byte(nil), a.Data...)
	return &cp
}

// Form 保存一次申请的编辑中数据。单写者，不做并发保护。
type Form struct {
	FullName  string
	Email     string
	Phone     string
	LinkedIn  string
	Portfolio string
	Role      Role
	Resume    *Attachment

	// AttachmentError 只反映最近一次附件校验的结果。
	AttachmentError string
}

// NewForm returns an empty form with the default role selected.
func NewForm() *Form {
	return &Form{Role: DefaultRole}
}

// SetField 按字段名写入文本，不做语义校验。
func (f *Form) SetField(name Field, value string) error {
	switch name {
	case FieldFullName:
		f.FullName = value
	case FieldEmail:
		f.Email = value
	case FieldPhone:
		f.Phone = value
	case FieldLinkedIn:
		f.LinkedIn = value
	case FieldPortfolio:
		f.Portfolio = value
	default:
		return errcode.New(errcode.UnknownField, fmt.Sprintf("unknown field %q", name))
	}
	return nil
}

// CommitField sets the field and, for link fields, applies NormalizeURL the way
// the page does when the input loses focus.
func (f *Form) CommitField(name Field, value string) error {
	if name.IsURL() {
		value = NormalizeURL(value)
	}
	return f.SetField(name, value)
}

// SetRole 切换岗位，三者互斥。
func (f *Form) SetRole(role Role) error {
	if !role.Valid() {
		return errcode.New(errcode.InvalidRole, fmt.Sprintf("unknown role %q", role))
	}
	f.Role = role
	return nil
}

// SetAttachment replaces the résumé; nil removes it and clears the error too.
func (f *Form) SetAttachment(a *Attachment) {
	f.Resume = a
	if a == nil {
		f.AttachmentError = ""
	}
}

// Reset 恢复为新建时的空表单。
func (f *Form) Reset() {
	*f = *NewForm()
}

// Snapshot 是提交开始时复制出的不可变数据。
type Snapshot struct {
	FullName  string
	Email     string
	Phone     string
	LinkedIn  string
	Portfolio string
	Role      Role
	Resume    *Attachment
}

// Snapshot copies the form, including the attachment bytes.
func (f *Form) Snapshot() Snapshot {
	return Snapshot{
		FullName:  f.FullName,
		Email:     f.Email,
		Phone:     f.Phone,
		LinkedIn:  f.LinkedIn,
		Portfolio: f.Portfolio,
		Role:      f.Role,
		Resume:    f.Resume.clone(),
	}
}
