package submission

import (
	"context"
	"sync"
	"time"

	"internApply/internal/application"
	"internApply/internal/errcode"
	"internApply/internal/metrics"
)

// State 是单个草稿的提交状态。
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
)

// AttachmentSummary 是附件对外展示的部分，不含文件内容。
type AttachmentSummary struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType,omitempty"`
}

// View 是草稿的只读视图。
type View struct {
	State           State              `json:"state"`
	FullName        string             `json:"fullName"`
	Email           string             `json:"email"`
	Phone           string             `json:"phone"`
	LinkedIn        string             `json:"linkedIn"`
	Portfolio       string             `json:"portfolio"`
	Role            application.Role   `json:"role"`
	Resume          *AttachmentSummary `json:"resume"`
	AttachmentError string             `json:"attachmentError,omitempty"`
	LastError       string             `json:"lastError,omitempty"`
	Receipt         *Receipt           `json:"receipt,omitempty"`
}

var errInFlight = errcode.New(errcode.SubmissionInFlight, "submission already in progress")

// Orchestrator 持有一份表单及其提交状态机：
// Idle → Submitting → Succeeded，失败时回到 Idle 并保留表单内容。
// Submitting 期间的重复提交与表单修改都会被拒绝，而不是排队。
type Orchestrator struct {
	mu        sync.Mutex
	form      *application.Form
	guard     *application.Guard
	submitter Submitter
	state     State
	lastError string
	receipt   *Receipt
}

// NewOrchestrator returns an Idle orchestrator around an empty form.
func NewOrchestrator(guard *application.Guard, submitter Submitter) *Orchestrator {
	return &Orchestrator{
		form:      application.NewForm(),
		guard:     guard,
		submitter: submitter,
		state:     StateIdle,
	}
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// View returns a copy of the form and state.
func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()

	v := View{
		State:           o.state,
		FullName:        o.form.FullName,
		Email:           o.form.Email,
		Phone:           o.form.Phone,
		LinkedIn:        o.form.LinkedIn,
		Portfolio:       o.form.Portfolio,
		Role:            o.form.Role,
		AttachmentError: o.form.AttachmentError,
		LastError:       o.lastError,
	}
	if r := o.form.Resume; r != nil {
		v.Resume = &AttachmentSummary{Name: r.Name, Size: r.Size, ContentType: r.ContentType}
	}
	if o.receipt != nil {
		cp := *o.receipt
		v.Receipt = &cp
	}
	return v
}

// beginEdit 必须在持锁时调用。成功页之后的修改视为开始一份新申请。
func (o *Orchestrator) beginEdit() error {
	switch o.state {
	case StateSubmitting:
		return errInFlight
	case StateSucceeded:
		o.state = StateIdle
		o.receipt = nil
	}
	return nil
}

// SetField commits a text field; link fields are normalized.
func (o *Orchestrator) SetField(name application.Field, value string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.beginEdit(); err != nil {
		return err
	}
	return o.form.CommitField(name, value)
}

// SetRole selects one of the three roles.
func (o *Orchestrator) SetRole(role application.Role) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.beginEdit(); err != nil {
		return err
	}
	return o.form.SetRole(role)
}

// AttachResume runs the attachment guard against candidate. 扫描在锁外进行，
// 慢速的 clamd 不会阻塞同一草稿的 View 与 State。
func (o *Orchestrator) AttachResume(ctx context.Context, candidate *application.Attachment) error {
	o.mu.Lock()
	err := o.beginEdit()
	o.mu.Unlock()
	if err != nil {
		return err
	}

	checkErr := o.guard.Check(ctx, candidate)

	o.mu.Lock()
	defer o.mu.Unlock()
	// 扫描期间可能已经开始提交。
	if err := o.beginEdit(); err != nil {
		return err
	}
	return o.guard.Record(o.form, candidate, checkErr)
}

// RemoveResume drops the current attachment.
func (o *Orchestrator) RemoveResume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.beginEdit(); err != nil {
		return err
	}
	o.form.SetAttachment(nil)
	return nil
}

// Reset 清空表单并回到 Idle（“再提交一份”）。
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateSubmitting {
		return errInFlight
	}
	o.form.Reset()
	o.state = StateIdle
	o.lastError = ""
	o.receipt = nil
	return nil
}

// Submit 执行一次提交。没有附件时直接返回 MissingAttachment 且不改变状态；
// 提交中再次调用立即返回 SubmissionInFlight。
func (o *Orchestrator) Submit(ctx context.Context) (Receipt, error) {
	o.mu.Lock()
	if o.state == StateSubmitting {
		o.mu.Unlock()
		return Receipt{}, errInFlight
	}
	if o.form.Resume == nil {
		o.lastError = "Please attach your resume."
		o.mu.Unlock()
		return Receipt{}, errcode.New(errcode.MissingAttachment, "Please attach your resume.")
	}
	o.state = StateSubmitting
	o.lastError = ""
	o.receipt = nil
	snap := o.form.Snapshot()
	o.mu.Unlock()

	start := time.Now()
	receipt, err := o.submitter.Submit(ctx, snap)
	metrics.ObserveSubmission(o.submitter.Mode(), errcode.Of(err), time.Since(start))

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.state = StateIdle
		o.lastError = errcode.MessageOf(err)
		return Receipt{}, err
	}
	o.state = StateSucceeded
	o.form.Reset()
	o.receipt = &receipt
	return receipt, nil
}
