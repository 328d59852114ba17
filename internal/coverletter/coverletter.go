package coverletter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"internApply/internal/application"
	"internApply/internal/errcode"
)

const (
	failedMessage = "Failed to generate cover letter. Please try again."
	// EmptyDraft 是模型没有返回文本时给用户的占位内容。
	EmptyDraft = "Could not generate draft."
)

// Model 是生成式模型的最小抽象，便于测试替换。
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Drafter 根据候选人信息生成求职信草稿。单次请求，不重试。
type Drafter struct {
	model  Model
	logger *slog.Logger
}

// NewDrafter wraps model.
func NewDrafter(model Model, logger *slog.Logger) *Drafter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Drafter{model: model, logger: logger}
}

// Draft returns generated text. Any model failure collapses into one generic
// message; the cause is only logged.
func (d *Drafter) Draft(ctx context.Context, fullName string, role application.Role, experience string) (string, error) {
	text, err := d.model.Generate(ctx, Prompt(fullName, role, experience))
	if err != nil {
		d.logger.Error("cover letter generation failed", slog.String("role", string(role)), slog.Any("error", err))
		return "", errcode.Wrap(errcode.CoverLetterFailed, failedMessage, err)
	}
	if strings.TrimSpace(text) == "" {
		return EmptyDraft, nil
	}
	return text, nil
}

// Prompt builds the instruction sent to the model.
func Prompt(fullName string, role application.Role, experience string) string {
	return fmt.Sprintf(`Write a professional, concise, and engaging cover letter for a %s internship position at Effred Technologies.

Candidate Name: %s
Key Experience/Skills: %s

Tone: Enthusiastic, professional, innovative.
Length: Short (approx 150 words).
Structure:
1. Introduction.
2. Why I'm a good fit based on skills.
3. Closing.

Do not include placeholders like "[Your Name]" if possible, use the provided name.`, role, fullName, experience)
}
