package usecase

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"contractqa/internal/domain"
	"contractqa/internal/port"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

// ContextDelimiter separates retrieved chunks in the prompt.
const ContextDelimiter = "\n\n"

var _ port.Answerer = (*AnswerUseCase)(nil)

// AnswerUseCase stuffs retrieved chunks into a prompt and asks the model.
type AnswerUseCase struct {
	llm          port.LLM
	tokenizer    port.Tokenizer
	systemPrompt string
	prompt       *template.Template
}

// NewAnswerUseCase creates a new answer use case. tokenizer may be nil.
func NewAnswerUseCase(llm port.LLM, tokenizer port.Tokenizer) (*AnswerUseCase, error) {
	system, err := promptTemplates.ReadFile("templates/system_prompt.txt")
	if err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}

	tmplContent, err := promptTemplates.ReadFile("templates/answer_prompt.txt")
	if err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}

	tmpl, err := template.New("answer").Parse(string(tmplContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	return &AnswerUseCase{
		llm:          llm,
		tokenizer:    tokenizer,
		systemPrompt: strings.TrimSpace(string(system)),
		prompt:       tmpl,
	}, nil
}

type promptData struct {
	Context  string
	Question string
}

// BuildPrompt renders the user prompt: chunk texts in the given order joined
// by ContextDelimiter, followed by the question.
func (u *AnswerUseCase) BuildPrompt(question string, result []domain.ScoredChunk) (string, error) {
	texts := make([]string, len(result))
	for i, sc := range result {
		texts[i] = sc.Chunk.Text
	}

	var buf bytes.Buffer
	err := u.prompt.Execute(&buf, promptData{
		Context:  strings.Join(texts, ContextDelimiter),
		Question: question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

// Answer asks the model to answer question from result. Failures are
// reported in the returned Answer's Err field, never as a panic.
func (u *AnswerUseCase) Answer(ctx context.Context, question string, result []domain.ScoredChunk) domain.Answer {
	answer := domain.Answer{
		Question: question,
		Sources:  result,
	}

	if strings.TrimSpace(question) == "" {
		answer.Text = domain.EmptyQuestionText
		answer.Guidance = true
		answer.Sources = nil
		return answer
	}

	userPrompt, err := u.BuildPrompt(question, result)
	if err != nil {
		answer.Err = err
		return answer
	}

	if u.tokenizer != nil {
		answer.PromptTokens = u.tokenizer.CountTokens(u.systemPrompt) + u.tokenizer.CountTokens(userPrompt)
	}

	text, err := u.llm.Generate(ctx, u.systemPrompt, userPrompt)
	if err != nil {
		slog.Warn("completion failed", "model", u.llm.ModelName(), "error", err)
		if !errors.Is(err, domain.ErrProvider) {
			err = fmt.Errorf("%w: %w", domain.ErrProvider, err)
		}
		answer.Err = err
		return answer
	}

	answer.Text = text
	return answer
}

// AnswerText returns the answer in display form, with failures rendered as
// "An error occurred: <message>".
func (u *AnswerUseCase) AnswerText(ctx context.Context, question string, result []domain.ScoredChunk) string {
	return u.Answer(ctx, question, result).String()
}
