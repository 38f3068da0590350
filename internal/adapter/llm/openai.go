package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"contractqa/internal/adapter/guard"
	"contractqa/internal/domain"
)

// Options configures an OpenAI-compatible chat client.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	MaxRetries  int
	Guard       *guard.Guard
}

// OpenAIChat answers prompts with an OpenAI-compatible /chat/completions
// endpoint.
type OpenAIChat struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int
	guard       *guard.Guard
}

func NewOpenAIChat(opts Options) (*OpenAIChat, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: completion API key is empty", domain.ErrConfiguration)
	}
	if opts.Model == "" {
		opts.Model = "gpt-3.5-turbo"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithRequestTimeout(opts.Timeout),
		option.WithMaxRetries(opts.MaxRetries),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &OpenAIChat{
		client:      openai.NewClient(reqOpts...),
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		guard:       opts.Guard,
	}, nil
}

// Generate sends one system and one user message and returns the text of
// the first choice.
func (c *OpenAIChat) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(userPrompt))

	params := openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(c.temperature),
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.maxTokens))
	}

	var resp *openai.ChatCompletion
	call := func(ctx context.Context) error {
		var err error
		resp, err = c.client.Chat.Completions.New(ctx, params)
		return err
	}

	var err error
	if c.guard != nil {
		err = c.guard.Do(ctx, call)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", fmt.Errorf("%w: chat completion failed: %w", domain.ErrProvider, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no completion choices returned", domain.ErrProvider)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *OpenAIChat) ModelName() string {
	return c.model
}

// MockLLM answers offline by quoting the first context block of the prompt.
// Useful for exercising the pipeline without credentials.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	excerpts, question := splitPrompt(userPrompt)
	if excerpts == "" {
		return "I don't know.", nil
	}

	first := excerpts
	if i := strings.Index(excerpts, "\n\n"); i >= 0 {
		first = excerpts[:i]
	}
	first = strings.TrimSpace(first)
	if r := []rune(first); len(r) > 300 {
		first = string(r[:300]) + "..."
	}

	if question == "" {
		return first, nil
	}
	return fmt.Sprintf("Based on the contract: %s", first), nil
}

func (m *MockLLM) ModelName() string {
	return "mock"
}

// splitPrompt separates the context block from the trailing "Question:" line.
func splitPrompt(prompt string) (string, string) {
	i := strings.LastIndex(prompt, "Question:")
	if i < 0 {
		return strings.TrimSpace(prompt), ""
	}
	question := strings.TrimSpace(prompt[i+len("Question:"):])
	if j := strings.Index(question, "\n"); j >= 0 {
		question = strings.TrimSpace(question[:j])
	}
	return strings.TrimSpace(prompt[:i]), question
}
