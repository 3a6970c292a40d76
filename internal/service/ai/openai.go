package ai

import (
	"context"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIProvider implements Provider for the OpenAI chat completions API.
type OpenAIProvider struct {
	client          openai.Client
	model           string
	maxOutputTokens int
	thinking        bool
	reasoningEffort string
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg Config, httpClient *http.Client) (*OpenAIProvider, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &OpenAIProvider{
		client:          openai.NewClient(opts...),
		model:           cfg.Model,
		maxOutputTokens: cfg.MaxOutputTokens,
		thinking:        cfg.Thinking,
		reasoningEffort: cfg.ReasoningEffort,
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

func (p *OpenAIProvider) Model() string {
	return p.model
}

// isReasoningModel checks if the model supports reasoning_effort parameter.
// Supports: o1, o3, o4, gpt-5 series
func (p *OpenAIProvider) isReasoningModel() bool {
	model := strings.ToLower(p.model)
	return strings.HasPrefix(model, "o1") ||
		strings.HasPrefix(model, "o3") ||
		strings.HasPrefix(model, "o4") ||
		strings.HasPrefix(model, "gpt-5")
}

func (p *OpenAIProvider) params(systemPrompt, prompt string, maxTokens int) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: chatMessages(systemPrompt, prompt),
	}

	// Reasoning models reject max_tokens and take max_completion_tokens.
	if p.isReasoningModel() {
		params.MaxCompletionTokens = openai.Int(int64(maxTokens))
		if p.thinking && p.reasoningEffort != "" {
			params.ReasoningEffort = shared.ReasoningEffort(p.reasoningEffort)
		}
	} else {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}
	return params
}

func (p *OpenAIProvider) Test(ctx context.Context) (string, error) {
	return completeChat(ctx, p.client, p.params("", "Hello world", 50))
}

func (p *OpenAIProvider) Stream(ctx context.Context, systemPrompt, prompt string) (<-chan string, <-chan error) {
	return streamChat(ctx, p.client, p.params(systemPrompt, prompt, p.maxOutputTokens))
}

func (p *OpenAIProvider) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	return completeChat(ctx, p.client, p.params(systemPrompt, prompt, p.maxOutputTokens))
}

func chatMessages(systemPrompt, prompt string) []openai.ChatCompletionMessageParamUnion {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	return append(messages, openai.UserMessage(prompt))
}

// streamChat relays delta content of a streaming chat completion. Shared by
// the OpenAI and OpenAI-compatible providers.
func streamChat(ctx context.Context, client openai.Client, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (<-chan string, <-chan error) {
	textCh := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		defer close(textCh)
		defer close(errCh)

		stream := client.Chat.Completions.NewStreaming(ctx, params, opts...)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			for _, choice := range chunk.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				if !sendText(ctx, textCh, choice.Delta.Content) {
					return
				}
			}
		}

		if err := stream.Err(); err != nil {
			sendErr(errCh, err)
		}
	}()

	return textCh, errCh
}

func completeChat(ctx context.Context, client openai.Client, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (string, error) {
	resp, err := client.Chat.Completions.New(ctx, params, opts...)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
