package ai

import (
	"context"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// CompatibleProvider implements Provider for OpenAI-compatible APIs
// (OpenRouter, Ollama, vLLM, Gemini's OpenAI endpoint, ...).
type CompatibleProvider struct {
	client          openai.Client
	model           string
	maxOutputTokens int
	thinking        bool
	thinkingBudget  int
	reasoningEffort string
}

// NewCompatibleProvider creates a new OpenAI-compatible provider.
func NewCompatibleProvider(cfg Config, httpClient *http.Client) (*CompatibleProvider, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &CompatibleProvider{
		client:          openai.NewClient(opts...),
		model:           cfg.Model,
		maxOutputTokens: cfg.MaxOutputTokens,
		thinking:        cfg.Thinking,
		thinkingBudget:  cfg.ThinkingBudget,
		reasoningEffort: cfg.ReasoningEffort,
	}, nil
}

func (p *CompatibleProvider) Name() string {
	return ProviderCompatible
}

func (p *CompatibleProvider) Model() string {
	return p.model
}

// reasoningOption builds the non-standard "reasoning" body field understood
// by OpenRouter-style gateways.
func (p *CompatibleProvider) reasoningOption() option.RequestOption {
	if !p.thinking {
		return option.WithJSONSet("reasoning", map[string]any{"enabled": false})
	}
	reasoning := map[string]any{}
	if p.reasoningEffort != "" {
		reasoning["effort"] = p.reasoningEffort
	} else if p.thinkingBudget > 0 {
		reasoning["max_tokens"] = p.thinkingBudget
	}
	if len(reasoning) == 0 {
		return nil
	}
	return option.WithJSONSet("reasoning", reasoning)
}

func (p *CompatibleProvider) request(systemPrompt, prompt string, maxTokens int) (openai.ChatCompletionNewParams, []option.RequestOption) {
	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(p.model),
		Messages:  chatMessages(systemPrompt, prompt),
		MaxTokens: openai.Int(int64(maxTokens)),
	}
	var opts []option.RequestOption
	if opt := p.reasoningOption(); opt != nil {
		opts = append(opts, opt)
	}
	return params, opts
}

func (p *CompatibleProvider) Test(ctx context.Context) (string, error) {
	params, opts := p.request("", "Hello world", 50)
	return completeChat(ctx, p.client, params, opts...)
}

func (p *CompatibleProvider) Stream(ctx context.Context, systemPrompt, prompt string) (<-chan string, <-chan error) {
	params, opts := p.request(systemPrompt, prompt, p.maxOutputTokens)
	return streamChat(ctx, p.client, params, opts...)
}

func (p *CompatibleProvider) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	params, opts := p.request(systemPrompt, prompt, p.maxOutputTokens)
	return completeChat(ctx, p.client, params, opts...)
}
