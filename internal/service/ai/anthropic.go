package ai

import (
	"context"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider implements Provider for the Anthropic Messages API.
type AnthropicProvider struct {
	client          anthropic.Client
	model           string
	maxOutputTokens int
	thinking        bool
	thinkingBudget  int
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(cfg Config, httpClient *http.Client) (*AnthropicProvider, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &AnthropicProvider{
		client:          anthropic.NewClient(opts...),
		model:           cfg.Model,
		maxOutputTokens: cfg.MaxOutputTokens,
		thinking:        cfg.Thinking,
		thinkingBudget:  cfg.ThinkingBudget,
	}, nil
}

func (p *AnthropicProvider) Name() string {
	return ProviderAnthropic
}

func (p *AnthropicProvider) Model() string {
	return p.model
}

func (p *AnthropicProvider) params(systemPrompt, prompt string, maxTokens int) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model: anthropic.Model(p.model),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	// budget_tokens counts against max_tokens, so the output cap sits on top.
	if p.thinking && p.thinkingBudget > 0 {
		params.MaxTokens = int64(p.thinkingBudget + maxTokens)
		params.Thinking = anthropic.ThinkingConfigParamOfEnabled(int64(p.thinkingBudget))
	} else {
		params.MaxTokens = int64(maxTokens)
		disabled := anthropic.NewThinkingConfigDisabledParam()
		params.Thinking = anthropic.ThinkingConfigParamUnion{
			OfDisabled: &disabled,
		}
	}
	return params
}

func (p *AnthropicProvider) Test(ctx context.Context) (string, error) {
	return p.complete(ctx, p.params("", "Hello world", 50))
}

func (p *AnthropicProvider) Stream(ctx context.Context, systemPrompt, prompt string) (<-chan string, <-chan error) {
	textCh := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		defer close(textCh)
		defer close(errCh)

		stream := p.client.Messages.NewStreaming(ctx, p.params(systemPrompt, prompt, p.maxOutputTokens))
		defer stream.Close()

		for stream.Next() {
			event := stream.Current()
			ev, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok {
				continue
			}
			// Thinking deltas are not part of the answer.
			delta, ok := ev.Delta.AsAny().(anthropic.TextDelta)
			if !ok || delta.Text == "" {
				continue
			}
			if !sendText(ctx, textCh, delta.Text) {
				return
			}
		}

		if err := stream.Err(); err != nil {
			sendErr(errCh, err)
		}
	}()

	return textCh, errCh
}

func (p *AnthropicProvider) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	return p.complete(ctx, p.params(systemPrompt, prompt, p.maxOutputTokens))
}

func (p *AnthropicProvider) complete(ctx context.Context, params anthropic.MessageNewParams) (string, error) {
	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if v, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(v.Text)
		}
	}
	return sb.String(), nil
}
