package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// geminiPrimer is the model turn that follows the system message in the
// chat history, so the system message reads as an earlier user turn.
const geminiPrimer = "Great to meet you. What would you like to know?"

// GeminiProvider implements Provider for the Gemini API.
type GeminiProvider struct {
	client          *genai.Client
	model           string
	maxOutputTokens int
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(cfg Config, httpClient *http.Client) (*GeminiProvider, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	// NewClient only validates configuration for the Gemini API backend.
	client, err := genai.NewClient(context.Background(), clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{
		client:          client,
		model:           cfg.Model,
		maxOutputTokens: cfg.MaxOutputTokens,
	}, nil
}

func (p *GeminiProvider) Name() string {
	return ProviderGemini
}

func (p *GeminiProvider) Model() string {
	return p.model
}

// geminiContents builds the chat: system message as a user turn, the primer as
// the model's reply, then the prompt.
func geminiContents(systemPrompt, prompt string) []*genai.Content {
	var contents []*genai.Content
	if systemPrompt != "" {
		contents = append(contents,
			&genai.Content{Role: "user", Parts: []*genai.Part{{Text: systemPrompt}}},
			&genai.Content{Role: "model", Parts: []*genai.Part{{Text: geminiPrimer}}},
		)
	}
	return append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: prompt}}})
}

func (p *GeminiProvider) config(maxTokens int) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}
}

func (p *GeminiProvider) Test(ctx context.Context) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, geminiContents("", "Hello world"), p.config(50))
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

func (p *GeminiProvider) Stream(ctx context.Context, systemPrompt, prompt string) (<-chan string, <-chan error) {
	textCh := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		defer close(textCh)
		defer close(errCh)

		contents := geminiContents(systemPrompt, prompt)
		for resp, err := range p.client.Models.GenerateContentStream(ctx, p.model, contents, p.config(p.maxOutputTokens)) {
			if err != nil {
				sendErr(errCh, err)
				return
			}
			text := responseText(resp)
			if text == "" {
				continue
			}
			if !sendText(ctx, textCh, text) {
				return
			}
		}
	}()

	return textCh, errCh
}

func (p *GeminiProvider) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, geminiContents(systemPrompt, prompt), p.config(p.maxOutputTokens))
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

// responseText joins the text parts of the first candidate, skipping
// thought summaries.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}
