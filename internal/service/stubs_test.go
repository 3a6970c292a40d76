package service_test

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"

	"translation-agent/backend/internal/config"
	"translation-agent/backend/internal/model"
	"translation-agent/backend/internal/service"
	"translation-agent/backend/internal/service/ai"
)

type settingsRepoStub struct {
	mu   sync.Mutex
	data map[string]string
}

func newSettingsRepoStub() *settingsRepoStub {
	return &settingsRepoStub{data: map[string]string{}}
}

func (s *settingsRepoStub) Get(ctx context.Context, key string) (*model.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return &model.Setting{Key: key, Value: val}, nil
}

func (s *settingsRepoStub) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *settingsRepoStub) GetByPrefix(ctx context.Context, prefix string) ([]model.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Setting
	for k, v := range s.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, model.Setting{Key: k, Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *settingsRepoStub) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// scriptedProvider streams outputs[i] on its i-th call and fails the call
// numbered failAt.
type scriptedProvider struct {
	mu      sync.Mutex
	name    string
	model   string
	outputs [][]string
	failAt  int
	prompts []ai.Prompt
}

func newScriptedProvider(outputs ...[]string) *scriptedProvider {
	return &scriptedProvider{name: ai.ProviderGemini, model: "gemini-1.5-flash", outputs: outputs, failAt: -1}
}

func (p *scriptedProvider) Name() string  { return p.name }
func (p *scriptedProvider) Model() string { return p.model }

func (p *scriptedProvider) Test(ctx context.Context) (string, error) {
	return "Hello!", nil
}

func (p *scriptedProvider) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	return "", errors.New("not implemented")
}

func (p *scriptedProvider) Stream(ctx context.Context, systemPrompt, prompt string) (<-chan string, <-chan error) {
	p.mu.Lock()
	call := len(p.prompts)
	p.prompts = append(p.prompts, ai.Prompt{System: systemPrompt, User: prompt})
	p.mu.Unlock()

	textCh := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		defer close(textCh)
		defer close(errCh)
		if call == p.failAt {
			errCh <- errors.New("quota exceeded")
			return
		}
		if call >= len(p.outputs) {
			return
		}
		for _, chunk := range p.outputs[call] {
			select {
			case textCh <- chunk:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
	}()
	return textCh, errCh
}

func (p *scriptedProvider) recorded() []ai.Prompt {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ai.Prompt(nil), p.prompts...)
}

// blockingProvider sends one chunk and then waits for cancellation.
type blockingProvider struct {
	*scriptedProvider
}

func (p *blockingProvider) Stream(ctx context.Context, systemPrompt, prompt string) (<-chan string, <-chan error) {
	textCh := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		defer close(textCh)
		defer close(errCh)
		select {
		case textCh <- "partial":
		case <-ctx.Done():
		}
		<-ctx.Done()
		errCh <- ctx.Err()
	}()
	return textCh, errCh
}

// factoryFor returns a ProviderFactory handing out p and recording the
// configuration it was asked for.
func factoryFor(p ai.Provider, seen *ai.Config) service.ProviderFactory {
	return func(cfg ai.Config, httpClient *http.Client) (ai.Provider, error) {
		if seen != nil {
			*seen = cfg
		}
		return p, nil
	}
}

func testConfig() config.Config {
	return config.Config{
		Provider: config.ProviderGemini,
		Providers: map[string]config.ProviderConfig{
			config.ProviderOpenAI:     {BaseURL: "https://api.openai.com/v1"},
			config.ProviderGemini:     {APIKey: "env-gemini-key"},
			config.ProviderAnthropic:  {},
			config.ProviderCompatible: {},
		},
		MaxOutputTokens: 1000,
	}
}
