package handler_test

import (
	"context"
	"time"

	"translation-agent/backend/internal/model"
	"translation-agent/backend/internal/repository"
	"translation-agent/backend/internal/service"
	"translation-agent/backend/internal/stream"
)

type translationServiceStub struct {
	events        []stream.Event
	err           error
	lastTranslate service.TranslateRequest
	lastComplete  service.CompletionRequest
	lastFilter    repository.TranslationListFilter
	history       []model.Translation
	item          *model.Translation
	getErr        error
	deleteErr     error
	cleared       int64
}

func (s *translationServiceStub) emit() (<-chan stream.Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	ch := make(chan stream.Event, len(s.events))
	for _, ev := range s.events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

func (s *translationServiceStub) Translate(ctx context.Context, req service.TranslateRequest) (<-chan stream.Event, error) {
	s.lastTranslate = req
	return s.emit()
}

func (s *translationServiceStub) Complete(ctx context.Context, req service.CompletionRequest) (<-chan stream.Event, error) {
	s.lastComplete = req
	return s.emit()
}

func (s *translationServiceStub) History(ctx context.Context, filter repository.TranslationListFilter) ([]model.Translation, error) {
	s.lastFilter = filter
	return s.history, nil
}

func (s *translationServiceStub) Get(ctx context.Context, id int64) (*model.Translation, error) {
	return s.item, s.getErr
}

func (s *translationServiceStub) Delete(ctx context.Context, id int64) error {
	return s.deleteErr
}

func (s *translationServiceStub) ClearCache(ctx context.Context) (int64, error) {
	return s.cleared, nil
}

func (s *translationServiceStub) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	return 0, nil
}

type settingsServiceStub struct {
	ai       service.AISettings
	network  service.NetworkSettings
	setErr   error
	testCfg  service.AITestConfig
	testErr  error
	testText string
}

func (s *settingsServiceStub) GetAISettings(ctx context.Context) (*service.AISettings, error) {
	out := s.ai
	return &out, nil
}

func (s *settingsServiceStub) SetAISettings(ctx context.Context, settings *service.AISettings) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.ai = *settings
	return nil
}

func (s *settingsServiceStub) TestAI(ctx context.Context, cfg service.AITestConfig) (string, error) {
	s.testCfg = cfg
	return s.testText, s.testErr
}

func (s *settingsServiceStub) RestoreRateLimit(ctx context.Context) error {
	return nil
}

func (s *settingsServiceStub) GetNetworkSettings(ctx context.Context) (*service.NetworkSettings, error) {
	out := s.network
	return &out, nil
}

func (s *settingsServiceStub) SetNetworkSettings(ctx context.Context, settings *service.NetworkSettings) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.network = *settings
	return nil
}

type catalogStub struct {
	configured map[string]bool
}

func (c catalogStub) Configured(ctx context.Context, name string) bool {
	return c.configured[name]
}

func (c catalogStub) DefaultProvider(ctx context.Context) string {
	return "gemini"
}
