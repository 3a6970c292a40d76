package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"translation-agent/backend/internal/languages"
	"translation-agent/backend/internal/logger"
	"translation-agent/backend/internal/model"
	"translation-agent/backend/internal/repository"
	"translation-agent/backend/internal/service/ai"
	"translation-agent/backend/internal/stream"
)

const maxHistoryLimit = 200

// TranslateRequest is one translation run request.
type TranslateRequest struct {
	Text    string
	Source  string
	Target  string
	Country string
	LLM     string
	Model   string
	APIKeys map[string]string
}

// CompletionRequest is a free-form completion request.
type CompletionRequest struct {
	Prompt  string
	System  string
	LLM     string
	Model   string
	APIKeys map[string]string
}

// TranslationService runs the translate, reflect, improve pipeline and
// manages cached runs.
type TranslationService interface {
	// Translate starts a run and returns its events. The channel is always
	// closed; a failed run ends with one error event.
	Translate(ctx context.Context, req TranslateRequest) (<-chan stream.Event, error)
	// Complete streams a single free-form completion.
	Complete(ctx context.Context, req CompletionRequest) (<-chan stream.Event, error)
	History(ctx context.Context, filter repository.TranslationListFilter) ([]model.Translation, error)
	Get(ctx context.Context, id int64) (*model.Translation, error)
	Delete(ctx context.Context, id int64) error
	// ClearCache deletes every cached run and returns how many were removed.
	ClearCache(ctx context.Context) (int64, error)
	// Prune deletes cached runs older than olderThan.
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

type translationService struct {
	repo        repository.TranslationRepository
	resolver    *ProviderResolver
	rateLimiter *ai.RateLimiter
	now         func() time.Time
}

// NewTranslationService creates a new translation service.
func NewTranslationService(repo repository.TranslationRepository, resolver *ProviderResolver, rateLimiter *ai.RateLimiter) TranslationService {
	return &translationService{
		repo:        repo,
		resolver:    resolver,
		rateLimiter: rateLimiter,
		now:         time.Now,
	}
}

// run is the resolved input of one translation.
type run struct {
	provider ai.Provider
	cacheKey string
	source   string
	target   string
	country  string
	text     string
}

// CacheKey identifies a run by everything that shapes its output. Text is
// NFC-normalised so composed and decomposed input share an entry.
func CacheKey(provider, modelName, source, target, country, text string) string {
	h := sha256.New()
	for _, part := range []string{provider, modelName, source, target, country, norm.NFC.String(text)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s *translationService) Translate(ctx context.Context, req TranslateRequest) (<-chan stream.Event, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: missing text", ErrInvalid)
	}
	source := languages.Resolve(req.Source)
	if source == "" {
		source = languages.DefaultSource
	}
	target := languages.Resolve(req.Target)
	if target == "" {
		target = languages.DefaultTarget
	}
	country := strings.TrimSpace(req.Country)

	cfg, err := s.resolver.Resolve(ctx, ProviderSelection{LLM: req.LLM, Model: req.Model, APIKeys: req.APIKeys})
	if err != nil {
		return nil, err
	}

	r := run{
		cacheKey: CacheKey(cfg.Provider, cfg.Model, source, target, country, text),
		source:   source,
		target:   target,
		country:  country,
		text:     text,
	}

	events := make(chan stream.Event)

	cached, err := s.repo.GetByCacheKey(ctx, r.cacheKey)
	if err != nil {
		logger.Warn("translation cache lookup failed", "module", "service", "action", "fetch", "resource", "translation", "result", "failed", "error", err)
	}
	if cached != nil {
		logger.Info("translation cache hit", "module", "service", "action", "fetch", "resource", "translation", "result", "ok", "id", cached.ID, "provider", cfg.Provider, "model", cfg.Model)
		go s.replay(ctx, events, cached)
		return events, nil
	}

	r.provider, err = s.resolver.Build(ctx, cfg)
	if err != nil {
		logger.Warn("ai provider create failed", "module", "service", "action", "create", "resource", "ai", "result", "failed", "provider", cfg.Provider, "model", cfg.Model, "error", err)
		return nil, err
	}

	logger.Info("translation started", "module", "service", "action", "translate", "resource", "translation", "result", "ok", "provider", cfg.Provider, "model", cfg.Model, "source", source, "target", target)
	go s.translate(ctx, events, r)
	return events, nil
}

func (s *translationService) translate(ctx context.Context, events chan<- stream.Event, r run) {
	defer close(events)
	start := s.now()

	var initial, reflection, improved string
	for _, stage := range stream.Stages() {
		var prompt ai.Prompt
		switch stage {
		case stream.StageInitial:
			prompt = ai.InitialTranslationPrompt(r.source, r.target, r.text)
		case stream.StageReflect:
			prompt = ai.ReflectionPrompt(r.source, r.target, r.text, initial, r.country)
		case stream.StageImprove:
			prompt = ai.ImprovementPrompt(r.source, r.target, r.text, initial, reflection)
		}

		out, err := s.runStage(ctx, events, r.provider, stage, prompt)
		if err != nil {
			s.fail(ctx, events, stage, err)
			return
		}

		switch stage {
		case stream.StageInitial:
			initial = out
		case stream.StageReflect:
			reflection = out
		case stream.StageImprove:
			improved = out
		}
	}

	if !emit(ctx, events, stream.CompleteEvent()) {
		logger.Info("translation cancelled", "module", "service", "action", "translate", "resource", "translation", "result", "cancelled")
		return
	}

	duration := s.now().Sub(start)
	id, err := s.repo.Save(context.WithoutCancel(ctx), model.Translation{
		CacheKey:            r.cacheKey,
		Provider:            r.provider.Name(),
		Model:               r.provider.Model(),
		SourceLang:          r.source,
		TargetLang:          r.target,
		Country:             r.country,
		SourceText:          r.text,
		InitialTranslation:  initial,
		Reflection:          reflection,
		ImprovedTranslation: improved,
		DurationMs:          duration.Milliseconds(),
		CreatedAt:           s.now(),
	})
	if err != nil {
		logger.Warn("translation save failed", "module", "service", "action", "save", "resource", "translation", "result", "failed", "error", err)
		return
	}
	logger.Info("translation completed", "module", "service", "action", "translate", "resource", "translation", "result", "ok", "id", id, "duration_ms", duration.Milliseconds())
}

// runStage streams one stage and returns its full text.
func (s *translationService) runStage(ctx context.Context, events chan<- stream.Event, provider ai.Provider, stage string, prompt ai.Prompt) (string, error) {
	if !emit(ctx, events, stream.StageEvent(stage, false)) {
		return "", ctx.Err()
	}
	if err := s.rateLimiter.Wait(ctx, stage); err != nil {
		return "", err
	}

	textCh, errCh := provider.Stream(ctx, prompt.System, prompt.User)
	var sb strings.Builder
	for text := range textCh {
		sb.WriteString(text)
		if !emit(ctx, events, stream.ChunkEvent(stage, text)) {
			return "", ctx.Err()
		}
	}
	if err := <-errCh; err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// fail reports err in-band unless the client went away.
func (s *translationService) fail(ctx context.Context, events chan<- stream.Event, stage string, err error) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		logger.Info("translation cancelled", "module", "service", "action", "translate", "resource", "translation", "result", "cancelled", "stage", stage)
		return
	}
	logger.Warn("translation stage failed", "module", "service", "action", "translate", "resource", "translation", "result", "failed", "stage", stage, "error", err)
	emit(ctx, events, stream.ErrorEvent(err.Error()))
}

func (s *translationService) replay(ctx context.Context, events chan<- stream.Event, t *model.Translation) {
	defer close(events)
	texts := map[string]string{
		stream.StageInitial: t.InitialTranslation,
		stream.StageReflect: t.Reflection,
		stream.StageImprove: t.ImprovedTranslation,
	}
	for _, stage := range stream.Stages() {
		if !emit(ctx, events, stream.StageEvent(stage, true)) {
			return
		}
		if texts[stage] == "" {
			continue
		}
		if !emit(ctx, events, stream.ChunkEvent(stage, texts[stage])) {
			return
		}
	}
	emit(ctx, events, stream.CompleteEvent())
}

func (s *translationService) Complete(ctx context.Context, req CompletionRequest) (<-chan stream.Event, error) {
	prompt := req.Prompt
	if strings.TrimSpace(prompt) == "" {
		prompt = ai.DefaultCompletionPrompt
	}
	system := req.System
	if strings.TrimSpace(system) == "" {
		system = ai.DefaultCompletionSystem
	}

	cfg, err := s.resolver.Resolve(ctx, ProviderSelection{LLM: req.LLM, Model: req.Model, APIKeys: req.APIKeys})
	if err != nil {
		return nil, err
	}
	provider, err := s.resolver.Build(ctx, cfg)
	if err != nil {
		return nil, err
	}

	events := make(chan stream.Event)
	go func() {
		defer close(events)
		if _, err := s.runStage(ctx, events, provider, stream.StageCompletion, ai.Prompt{System: system, User: prompt}); err != nil {
			s.fail(ctx, events, stream.StageCompletion, err)
			return
		}
		emit(ctx, events, stream.CompleteEvent())
	}()
	return events, nil
}

func (s *translationService) History(ctx context.Context, filter repository.TranslationListFilter) ([]model.Translation, error) {
	if filter.Limit > maxHistoryLimit {
		filter.Limit = maxHistoryLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.SourceLang != "" {
		filter.SourceLang = languages.Resolve(filter.SourceLang)
	}
	if filter.TargetLang != "" {
		filter.TargetLang = languages.Resolve(filter.TargetLang)
	}
	return s.repo.List(ctx, filter)
}

func (s *translationService) Get(ctx context.Context, id int64) (*model.Translation, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNotFound
	}
	return t, nil
}

func (s *translationService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *translationService) ClearCache(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear translations: %w", err)
	}
	logger.Info("translation cache cleared", "module", "service", "action", "delete", "resource", "translation", "result", "ok", "count", n)
	return n, nil
}

func (s *translationService) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("%w: retention must be positive", ErrInvalid)
	}
	n, err := s.repo.DeleteOlderThan(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("prune translations: %w", err)
	}
	return n, nil
}

func emit(ctx context.Context, events chan<- stream.Event, ev stream.Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
