package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"translation-agent/backend/internal/service"
	"translation-agent/backend/internal/service/ai"
	"translation-agent/backend/internal/stream"
)

// Caller-supplied API keys, by provider.
var (
	keyHeaders = map[string]string{
		ai.ProviderOpenAI:     "X-OpenAI-Key",
		ai.ProviderGemini:     "X-Gemini-Key",
		ai.ProviderAnthropic:  "X-Anthropic-Key",
		ai.ProviderCompatible: "X-Compatible-Key",
	}
	keyQueryParams = map[string]string{
		ai.ProviderOpenAI: "OPENAI_API_KEY",
		ai.ProviderGemini: "GEMINI_API_KEY",
	}
)

type TranslateHandler struct {
	service          service.TranslationService
	allowKeyOverride bool
}

type translateRequest struct {
	Text    string `json:"text" query:"text"`
	Source  string `json:"source" query:"source"`
	Target  string `json:"target" query:"target"`
	Country string `json:"country" query:"country"`
	LLM     string `json:"llm" query:"llm"`
	Model   string `json:"model" query:"model"`
	Format  string `json:"format" query:"format"`
}

type completeRequest struct {
	Prompt string `query:"prompt"`
	System string `query:"system"`
	LLM    string `query:"llm"`
	Model  string `query:"model"`
	Format string `query:"format"`
}

func NewTranslateHandler(service service.TranslationService, allowKeyOverride bool) *TranslateHandler {
	return &TranslateHandler{service: service, allowKeyOverride: allowKeyOverride}
}

func (h *TranslateHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/translate", h.Translate)
	g.POST("/translate", h.Translate)
	g.GET("/complete", h.Complete)
}

// Translate streams a three-stage translation.
// @Summary Translate text
// @Description Run initial translation, reflection and improvement, streaming each stage. Events are SSE by default; format=text selects the line-oriented format.
// @Tags translate
// @Accept json
// @Produce text/event-stream
// @Produce text/plain
// @Param text query string true "Text to translate"
// @Param source query string false "Source language (default English)"
// @Param target query string false "Target language (default Chinese)"
// @Param country query string false "Country whose colloquial style the translation should match"
// @Param llm query string false "Provider: gemini, openai, anthropic, compatible"
// @Param model query string false "Model override"
// @Param format query string false "sse or text"
// @Success 200 {string} string "event stream"
// @Failure 400 {object} errorResponse
// @Failure 503 {object} errorResponse
// @Router /translate [get]
// @Router /translate [post]
func (h *TranslateHandler) Translate(c echo.Context) error {
	var req translateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Missing text parameter"})
	}

	events, err := h.service.Translate(c.Request().Context(), service.TranslateRequest{
		Text:    req.Text,
		Source:  req.Source,
		Target:  req.Target,
		Country: req.Country,
		LLM:     req.LLM,
		Model:   req.Model,
		APIKeys: h.apiKeys(c),
	})
	if err != nil {
		return writeServiceError(c, err)
	}

	return writeEvents(c, events, stream.NegotiateFormat(req.Format, c.Request().Header.Get(echo.HeaderAccept)))
}

// Complete streams a free-form completion.
// @Summary Free-form completion
// @Description Stream a single completion. Defaults to "Tell me a story." with a helpful-assistant system message.
// @Tags translate
// @Produce text/event-stream
// @Produce text/plain
// @Param prompt query string false "User prompt"
// @Param system query string false "System message"
// @Param llm query string false "Provider"
// @Param model query string false "Model override"
// @Param format query string false "sse or text"
// @Success 200 {string} string "event stream"
// @Failure 503 {object} errorResponse
// @Router /complete [get]
func (h *TranslateHandler) Complete(c echo.Context) error {
	var req completeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}

	events, err := h.service.Complete(c.Request().Context(), service.CompletionRequest{
		Prompt:  req.Prompt,
		System:  req.System,
		LLM:     req.LLM,
		Model:   req.Model,
		APIKeys: h.apiKeys(c),
	})
	if err != nil {
		return writeServiceError(c, err)
	}

	return writeEvents(c, events, stream.NegotiateFormat(req.Format, c.Request().Header.Get(echo.HeaderAccept)))
}

func (h *TranslateHandler) apiKeys(c echo.Context) map[string]string {
	if !h.allowKeyOverride {
		return nil
	}
	keys := make(map[string]string)
	for provider, name := range keyQueryParams {
		if v := c.QueryParam(name); v != "" {
			keys[provider] = v
		}
	}
	for provider, name := range keyHeaders {
		if v := c.Request().Header.Get(name); v != "" {
			keys[provider] = v
		}
	}
	return keys
}

// writeEvents relays events until the channel closes. Failures after the
// headers are sent travel in-band as error events.
func writeEvents(c echo.Context, events <-chan stream.Event, format string) error {
	enc := stream.NewEncoder(format)

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, enc.ContentType())
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	for ev := range events {
		if err := enc.Encode(res, ev); err != nil {
			c.Logger().Errorf("write event: %v", err)
			return nil
		}
		res.Flush()
	}
	return nil
}
