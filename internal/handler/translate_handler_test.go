package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"translation-agent/backend/internal/handler"
	"translation-agent/backend/internal/service"
	"translation-agent/backend/internal/stream"
)

func newTranslateServer(svc *translationServiceStub, allowKeys bool) *echo.Echo {
	e := echo.New()
	handler.NewTranslateHandler(svc, allowKeys).RegisterRoutes(e.Group("/api"))
	return e
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func sampleRun() []stream.Event {
	return []stream.Event{
		stream.StageEvent(stream.StageInitial, false),
		stream.ChunkEvent(stream.StageInitial, "你好"),
		stream.StageEvent(stream.StageReflect, false),
		stream.ChunkEvent(stream.StageReflect, "ok"),
		stream.StageEvent(stream.StageImprove, false),
		stream.ChunkEvent(stream.StageImprove, "你好！"),
		stream.CompleteEvent(),
	}
}

func TestTranslateHandler_MissingText(t *testing.T) {
	e := newTranslateServer(&translationServiceStub{}, true)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/translate?source=English", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"Missing text parameter"}`, rec.Body.String())
}

func TestTranslateHandler_StreamsSSEByDefault(t *testing.T) {
	svc := &translationServiceStub{events: sampleRun()}
	e := newTranslateServer(svc, true)

	q := url.Values{"text": {"Hello"}, "source": {"English"}, "target": {"Chinese"}, "country": {"China"}, "llm": {"openai"}}
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/translate?"+q.Encode(), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, stream.ContentTypeSSE, rec.Header().Get(echo.HeaderContentType))
	require.Contains(t, rec.Body.String(), "event: stage\ndata: {\"type\":\"stage\",\"stage\":\"initialTranslation\"}\n\n")
	require.True(t, strings.HasSuffix(rec.Body.String(), "event: complete\ndata: {\"type\":\"complete\"}\n\n"))

	require.Equal(t, service.TranslateRequest{
		Text:    "Hello",
		Source:  "English",
		Target:  "Chinese",
		Country: "China",
		LLM:     "openai",
		APIKeys: map[string]string{},
	}, svc.lastTranslate)
}

func TestTranslateHandler_TextFormat(t *testing.T) {
	svc := &translationServiceStub{events: sampleRun()}
	e := newTranslateServer(svc, true)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/translate?text=Hello&format=text", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/plain"))
	require.Equal(t, "\ninitialTranslation\n你好\nreflectTranslation\nok\nimproveTranslation\n你好！\ncomplete\n", rec.Body.String())
}

func TestTranslateHandler_PostJSON(t *testing.T) {
	svc := &translationServiceStub{events: sampleRun()}
	e := newTranslateServer(svc, true)

	req := httptest.NewRequest(http.MethodPost, "/api/translate", strings.NewReader(`{"text":"Bonjour","source":"French","target":"English","model":"gpt-4o"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := serve(e, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Bonjour", svc.lastTranslate.Text)
	require.Equal(t, "French", svc.lastTranslate.Source)
	require.Equal(t, "gpt-4o", svc.lastTranslate.Model)
}

func TestTranslateHandler_KeyOverrides(t *testing.T) {
	svc := &translationServiceStub{events: sampleRun()}
	e := newTranslateServer(svc, true)

	req := httptest.NewRequest(http.MethodGet, "/api/translate?text=Hi&GEMINI_API_KEY=query-gemini&OPENAI_API_KEY=query-openai", nil)
	req.Header.Set("X-OpenAI-Key", "header-openai")
	req.Header.Set("X-Anthropic-Key", "header-anthropic")
	serve(e, req)

	require.Equal(t, map[string]string{
		"gemini":    "query-gemini",
		"openai":    "header-openai",
		"anthropic": "header-anthropic",
	}, svc.lastTranslate.APIKeys)

	svc = &translationServiceStub{events: sampleRun()}
	e = newTranslateServer(svc, false)
	serve(e, req)
	require.Nil(t, svc.lastTranslate.APIKeys)
}

func TestTranslateHandler_ServiceErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: gemini API key is not set", service.ErrNotConfigured), http.StatusServiceUnavailable},
		{fmt.Errorf("%w: unknown provider", service.ErrInvalid), http.StatusBadRequest},
		{fmt.Errorf("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		e := newTranslateServer(&translationServiceStub{err: tc.err}, true)
		rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/translate?text=Hi", nil))
		require.Equal(t, tc.status, rec.Code, tc.err.Error())
	}
}

func TestTranslateHandler_InBandError(t *testing.T) {
	svc := &translationServiceStub{events: []stream.Event{
		stream.StageEvent(stream.StageInitial, false),
		stream.ErrorEvent("provider error: quota exceeded"),
	}}
	e := newTranslateServer(svc, true)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/translate?text=Hi", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "event: error\ndata: {\"type\":\"error\",\"text\":\"provider error: quota exceeded\"}")
}

func TestTranslateHandler_Complete(t *testing.T) {
	svc := &translationServiceStub{events: []stream.Event{
		stream.StageEvent(stream.StageCompletion, false),
		stream.ChunkEvent(stream.StageCompletion, "Once"),
		stream.CompleteEvent(),
	}}
	e := newTranslateServer(svc, true)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/complete?prompt=Hi&llm=gemini", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Hi", svc.lastComplete.Prompt)
	require.Equal(t, "gemini", svc.lastComplete.LLM)
	require.Contains(t, rec.Body.String(), `"text":"Once"`)
}
