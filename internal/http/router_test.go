package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"translation-agent/backend/internal/handler"
	transport "translation-agent/backend/internal/http"
)

type catalogStub struct{}

func (catalogStub) Configured(context.Context, string) bool { return false }
func (catalogStub) DefaultProvider(context.Context) string  { return "gemini" }

func newRouter(t *testing.T, opts transport.Options) http.Handler {
	t.Helper()
	return transport.NewRouter(
		handler.NewTranslateHandler(nil, true),
		handler.NewTranslationHandler(nil),
		handler.NewSettingsHandler(nil, nil),
		handler.NewMetaHandler(catalogStub{}),
		opts,
	)
}

func serve(h http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_HealthAndFavicon(t *testing.T) {
	r := newRouter(t, transport.Options{})

	rec := serve(r, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = serve(r, http.MethodGet, "/favicon.ico", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_KeepsClientRequestID(t *testing.T) {
	r := newRouter(t, transport.Options{})

	rec := serve(r, http.MethodGet, "/healthz", http.Header{"X-Request-Id": {"req-123"}})
	require.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}

func TestRouter_APIRoutes(t *testing.T) {
	r := newRouter(t, transport.Options{})

	rec := serve(r, http.MethodGet, "/api/languages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"defaultTarget":"Chinese"`)

	rec = serve(r, http.MethodGet, "/api/translate", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"Missing text parameter"}`, rec.Body.String())
}

func TestRouter_CORS(t *testing.T) {
	r := newRouter(t, transport.Options{CORSOrigins: []string{"https://app.example"}})

	rec := serve(r, http.MethodGet, "/api/languages", http.Header{"Origin": {"https://app.example"}})
	require.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(r, http.MethodGet, "/api/languages", http.Header{"Origin": {"https://other.example"}})
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_ClientRateLimit(t *testing.T) {
	r := newRouter(t, transport.Options{ClientRPS: 1})

	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/languages", nil).Code)
	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/languages", nil).Code)

	rec := serve(r, http.MethodGet, "/api/languages", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Health checks are outside /api and never limited.
	require.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/healthz", nil).Code)
}

func TestRouter_StaticFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))

	r := newRouter(t, transport.Options{StaticDir: dir})

	rec := serve(r, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "app</html>")

	rec = serve(r, http.MethodGet, "/app.js", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "console.log")

	rec = serve(r, http.MethodGet, "/history/42", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "app</html>")

	rec = serve(r, http.MethodGet, "/api/unknown", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
