package handler_test

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"translation-agent/backend/internal/handler"
	"translation-agent/backend/internal/network"
	"translation-agent/backend/internal/service"
)

func newSettingsServer(svc *settingsServiceStub, client *http.Client) *echo.Echo {
	e := echo.New()
	handler.NewSettingsHandler(svc, network.NewClientFactoryForTest(client)).RegisterRoutes(e.Group("/api"))
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestSettingsHandler_AISettingsRoundTrip(t *testing.T) {
	svc := &settingsServiceStub{}
	e := newSettingsServer(svc, http.DefaultClient)

	rec := serve(e, jsonRequest(http.MethodPut, "/api/settings/ai", `{"provider":"anthropic","apiKey":"sk-ant-xyz","model":"claude-3-5-haiku-latest","rateLimit":5}`))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "anthropic", svc.ai.Provider)
	require.Equal(t, 5, svc.ai.RateLimit)
	require.Contains(t, rec.Body.String(), `"model":"claude-3-5-haiku-latest"`)

	svc.setErr = fmt.Errorf("%w: unknown provider", service.ErrInvalid)
	rec = serve(e, jsonRequest(http.MethodPut, "/api/settings/ai", `{"provider":"mistral"}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettingsHandler_TestAI(t *testing.T) {
	svc := &settingsServiceStub{testText: "Hello!"}
	e := newSettingsServer(svc, http.DefaultClient)

	rec := serve(e, jsonRequest(http.MethodPost, "/api/settings/ai/test", `{"apiKey":"k"}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e, jsonRequest(http.MethodPost, "/api/settings/ai/test", `{"provider":"openai","apiKey":"sk-***abc","model":"gpt-4o"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"success":true,"message":"Hello!"}`, rec.Body.String())
	require.Equal(t, "sk-***abc", svc.testCfg.APIKey)

	svc.testErr = errors.New("401 Unauthorized")
	rec = serve(e, jsonRequest(http.MethodPost, "/api/settings/ai/test", `{"provider":"openai"}`))
	require.JSONEq(t, `{"success":false,"error":"401 Unauthorized"}`, rec.Body.String())
}

func TestSettingsHandler_NetworkProxyTest(t *testing.T) {
	var requested string
	client := &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		requested = r.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader("Success")),
			Request:    r,
		}, nil
	})}

	e := newSettingsServer(&settingsServiceStub{}, client)

	rec := serve(e, jsonRequest(http.MethodPost, "/api/settings/network/test", `{"enabled":false}`))
	require.Contains(t, rec.Body.String(), `"success":true`)

	rec = serve(e, jsonRequest(http.MethodPost, "/api/settings/network/test", `{"enabled":true,"port":8080}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e, jsonRequest(http.MethodPost, "/api/settings/network/test", `{"enabled":true,"host":"127.0.0.1","port":8080}`))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"success":true,"message":"Proxy connection successful"}`, rec.Body.String())
	require.Equal(t, "https://captive.apple.com/", requested)
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestSettingsHandler_NetworkSettings(t *testing.T) {
	svc := &settingsServiceStub{}
	e := newSettingsServer(svc, http.DefaultClient)

	rec := serve(e, jsonRequest(http.MethodPut, "/api/settings/network", `{"enabled":true,"type":"socks5","host":"10.0.0.1","port":1080}`))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "socks5", svc.network.Type)
	require.Contains(t, rec.Body.String(), `"host":"10.0.0.1"`)
}
