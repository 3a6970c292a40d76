package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"translation-agent/backend/internal/handler"
	"translation-agent/backend/internal/model"
	"translation-agent/backend/internal/service"
)

func newTranslationServer(svc *translationServiceStub) *echo.Echo {
	e := echo.New()
	handler.NewTranslationHandler(svc).RegisterRoutes(e.Group("/api"))
	return e
}

func TestTranslationHandler_List(t *testing.T) {
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := &translationServiceStub{history: []model.Translation{
		{ID: 1844674407370955161, SourceLang: "English", TargetLang: "Chinese", SourceText: "Hi", ImprovedTranslation: "你好", CreatedAt: created},
		{ID: 2, CreatedAt: created},
		{ID: 3, CreatedAt: created},
	}}
	e := newTranslationServer(svc)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/translations?limit=2&offset=4&target=Chinese", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	require.Equal(t, 3, svc.lastFilter.Limit)
	require.Equal(t, 4, svc.lastFilter.Offset)
	require.Equal(t, "Chinese", svc.lastFilter.TargetLang)

	var body struct {
		Translations []map[string]any `json:"translations"`
		HasMore      bool             `json:"hasMore"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.HasMore)
	require.Len(t, body.Translations, 2)
	require.Equal(t, "1844674407370955161", body.Translations[0]["id"])
	require.Equal(t, "你好", body.Translations[0]["improveTranslation"])
	require.Equal(t, "2024-06-01T12:00:00Z", body.Translations[0]["createdAt"])
}

func TestTranslationHandler_GetByID(t *testing.T) {
	svc := &translationServiceStub{getErr: service.ErrNotFound}
	e := newTranslationServer(svc)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/translations/abc", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/api/translations/5", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	svc.getErr = nil
	svc.item = &model.Translation{ID: 5, Reflection: "tighten wording"}
	rec = serve(e, httptest.NewRequest(http.MethodGet, "/api/translations/5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"reflectTranslation":"tighten wording"`)
}

func TestTranslationHandler_DeleteAndClear(t *testing.T) {
	svc := &translationServiceStub{deleteErr: service.ErrNotFound, cleared: 12}
	e := newTranslationServer(svc)

	rec := serve(e, httptest.NewRequest(http.MethodDelete, "/api/translations/5", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	svc.deleteErr = nil
	rec = serve(e, httptest.NewRequest(http.MethodDelete, "/api/translations/5", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(e, httptest.NewRequest(http.MethodDelete, "/api/translations", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"deleted":12}`, rec.Body.String())
}
