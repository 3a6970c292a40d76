package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"translation-agent/backend/internal/model"
	"translation-agent/backend/internal/repository"
	"translation-agent/backend/internal/service"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

type TranslationHandler struct {
	service service.TranslationService
}

type translationResponse struct {
	ID                 string `json:"id"`
	Provider           string `json:"provider"`
	Model              string `json:"model"`
	Source             string `json:"source"`
	Target             string `json:"target"`
	Country            string `json:"country,omitempty"`
	Text               string `json:"text"`
	InitialTranslation string `json:"initialTranslation"`
	ReflectTranslation string `json:"reflectTranslation"`
	ImproveTranslation string `json:"improveTranslation"`
	DurationMs         int64  `json:"durationMs"`
	CreatedAt          string `json:"createdAt"`
}

type translationListResponse struct {
	Translations []translationResponse `json:"translations"`
	HasMore      bool                  `json:"hasMore"`
}

func NewTranslationHandler(service service.TranslationService) *TranslationHandler {
	return &TranslationHandler{service: service}
}

func (h *TranslationHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/translations", h.List)
	g.GET("/translations/:id", h.GetByID)
	g.DELETE("/translations/:id", h.Delete)
	g.DELETE("/translations", h.Clear)
}

// List returns cached translation runs, newest first.
// @Summary List translations
// @Description List cached translation runs with optional language filters and pagination
// @Tags translations
// @Produce json
// @Param source query string false "Filter by source language"
// @Param target query string false "Filter by target language"
// @Param limit query int false "Limit (default 50, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} translationListResponse
// @Failure 500 {object} errorResponse
// @Router /translations [get]
func (h *TranslationHandler) List(c echo.Context) error {
	limit := queryInt(c, "limit", defaultHistoryLimit, maxHistoryLimit)
	if limit == 0 {
		limit = defaultHistoryLimit
	}
	filter := repository.TranslationListFilter{
		SourceLang: c.QueryParam("source"),
		TargetLang: c.QueryParam("target"),
		Limit:      limit + 1,
		Offset:     queryInt(c, "offset", 0, 0),
	}

	items, err := h.service.History(c.Request().Context(), filter)
	if err != nil {
		return writeServiceError(c, err)
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}
	resp := translationListResponse{
		Translations: make([]translationResponse, 0, len(items)),
		HasMore:      hasMore,
	}
	for _, item := range items {
		resp.Translations = append(resp.Translations, toTranslationResponse(item))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetByID returns one cached translation run.
// @Summary Get translation
// @Tags translations
// @Produce json
// @Param id path string true "Translation ID"
// @Success 200 {object} translationResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /translations/{id} [get]
func (h *TranslationHandler) GetByID(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id"})
	}
	item, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toTranslationResponse(*item))
}

// Delete removes one cached translation run.
// @Summary Delete translation
// @Tags translations
// @Param id path string true "Translation ID"
// @Success 204
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /translations/{id} [delete]
func (h *TranslationHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id"})
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Clear removes every cached translation run.
// @Summary Clear translation cache
// @Tags translations
// @Produce json
// @Success 200 {object} deletedCountResponse
// @Failure 500 {object} errorResponse
// @Router /translations [delete]
func (h *TranslationHandler) Clear(c echo.Context) error {
	deleted, err := h.service.ClearCache(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, deletedCountResponse{Deleted: deleted})
}

func toTranslationResponse(t model.Translation) translationResponse {
	return translationResponse{
		ID:                 strconv.FormatInt(t.ID, 10),
		Provider:           t.Provider,
		Model:              t.Model,
		Source:             t.SourceLang,
		Target:             t.TargetLang,
		Country:            t.Country,
		Text:               t.SourceText,
		InitialTranslation: t.InitialTranslation,
		ReflectTranslation: t.Reflection,
		ImproveTranslation: t.ImprovedTranslation,
		DurationMs:         t.DurationMs,
		CreatedAt:          t.CreatedAt.UTC().Format(time.RFC3339),
	}
}
