package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"translation-agent/backend/internal/config"
	"translation-agent/backend/internal/languages"
	"translation-agent/backend/internal/service/ai"
)

// ProviderCatalog reports provider availability.
type ProviderCatalog interface {
	Configured(ctx context.Context, name string) bool
	DefaultProvider(ctx context.Context) string
}

type MetaHandler struct {
	providers ProviderCatalog
}

type languageResponse struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
}

type languagesResponse struct {
	Languages     []languageResponse `json:"languages"`
	DefaultSource string             `json:"defaultSource"`
	DefaultTarget string             `json:"defaultTarget"`
}

type resolvedLanguageResponse struct {
	Input     string `json:"input"`
	Name      string `json:"name"`
	Supported bool   `json:"supported"`
}

type providerResponse struct {
	Name         string `json:"name"`
	DefaultModel string `json:"defaultModel,omitempty"`
	Configured   bool   `json:"configured"`
}

type providersResponse struct {
	Default   string             `json:"default"`
	Providers []providerResponse `json:"providers"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

func NewMetaHandler(providers ProviderCatalog) *MetaHandler {
	return &MetaHandler{providers: providers}
}

func (h *MetaHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/languages", h.Languages)
	g.GET("/languages/resolve", h.ResolveLanguage)
	g.GET("/providers", h.Providers)
}

// Languages returns the language picker catalogue.
// @Summary List languages
// @Tags meta
// @Produce json
// @Success 200 {object} languagesResponse
// @Router /languages [get]
func (h *MetaHandler) Languages(c echo.Context) error {
	list := languages.List()
	resp := languagesResponse{
		Languages:     make([]languageResponse, 0, len(list)),
		DefaultSource: languages.DefaultSource,
		DefaultTarget: languages.DefaultTarget,
	}
	for _, l := range list {
		resp.Languages = append(resp.Languages, languageResponse{Code: l.Code, Name: l.Name, NativeName: l.NativeName})
	}
	return c.JSON(http.StatusOK, resp)
}

// ResolveLanguage shows the prompt name a language name or tag maps to.
// @Summary Resolve language
// @Tags meta
// @Produce json
// @Param name query string true "Language name or BCP-47 tag"
// @Success 200 {object} resolvedLanguageResponse
// @Failure 400 {object} errorResponse
// @Router /languages/resolve [get]
func (h *MetaHandler) ResolveLanguage(c echo.Context) error {
	input := strings.TrimSpace(c.QueryParam("name"))
	if input == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Missing name parameter"})
	}
	return c.JSON(http.StatusOK, resolvedLanguageResponse{
		Input:     input,
		Name:      languages.Resolve(input),
		Supported: languages.Supported(input),
	})
}

// Providers lists the supported providers and whether each has credentials.
// @Summary List providers
// @Tags meta
// @Produce json
// @Success 200 {object} providersResponse
// @Router /providers [get]
func (h *MetaHandler) Providers(c echo.Context) error {
	ctx := c.Request().Context()
	resp := providersResponse{Default: h.providers.DefaultProvider(ctx)}
	for _, name := range ai.Providers() {
		resp.Providers = append(resp.Providers, providerResponse{
			Name:         name,
			DefaultModel: ai.DefaultModel(name),
			Configured:   h.providers.Configured(ctx, name),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// Health reports liveness.
// @Summary Health check
// @Tags meta
// @Produce json
// @Success 200 {object} healthResponse
// @Router /healthz [get]
func (h *MetaHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", Name: config.AppName, Version: config.AppVersion})
}
