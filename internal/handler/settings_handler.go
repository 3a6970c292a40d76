package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"translation-agent/backend/internal/network"
	"translation-agent/backend/internal/service"
)

// proxyTestURL is fetched through the proxy under test.
const proxyTestURL = "https://captive.apple.com/"

type SettingsHandler struct {
	service       service.SettingsService
	clientFactory *network.ClientFactory
}

// Request/Response types

type aiSettingsResponse struct {
	Provider        string `json:"provider"`
	APIKey          string `json:"apiKey"`
	BaseURL         string `json:"baseUrl"`
	Model           string `json:"model"`
	Thinking        bool   `json:"thinking"`
	ThinkingBudget  int    `json:"thinkingBudget"`
	ReasoningEffort string `json:"reasoningEffort"`
	RateLimit       int    `json:"rateLimit"`
}

type aiSettingsRequest struct {
	Provider        string `json:"provider"`
	APIKey          string `json:"apiKey"`
	BaseURL         string `json:"baseUrl"`
	Model           string `json:"model"`
	Thinking        bool   `json:"thinking"`
	ThinkingBudget  int    `json:"thinkingBudget"`
	ReasoningEffort string `json:"reasoningEffort"`
	RateLimit       int    `json:"rateLimit"`
}

type aiTestRequest struct {
	Provider        string `json:"provider"`
	APIKey          string `json:"apiKey"`
	BaseURL         string `json:"baseUrl"`
	Model           string `json:"model"`
	Thinking        bool   `json:"thinking"`
	ThinkingBudget  int    `json:"thinkingBudget"`
	ReasoningEffort string `json:"reasoningEffort"`
}

type testResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type networkSettingsBody struct {
	Enabled  bool   `json:"enabled"`
	Type     string `json:"type"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func NewSettingsHandler(service service.SettingsService, clientFactory *network.ClientFactory) *SettingsHandler {
	return &SettingsHandler{service: service, clientFactory: clientFactory}
}

func (h *SettingsHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/settings/ai", h.GetAISettings)
	g.PUT("/settings/ai", h.UpdateAISettings)
	g.POST("/settings/ai/test", h.TestAI)
	g.GET("/settings/network", h.GetNetworkSettings)
	g.PUT("/settings/network", h.UpdateNetworkSettings)
	g.POST("/settings/network/test", h.TestNetworkProxy)
}

// GetAISettings returns the AI configuration.
// @Summary Get AI settings
// @Description Get the runtime provider configuration with masked API keys
// @Tags settings
// @Produce json
// @Success 200 {object} aiSettingsResponse
// @Failure 500 {object} errorResponse
// @Router /settings/ai [get]
func (h *SettingsHandler) GetAISettings(c echo.Context) error {
	settings, err := h.service.GetAISettings(c.Request().Context())
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to get settings"})
	}

	return c.JSON(http.StatusOK, aiSettingsResponse{
		Provider:        settings.Provider,
		APIKey:          settings.APIKey,
		BaseURL:         settings.BaseURL,
		Model:           settings.Model,
		Thinking:        settings.Thinking,
		ThinkingBudget:  settings.ThinkingBudget,
		ReasoningEffort: settings.ReasoningEffort,
		RateLimit:       settings.RateLimit,
	})
}

// UpdateAISettings updates the AI configuration.
// @Summary Update AI settings
// @Description Update the runtime provider configuration. Empty or masked apiKey keeps the existing key.
// @Tags settings
// @Accept json
// @Produce json
// @Param settings body aiSettingsRequest true "AI settings"
// @Success 200 {object} aiSettingsResponse
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /settings/ai [put]
func (h *SettingsHandler) UpdateAISettings(c echo.Context) error {
	var req aiSettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}

	err := h.service.SetAISettings(c.Request().Context(), &service.AISettings{
		Provider:        req.Provider,
		APIKey:          req.APIKey,
		BaseURL:         req.BaseURL,
		Model:           req.Model,
		Thinking:        req.Thinking,
		ThinkingBudget:  req.ThinkingBudget,
		ReasoningEffort: req.ReasoningEffort,
		RateLimit:       req.RateLimit,
	})
	if err != nil {
		return writeServiceError(c, err)
	}

	// Return updated settings (with masked keys)
	return h.GetAISettings(c)
}

// TestAI tests the AI connection.
// @Summary Test AI connection
// @Description Test the provider connection with a "Hello world" message
// @Tags settings
// @Accept json
// @Produce json
// @Param config body aiTestRequest true "AI test configuration"
// @Success 200 {object} testResponse
// @Failure 400 {object} errorResponse
// @Router /settings/ai/test [post]
func (h *SettingsHandler) TestAI(c echo.Context) error {
	var req aiTestRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	if req.Provider == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "provider is required"})
	}

	reply, err := h.service.TestAI(c.Request().Context(), service.AITestConfig{
		Provider:        req.Provider,
		APIKey:          req.APIKey,
		BaseURL:         req.BaseURL,
		Model:           req.Model,
		Thinking:        req.Thinking,
		ThinkingBudget:  req.ThinkingBudget,
		ReasoningEffort: req.ReasoningEffort,
	})
	if err != nil {
		return c.JSON(http.StatusOK, testResponse{Success: false, Error: err.Error()})
	}
	return c.JSON(http.StatusOK, testResponse{Success: true, Message: reply})
}

// GetNetworkSettings returns the network proxy configuration.
// @Summary Get network settings
// @Description Get the outbound proxy configuration with masked password
// @Tags settings
// @Produce json
// @Success 200 {object} networkSettingsBody
// @Failure 500 {object} errorResponse
// @Router /settings/network [get]
func (h *SettingsHandler) GetNetworkSettings(c echo.Context) error {
	settings, err := h.service.GetNetworkSettings(c.Request().Context())
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to get settings"})
	}

	return c.JSON(http.StatusOK, networkSettingsBody{
		Enabled:  settings.Enabled,
		Type:     settings.Type,
		Host:     settings.Host,
		Port:     settings.Port,
		Username: settings.Username,
		Password: settings.Password,
	})
}

// UpdateNetworkSettings updates the network proxy configuration.
// @Summary Update network settings
// @Description Update the outbound proxy configuration. Empty or masked password keeps the existing password.
// @Tags settings
// @Accept json
// @Produce json
// @Param settings body networkSettingsBody true "Network settings"
// @Success 200 {object} networkSettingsBody
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /settings/network [put]
func (h *SettingsHandler) UpdateNetworkSettings(c echo.Context) error {
	var req networkSettingsBody
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}

	err := h.service.SetNetworkSettings(c.Request().Context(), &service.NetworkSettings{
		Enabled:  req.Enabled,
		Type:     req.Type,
		Host:     req.Host,
		Port:     req.Port,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return writeServiceError(c, err)
	}

	return h.GetNetworkSettings(c)
}

// TestNetworkProxy tests the network proxy connection.
// @Summary Test network proxy
// @Description Test the proxy connection by fetching https://captive.apple.com/ through it
// @Tags settings
// @Accept json
// @Produce json
// @Param config body networkSettingsBody true "Network test configuration"
// @Success 200 {object} testResponse
// @Failure 400 {object} errorResponse
// @Router /settings/network/test [post]
func (h *SettingsHandler) TestNetworkProxy(c echo.Context) error {
	var req networkSettingsBody
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}

	if !req.Enabled {
		return c.JSON(http.StatusOK, testResponse{
			Success: true,
			Message: "Proxy is disabled, direct connection will be used",
		})
	}
	if req.Host == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "host is required"})
	}
	if req.Port <= 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "valid port is required"})
	}

	proxyURL := service.BuildProxyURL(&service.NetworkSettings{
		Type:     req.Type,
		Host:     req.Host,
		Port:     req.Port,
		Username: req.Username,
		Password: req.Password,
	})
	if err := h.clientFactory.TestProxy(c.Request().Context(), proxyURL, proxyTestURL); err != nil {
		return c.JSON(http.StatusOK, testResponse{Success: false, Error: err.Error()})
	}
	return c.JSON(http.StatusOK, testResponse{Success: true, Message: "Proxy connection successful"})
}
