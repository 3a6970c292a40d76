package http

import (
	nethttp "net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "translation-agent/backend/docs"
	"translation-agent/backend/internal/handler"
)

// Options configures the router outside of its handlers.
type Options struct {
	StaticDir   string
	CORSOrigins []string
	// ClientRPS is the per-client request rate on /api; zero disables limiting.
	ClientRPS float64
}

func NewRouter(
	translateHandler *handler.TranslateHandler,
	translationHandler *handler.TranslationHandler,
	settingsHandler *handler.SettingsHandler,
	metaHandler *handler.MetaHandler,
	opts Options,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(RequestIDMiddleware())
	e.Use(RequestLoggerMiddleware())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  opts.CORSOrigins,
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "X-OpenAI-Key", "X-Gemini-Key", "X-Anthropic-Key", "X-Compatible-Key"},
		ExposeHeaders: []string{echo.HeaderXRequestID},
	}))

	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/healthz", metaHandler.Health)
	e.GET("/favicon.ico", func(c echo.Context) error {
		return c.NoContent(nethttp.StatusNoContent)
	})

	api := e.Group("/api")
	if opts.ClientRPS > 0 {
		api.Use(ClientRateLimitMiddleware(opts.ClientRPS))
	}
	translateHandler.RegisterRoutes(api)
	translationHandler.RegisterRoutes(api)
	settingsHandler.RegisterRoutes(api)
	metaHandler.RegisterRoutes(api)

	registerStatic(e, opts.StaticDir)

	return e
}
