package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"translation-agent/backend/internal/config"
	"translation-agent/backend/internal/db"
	"translation-agent/backend/internal/handler"
	transport "translation-agent/backend/internal/http"
	"translation-agent/backend/internal/logger"
	"translation-agent/backend/internal/network"
	"translation-agent/backend/internal/repository"
	"translation-agent/backend/internal/scheduler"
	"translation-agent/backend/internal/service"
	"translation-agent/backend/internal/service/ai"
	"translation-agent/backend/internal/snowflake"
)

const shutdownTimeout = 10 * time.Second

// @title Translation Agent API
// @version 1.0
// @description Reflective translation relay: translate, critique and refine over streamed LLM output.
// @BasePath /api
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger.Init(logger.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	if err := snowflake.Init(1); err != nil {
		log.Fatalf("init snowflake: %v", err)
	}

	dbConn, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer dbConn.Close()

	translationRepo := repository.NewTranslationRepository(dbConn)
	settingsRepo := repository.NewSettingsRepository(dbConn)

	clients := network.NewClientFactory(service.NewSettingsProxyProvider(settingsRepo, cfg.ProxyURL))
	rateLimiter := ai.NewRateLimiter(cfg.AIQPS)
	resolver := service.NewProviderResolver(settingsRepo, cfg, clients, nil)

	settingsService := service.NewSettingsService(settingsRepo, resolver, rateLimiter)
	translationService := service.NewTranslationService(translationRepo, resolver, rateLimiter)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := settingsService.RestoreRateLimit(ctx); err != nil {
		logger.Warn("restore rate limit", "module", "server", "action", "start", "resource", "settings", "result", "failed", "error", err)
	}

	router := transport.NewRouter(
		handler.NewTranslateHandler(translationService, cfg.AllowKeyOverride),
		handler.NewTranslationHandler(translationService),
		handler.NewSettingsHandler(settingsService, clients),
		handler.NewMetaHandler(resolver),
		transport.Options{
			StaticDir:   cfg.StaticDir,
			CORSOrigins: cfg.CORSOrigins,
			ClientRPS:   cfg.ClientRPS,
		},
	)

	sched := scheduler.New(translationService, cfg.CacheTTL, cfg.PruneInterval)
	sched.Start()
	defer sched.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "module", "server", "action", "start", "resource", "http", "result", "ok", "addr", cfg.Addr, "provider", cfg.Provider)
		if err := router.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", "module", "server", "action", "stop", "resource", "http", "result", "ok")
		sched.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return router.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server: %v", err)
	}
}
