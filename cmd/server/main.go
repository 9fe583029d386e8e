// Command server runs the content studio HTTP API.
//
// @title                       Content Studio API
// @version                     1.0
// @description                 Accounts, AI content generation (plain and streamed), chat sessions and content history.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-content-studio/docs"
	"github.com/tbourn/go-content-studio/internal/auth"
	"github.com/tbourn/go-content-studio/internal/config"
	httpapi "github.com/tbourn/go-content-studio/internal/http"
	"github.com/tbourn/go-content-studio/internal/llm"
	"github.com/tbourn/go-content-studio/internal/observability"
	"github.com/tbourn/go-content-studio/internal/repo"
	"github.com/tbourn/go-content-studio/internal/services"
	"github.com/tbourn/go-content-studio/internal/sysutil"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

const shutdownGrace = 30 * time.Second

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	log.Logger = sysutil.NewLogger(os.Stderr, cfg.OTEL.ServiceName, cfg.LogPretty)
	log.Info().Str("version", Version).Str("gin_mode", cfg.GinMode).Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTEL, Version, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("tracing setup failed")
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(c); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	db, err := repo.Open(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	if cfg.DB.SeedKinds {
		if err := repo.SeedContentTypes(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("seed content types")
		}
	}
	if n, err := services.NewIdempotencyService(db, cfg.IdempotencyTTL).Purge(ctx, time.Now()); err != nil {
		log.Warn().Err(err).Msg("purge idempotency records")
	} else if n > 0 {
		log.Info().Int64("purged", n).Msg("expired idempotency records removed")
	}

	client, err := llm.New(llm.Options{
		BaseURL:      cfg.LLM.BaseURL,
		APIKey:       cfg.LLM.APIKey,
		Model:        cfg.LLM.Model,
		Timeout:      cfg.LLM.Timeout,
		CheckTimeout: cfg.LLM.CheckTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("llm client")
	}
	if cfg.LLM.APIKey == "" {
		log.Warn().Msg("LLM_API_KEY is not set; generation requests will fail")
	}

	docs.SwaggerInfo.Version = Version
	docs.SwaggerInfo.BasePath = cfg.APIBasePath

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		DB:     db,
		LLM:    client,
		Tokens: auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.SessionTTL),
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("base_path", cfg.APIBasePath).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server exited")
}
