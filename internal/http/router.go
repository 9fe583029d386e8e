// Package httpapi wires the HTTP transport (Gin) to the application
// services, middleware and handlers. It owns the cross-cutting concerns:
// tracing, correlation ids, access logging, panic recovery, metrics,
// compression, CORS, security headers, authentication, idempotency and
// rate limiting.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-content-studio/internal/auth"
	"github.com/tbourn/go-content-studio/internal/config"
	"github.com/tbourn/go-content-studio/internal/http/handlers"
	"github.com/tbourn/go-content-studio/internal/http/middleware"
	"github.com/tbourn/go-content-studio/internal/services"
)

// Deps are the external resources the API is built on.
type Deps struct {
	DB     *gorm.DB
	LLM    services.Generator
	Tokens *auth.TokenManager
}

const streamPath = "/generate/stream"

// RegisterRoutes attaches middleware and endpoints to r and builds the
// services from deps.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. AccessLog: request-scoped logger and redacted access line
//  4. Recovery: capture panics after the logger exists
//  5. Body size limiter
//  6. Metrics
//  7. Gzip (never on the event stream or /metrics)
//  8. CORS and security headers
//
// Per group: public auth routes are limited by client IP; authenticated
// routes run Authenticate, then the idempotency validator, then the
// per-user limiter, so replays skip the limiter. Generation routes have a
// second, tighter limiter.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(middleware.RedactOptions{
		MaskHeaders: []string{middleware.HeaderIdempotencyKey},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(cfg.MaxBodyBytes))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiBase := cfg.APIBasePath
	if apiBase == "/" {
		apiBase = ""
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/metrics", apiBase + streamPath})))

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", health(deps.DB))
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← db/llm/tokens
	idem := services.NewIdempotencyService(deps.DB, cfg.IdempotencyTTL)
	h := handlers.New(handlers.Services{
		Accounts:    services.NewCredentialService(deps.DB, deps.Tokens),
		Generation:  services.NewGenerationService(deps.DB, deps.LLM, cfg.LLM.MaxPrompt),
		Idempotency: idem,
		Sessions:    services.NewSessionService(deps.DB),
		Contents:    services.NewContentService(deps.DB),
		Preferences: services.NewPreferencesService(deps.DB),
		Stats:       services.NewStatsService(deps.DB),
	})

	api := groupWithPrefix(r, apiBase)

	byIP := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, func(c *gin.Context) string { return "ip:" + c.ClientIP() })
	public := api.Group("/auth", byIP.Handler())
	{
		public.POST("/signup", h.SignUp)
		public.POST("/signin", h.SignIn)
	}

	perUser := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	authed := api.Group("",
		middleware.Authenticate(deps.Tokens),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, idem.Exists),
		perUser.Handler(),
	)
	{
		authed.GET("/me", h.GetMe)
		authed.PATCH("/me", h.UpdateMe)
		authed.PUT("/me/password", h.ChangePassword)
		authed.GET("/me/preferences", h.GetPreferences)
		authed.PUT("/me/preferences", h.UpdatePreferences)
		authed.GET("/me/stats", h.GetStats)

		authed.GET("/content-types", h.ListContentTypes)
		authed.GET("/llm/status", h.LLMStatus)
		authed.GET("/llm/models", h.LLMModels)

		authed.GET("/sessions", h.ListSessions)
		authed.GET("/sessions/:id", h.GetSession)
		authed.PUT("/sessions/:id/title", h.RenameSession)

		authed.GET("/contents", h.ListContents)
		authed.GET("/contents/:id", h.GetContent)
		authed.POST("/contents/:id/favorite", h.ToggleFavorite)
		authed.DELETE("/contents/:id", h.DeleteContent)
	}

	genLimit := middleware.NewRateLimiter(cfg.GenRateRPS, cfg.GenRateBurst, middleware.KeyByUserOrIP())
	gen := authed.Group("", genLimit.Handler())
	{
		gen.POST("/generate", h.Generate)
		gen.POST(streamPath, h.GenerateStream)
	}
}

func corsMiddleware(origins []string) []gin.HandlerFunc {
	methods := []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	headers := []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey}
	expose := []string{middleware.HeaderRequestID, "Content-Length", handlers.HeaderReplayed, "ETag"}

	if len(origins) == 0 {
		return []gin.HandlerFunc{
			// ACAO even without an Origin header, so simple probes see it too.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(cors.Config{
				AllowAllOrigins:  true,
				AllowMethods:     methods,
				AllowHeaders:     headers,
				ExposeHeaders:    expose,
				AllowCredentials: false, // must remain false with AllowAllOrigins
				MaxAge:           12 * time.Hour,
			}),
		}
	}
	return []gin.HandlerFunc{cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     methods,
		AllowHeaders:     headers,
		ExposeHeaders:    expose,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	})}
}

// health reports liveness plus a bounded database ping.
func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				middleware.LoggerFrom(c).Warn().Err(err).Msg("health: database ping failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": "down"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "up"})
	}
}

// limitBody caps request bodies at maxBytes; reads past it fail.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
