// Package config loads the studio's runtime settings from environment
// variables. Every value has a default; Load normalizes and validates the
// result so the rest of the application can trust it without re-checking.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/go-content-studio/internal/sysutil"
)

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig controls response hardening.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry tracing settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// DBConfig selects and locates the relational store.
type DBConfig struct {
	Driver       string // sqlite|postgres
	Path         string // SQLite file (sqlite driver)
	URL          string // DSN (postgres driver)
	SeedKinds    bool   // insert the canonical content types at startup
	MaxOpenConns int
}

// LLMConfig points the generation client at an OpenAI-compatible endpoint.
type LLMConfig struct {
	APIKey       string        // LLM_API_KEY, falls back to GROQ_API_KEY
	BaseURL      string        // e.g. https://api.groq.com/openai/v1
	Model        string        // LLM_MODEL, falls back to GROQ_MODEL
	Timeout      time.Duration // bound for one generate / stream call
	CheckTimeout time.Duration // bound for the connectivity probe
	MaxPrompt    int           // max prompt length in runes
}

// AuthConfig configures signed session tokens.
type AuthConfig struct {
	JWTSecret  string
	Issuer     string
	SessionTTL time.Duration
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration // must cover a full streamed generation
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64
	GinMode           string // debug|release|test

	// Logging / Docs
	LogLevel       string
	LogPretty      bool
	SwaggerEnabled bool
	APIBasePath    string

	DB   DBConfig
	LLM  LLMConfig
	Auth AuthConfig

	// Rate limiting. The Gen* pair applies on top to generation routes.
	RateRPS      float64
	RateBurst    int
	GenRateRPS   float64
	GenRateBurst int

	CORS     CORSConfig
	Security SecurityConfig

	IdempotencyTTL time.Duration

	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from the environment, applies defaults,
// normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 150*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		MaxBodyBytes:      int64(getint("MAX_BODY_BYTES", 1<<20)),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		DB: DBConfig{
			Driver:       strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			Path:         getenv("DB_PATH", "studio.db"),
			URL:          getenv("DATABASE_URL", ""),
			SeedKinds:    getbool("SEED_CONTENT_TYPES", true),
			MaxOpenConns: getint("DB_MAX_OPEN_CONNS", 10),
		},
		LLM: LLMConfig{
			APIKey:       firstSet("LLM_API_KEY", "GROQ_API_KEY"),
			BaseURL:      strings.TrimRight(getenv("LLM_BASE_URL", "https://api.groq.com/openai/v1"), "/"),
			Model:        firstSetOr("llama-3.3-70b-versatile", "LLM_MODEL", "GROQ_MODEL"),
			Timeout:      getdur("LLM_TIMEOUT", 120*time.Second),
			CheckTimeout: getdur("LLM_CHECK_TIMEOUT", 10*time.Second),
			MaxPrompt:    getint("LLM_MAX_PROMPT", 4000),
		},
		Auth: AuthConfig{
			JWTSecret:  getenv("JWT_SECRET", ""),
			Issuer:     getenv("JWT_ISSUER", "content-studio"),
			SessionTTL: getdur("SESSION_TTL", 24*time.Hour),
		},

		RateRPS:      getfloat("RATE_RPS", 5.0),
		RateBurst:    getint("RATE_BURST", 10),
		GenRateRPS:   getfloat("GEN_RATE_RPS", 0.5),
		GenRateBurst: getint("GEN_RATE_BURST", 3),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "content-studio"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.DB.Driver == "postgresql" || cfg.DB.Driver == "pg" {
		cfg.DB.Driver = "postgres"
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 || cfg.MaxBodyBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES and MAX_BODY_BYTES must be > 0")
	}
	switch cfg.DB.Driver {
	case "sqlite":
		if strings.TrimSpace(cfg.DB.Path) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(cfg.DB.URL) == "" {
			return cfg, errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	if cfg.LLM.BaseURL == "" || strings.TrimSpace(cfg.LLM.Model) == "" {
		return cfg, errors.New("LLM_BASE_URL and LLM_MODEL must not be empty")
	}
	if cfg.LLM.Timeout <= 0 || cfg.LLM.CheckTimeout <= 0 {
		return cfg, errors.New("LLM_TIMEOUT and LLM_CHECK_TIMEOUT must be > 0")
	}
	if cfg.LLM.MaxPrompt < 1 {
		return cfg, errors.New("LLM_MAX_PROMPT must be >= 1")
	}
	if len(cfg.Auth.JWTSecret) < 16 {
		return cfg, errors.New("JWT_SECRET must be at least 16 characters")
	}
	if cfg.Auth.SessionTTL <= 0 {
		return cfg, errors.New("SESSION_TTL must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.GenRateRPS < 0 || cfg.GenRateBurst < 1 {
		return cfg, errors.New("GEN_RATE_RPS must be >= 0 and GEN_RATE_BURST >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

// firstSet returns the value of the first non-empty variable among keys.
func firstSet(keys ...string) string {
	vals := make([]string, len(keys))
	for i, k := range keys {
		vals[i] = os.Getenv(k)
	}
	return strings.TrimSpace(sysutil.FirstNonEmpty(vals...))
}

func firstSetOr(def string, keys ...string) string {
	if v := firstSet(keys...); v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures a leading '/' and strips a trailing one (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}
