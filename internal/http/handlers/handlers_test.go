package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-content-studio/internal/auth"
	"github.com/tbourn/go-content-studio/internal/domain"
	"github.com/tbourn/go-content-studio/internal/http/middleware"
	"github.com/tbourn/go-content-studio/internal/llm"
	"github.com/tbourn/go-content-studio/internal/repo"
	"github.com/tbourn/go-content-studio/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

// ---------- test DB ----------

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := repo.SeedContentTypes(context.Background(), db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

// ---------- fake model ----------

type fakeLLM struct {
	mu     sync.Mutex
	text   string
	err    error
	chunks []llm.Chunk
	calls  int
}

func (f *fakeLLM) Generate(context.Context, string, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.text, f.err
}

func (f *fakeLLM) GenerateStream(context.Context, string, string) iter.Seq[llm.Chunk] {
	return func(yield func(llm.Chunk) bool) {
		f.mu.Lock()
		f.calls++
		chunks := f.chunks
		f.mu.Unlock()
		for _, c := range chunks {
			if !yield(c) {
				return
			}
		}
	}
}

func (f *fakeLLM) CheckConnection(context.Context) bool { return f.err == nil }
func (f *fakeLLM) Models() []string                     { return []string{"model-a"} }

// ---------- router under test ----------

type testEnv struct {
	db     *gorm.DB
	llm    *fakeLLM
	tokens *auth.TokenManager
	r      *gin.Engine
}

// newEnv mounts every handler. Authenticated routes read the caller from
// the X-Test-User header instead of a token.
func newEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	fake := &fakeLLM{text: "generated text", chunks: []llm.Chunk{llm.Data("Hello"), llm.Data(" world"), llm.End()}}
	tokens := auth.NewTokenManager("test-secret", "test", time.Hour)

	h := New(Services{
		Accounts:    services.NewCredentialService(db, tokens),
		Generation:  services.NewGenerationService(db, fake, 0),
		Idempotency: services.NewIdempotencyService(db, time.Hour),
		Sessions:    services.NewSessionService(db),
		Contents:    services.NewContentService(db),
		Preferences: services.NewPreferencesService(db),
		Stats:       services.NewStatsService(db),
	})

	r := gin.New()
	r.Use(middleware.RequestID())
	r.POST("/auth/signup", h.SignUp)
	r.POST("/auth/signin", h.SignIn)

	a := r.Group("", func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-User"); uid != "" {
			c.Set(middleware.UserIDKey, uid)
		}
		c.Next()
	})
	a.GET("/me", h.GetMe)
	a.PATCH("/me", h.UpdateMe)
	a.PUT("/me/password", h.ChangePassword)
	a.GET("/me/preferences", h.GetPreferences)
	a.PUT("/me/preferences", h.UpdatePreferences)
	a.GET("/me/stats", h.GetStats)
	a.GET("/content-types", h.ListContentTypes)
	a.GET("/llm/status", h.LLMStatus)
	a.GET("/llm/models", h.LLMModels)
	a.POST("/generate", middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil), h.Generate)
	a.POST("/generate/stream", h.GenerateStream)
	a.GET("/sessions", h.ListSessions)
	a.GET("/sessions/:id", h.GetSession)
	a.PUT("/sessions/:id/title", h.RenameSession)
	a.GET("/contents", h.ListContents)
	a.GET("/contents/:id", h.GetContent)
	a.POST("/contents/:id/favorite", h.ToggleFavorite)
	a.DELETE("/contents/:id", h.DeleteContent)

	return &testEnv{db: db, llm: fake, tokens: tokens, r: r}
}

func (e *testEnv) do(method, path, user string, body any, hdr ...string) *httptest.ResponseRecorder {
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

// signUp registers an account through the API and returns it.
func (e *testEnv) signUp(t *testing.T, email string) *domain.User {
	t.Helper()
	w := e.do(http.MethodPost, "/auth/signup", "", SignUpRequest{Email: email, Password: "secret1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: %d %s", email, w.Code, w.Body.String())
	}
	var resp AuthResponse
	decode(t, w, &resp)
	return resp.User
}

// generate creates one history entry through the API.
func (e *testEnv) generate(t *testing.T, user string, req GenerateRequest) services.GenerateResult {
	t.Helper()
	w := e.do(http.MethodPost, "/generate", user, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("generate: %d %s", w.Code, w.Body.String())
	}
	var res services.GenerateResult
	decode(t, w, &res)
	return res
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code, msg string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (%s)", w.Code, status, w.Body.String())
	}
	var e ErrorResponse
	decode(t, w, &e)
	if e.Code != code || (msg != "" && e.Message != msg) || e.RequestID == "" {
		t.Fatalf("error = %+v, want code %q message %q", e, code, msg)
	}
}
