package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-content-studio/internal/auth"
)

// TokenParser verifies a session token. *auth.TokenManager implements it.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Authenticate requires "Authorization: Bearer <token>" and stores the
// token's user id under UserIDKey. Missing, malformed, forged and expired
// tokens are rejected with 401 before the handler runs.
func Authenticate(p TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", `Bearer`)
			abort(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		claims, err := p.Parse(raw)
		if err != nil {
			msg := "invalid session token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "session expired, please sign in again"
			}
			c.Header("WWW-Authenticate", `Bearer error="invalid_token"`)
			abort(c, http.StatusUnauthorized, "unauthorized", msg)
			return
		}
		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

func bearerToken(h string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
