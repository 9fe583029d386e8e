// Account HTTP handlers.
//
//   - POST /auth/signup   (create an account, returns a session token)
//   - POST /auth/signin   (exchange credentials for a session token)
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-content-studio/internal/domain"
)

// SignUpRequest is the sign-up payload. Validation happens in the service
// so clients get its messages ("invalid email format" and so on).
type SignUpRequest struct {
	Email       string  `json:"email" example:"jane@example.com"`
	Password    string  `json:"password" example:"s3cret-pass"`
	DisplayName *string `json:"display_name,omitempty" example:"Jane"`
}

// SignInRequest is the sign-in payload.
type SignInRequest struct {
	Email    string `json:"email" example:"jane@example.com"`
	Password string `json:"password" example:"s3cret-pass"`
}

// AuthResponse carries the account and a bearer token for it.
type AuthResponse struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// SignUp godoc
// @ID          signUp
// @Summary     Create an account
// @Description Registers an email/password account and signs it in.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.SignUpRequest  true  "Credentials"
// @Success     201   {object}  handlers.AuthResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Invalid email or password"
// @Failure     409   {object}  handlers.ErrorResponse  "Email already registered"
// @Router      /auth/signup [post]
func (h *Handlers) SignUp(c *gin.Context) {
	var req SignUpRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.accounts.SignUp(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		failErr(c, err)
		return
	}
	h.respondSession(c, http.StatusCreated, u)
}

// SignIn godoc
// @ID          signIn
// @Summary     Sign in
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.SignInRequest  true  "Credentials"
// @Success     200   {object}  handlers.AuthResponse
// @Failure     401   {object}  handlers.ErrorResponse  "Invalid email or password"
// @Router      /auth/signin [post]
func (h *Handlers) SignIn(c *gin.Context) {
	var req SignInRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.accounts.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failErr(c, err)
		return
	}
	h.respondSession(c, http.StatusOK, u)
}

func (h *Handlers) respondSession(c *gin.Context, status int, u *domain.User) {
	s, err := h.accounts.IssueSession(u)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, status, AuthResponse{User: u, Token: s.Token, ExpiresAt: s.ExpiresAt})
}
