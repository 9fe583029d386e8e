// Profile HTTP handlers.
//
//   - GET   /me                (account of the caller)
//   - PATCH /me                (display name, picture URL)
//   - PUT   /me/password       (change password)
//   - GET   /me/preferences    (defaults when never saved)
//   - PUT   /me/preferences    (partial update)
//   - GET   /me/stats          (profile statistics)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-content-studio/internal/services"
)

// UpdateProfileRequest sets the given fields; an empty string clears one.
type UpdateProfileRequest struct {
	DisplayName       *string `json:"display_name,omitempty" example:"Jane D."`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty" example:"https://example.com/jane.png"`
}

// ChangePasswordRequest is the profile password form.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// UpdatePreferencesRequest changes only the fields present.
type UpdatePreferencesRequest struct {
	DefaultTone   *string `json:"default_tone,omitempty" example:"casual"`
	DefaultLength *string `json:"default_length,omitempty" example:"short"`
	Theme         *string `json:"theme,omitempty" example:"dark"`
}

// GetMe godoc
// @ID          getMe
// @Summary     Current account
// @Tags        Profile
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  domain.User
// @Failure     401  {object}  handlers.ErrorResponse
// @Router      /me [get]
func (h *Handlers) GetMe(c *gin.Context) {
	u, err := h.accounts.GetUser(c.Request.Context(), userID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// UpdateMe godoc
// @ID          updateMe
// @Summary     Update profile
// @Tags        Profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.UpdateProfileRequest  true  "Fields to change"
// @Success     200   {object}  domain.User
// @Failure     400   {object}  handlers.ErrorResponse
// @Router      /me [patch]
func (h *Handlers) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.accounts.UpdateProfile(c.Request.Context(), userID(c), req.DisplayName, req.ProfilePictureURL)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// ChangePassword godoc
// @ID          changePassword
// @Summary     Change password
// @Description Requires the current password and the new one typed twice.
// @Tags        Profile
// @Accept      json
// @Security    BearerAuth
// @Param       body  body  handlers.ChangePasswordRequest  true  "Password form"
// @Success     204
// @Failure     400  {object}  handlers.ErrorResponse  "Missing fields or mismatch"
// @Failure     401  {object}  handlers.ErrorResponse  "Current password is incorrect"
// @Router      /me/password [put]
func (h *Handlers) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.accounts.ChangePasswordConfirmed(c.Request.Context(), userID(c),
		req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// GetPreferences godoc
// @ID          getPreferences
// @Summary     Generation defaults and theme
// @Tags        Profile
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  domain.UserPreferences
// @Router      /me/preferences [get]
func (h *Handlers) GetPreferences(c *gin.Context) {
	p, err := h.prefs.Get(c.Request.Context(), userID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// UpdatePreferences godoc
// @ID          updatePreferences
// @Summary     Update preferences
// @Description Fields left out keep their stored value.
// @Tags        Profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.UpdatePreferencesRequest  true  "Fields to change"
// @Success     200   {object}  domain.UserPreferences
// @Failure     400   {object}  handlers.ErrorResponse  "Unknown tone, length or theme"
// @Router      /me/preferences [put]
func (h *Handlers) UpdatePreferences(c *gin.Context) {
	var req UpdatePreferencesRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.prefs.Update(c.Request.Context(), userID(c), services.PreferencesInput{
		DefaultTone:   req.DefaultTone,
		DefaultLength: req.DefaultLength,
		Theme:         req.Theme,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// GetStats godoc
// @ID          getStats
// @Summary     Profile statistics
// @Tags        Profile
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  services.ProfileStats
// @Router      /me/stats [get]
func (h *Handlers) GetStats(c *gin.Context) {
	s, err := h.stats.Profile(c.Request.Context(), userID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, s)
}
