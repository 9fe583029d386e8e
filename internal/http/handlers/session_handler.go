// Session HTTP handlers.
//
//   - GET /sessions              (list, ETag support)
//   - GET /sessions/{id}         (session with its messages)
//   - PUT /sessions/{id}/title   (rename)
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-content-studio/internal/domain"
	"github.com/tbourn/go-content-studio/internal/utils"
)

// RenameSessionRequest is the rename payload.
type RenameSessionRequest struct {
	Title string `json:"title" example:"Remote work series"`
}

// ListSessionsResponse wraps a session listing.
type ListSessionsResponse struct {
	Sessions []domain.ChatSession `json:"sessions"`
}

func validID(c *gin.Context, what string) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, what+" id must be a UUID")
		return "", false
	}
	return id, true
}

// ListSessions godoc
// @ID          listSessions
// @Summary     List chat sessions
// @Description Most recently active first. Supports If-None-Match.
// @Tags        Sessions
// @Produce     json
// @Security    BearerAuth
// @Param       limit  query     int  false  "Max sessions"  minimum(1) maximum(1000) default(50)
// @Success     200    {object}  handlers.ListSessionsResponse
// @Header      200    {string}  ETag  "Weak validator of the listing"
// @Router      /sessions [get]
func (h *Handlers) ListSessions(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	limit := utils.ClampLimit(c.Query("limit"), 50, 1000)

	// ETag pre-check (best effort).
	if count, latest, err := h.sessions.Stats(ctx, uid); err == nil {
		var ts int64
		if latest != nil {
			ts = latest.UnixNano()
		}
		etag := fmt.Sprintf(`W/"sessions:%d:%d:%d"`, count, ts, limit)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	list, err := h.sessions.List(ctx, uid, limit)
	if err != nil {
		failErr(c, err)
		return
	}
	if list == nil {
		list = []domain.ChatSession{}
	}
	ok(c, http.StatusOK, ListSessionsResponse{Sessions: list})
}

// GetSession godoc
// @ID          getSession
// @Summary     Open a chat session
// @Tags        Sessions
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Session ID"  format(uuid)
// @Success     200  {object}  services.SessionDetail
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /sessions/{id} [get]
func (h *Handlers) GetSession(c *gin.Context) {
	id, valid := validID(c, "session")
	if !valid {
		return
	}
	d, err := h.sessions.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, d)
}

// RenameSession godoc
// @ID          renameSession
// @Summary     Rename a chat session
// @Tags        Sessions
// @Accept      json
// @Security    BearerAuth
// @Param       id    path  string                          true  "Session ID"  format(uuid)
// @Param       body  body  handlers.RenameSessionRequest  true  "New title"
// @Success     204
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /sessions/{id}/title [put]
func (h *Handlers) RenameSession(c *gin.Context) {
	id, valid := validID(c, "session")
	if !valid {
		return
	}
	var req RenameSessionRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.sessions.Rename(c.Request.Context(), userID(c), id, req.Title); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
