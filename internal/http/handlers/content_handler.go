// Content history HTTP handlers.
//
//   - GET    /contents                 (filter, search, sort)
//   - GET    /contents/{id}
//   - POST   /contents/{id}/favorite   (toggle)
//   - DELETE /contents/{id}            (not implemented yet)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-content-studio/internal/services"
	"github.com/tbourn/go-content-studio/internal/utils"
)

// ListContentsResponse wraps a history listing.
type ListContentsResponse struct {
	Items []services.ContentItem `json:"items"`
	Count int                    `json:"count"`
}

// FavoriteResponse is the favorite state after a toggle.
type FavoriteResponse struct {
	ID         string `json:"id"`
	IsFavorite bool   `json:"is_favorite"`
}

// ListContents godoc
// @ID          listContents
// @Summary     Content history
// @Tags        Contents
// @Produce     json
// @Security    BearerAuth
// @Param       type   query     string  false  "Content type name"  example(Blog Post)
// @Param       q      query     string  false  "Search text"
// @Param       sort   query     string  false  "Order"  Enums(recent, oldest, favorites, relevance) default(recent)
// @Param       limit  query     int     false  "Items considered"  minimum(1) maximum(1000) default(100)
// @Success     200    {object}  handlers.ListContentsResponse
// @Failure     400    {object}  handlers.ErrorResponse  "Unknown sort"
// @Router      /contents [get]
func (h *Handlers) ListContents(c *gin.Context) {
	sortBy, valid := services.ParseContentSort(c.Query("sort"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "sort must be one of recent, oldest, favorites, relevance")
		return
	}
	items, err := h.contents.List(c.Request.Context(), userID(c), services.ContentFilter{
		ContentType: c.Query("type"),
		Query:       c.Query("q"),
		Sort:        sortBy,
		Limit:       utils.ClampLimit(c.Query("limit"), services.DefaultContentLimit, services.MaxContentLimit),
	})
	if err != nil {
		failErr(c, err)
		return
	}
	if items == nil {
		items = []services.ContentItem{}
	}
	ok(c, http.StatusOK, ListContentsResponse{Items: items, Count: len(items)})
}

// GetContent godoc
// @ID          getContent
// @Summary     One history entry
// @Tags        Contents
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Content ID"  format(uuid)
// @Success     200  {object}  services.ContentItem
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /contents/{id} [get]
func (h *Handlers) GetContent(c *gin.Context) {
	id, valid := validID(c, "content")
	if !valid {
		return
	}
	item, err := h.contents.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, item)
}

// ToggleFavorite godoc
// @ID          toggleFavorite
// @Summary     Toggle favorite
// @Tags        Contents
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Content ID"  format(uuid)
// @Success     200  {object}  handlers.FavoriteResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /contents/{id}/favorite [post]
func (h *Handlers) ToggleFavorite(c *gin.Context) {
	id, valid := validID(c, "content")
	if !valid {
		return
	}
	fav, err := h.contents.ToggleFavorite(c.Request.Context(), userID(c), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, FavoriteResponse{ID: id, IsFavorite: fav})
}

// DeleteContent godoc
// @ID          deleteContent
// @Summary     Delete a history entry
// @Description Not available yet; always 501.
// @Tags        Contents
// @Security    BearerAuth
// @Param       id   path      string  true  "Content ID"  format(uuid)
// @Failure     501  {object}  handlers.ErrorResponse
// @Router      /contents/{id} [delete]
func (h *Handlers) DeleteContent(c *gin.Context) {
	id, valid := validID(c, "content")
	if !valid {
		return
	}
	if err := h.contents.Delete(c.Request.Context(), userID(c), id); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
