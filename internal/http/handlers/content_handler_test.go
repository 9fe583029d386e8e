package handlers

import (
	"net/http"
	"testing"

	"github.com/tbourn/go-content-studio/internal/services"
)

func TestContents_ListFilterSearch(t *testing.T) {
	e := newEnv(t)
	u := e.signUp(t, "hist@example.com")
	blog := e.generate(t, u.ID, GenerateRequest{ContentType: "Blog Post", Prompt: "remote work rituals"})
	ad := e.generate(t, u.ID, GenerateRequest{ContentType: "Ad Content", Prompt: "coffee subscription launch"})

	var all ListContentsResponse
	decode(t, e.do(http.MethodGet, "/contents", u.ID, nil), &all)
	if all.Count != 2 || all.Items[0].ID != ad.Content.ID || all.Items[0].WordCount != 2 {
		t.Fatalf("all = %+v", all)
	}

	var byType ListContentsResponse
	decode(t, e.do(http.MethodGet, "/contents?type=blog+post", u.ID, nil), &byType)
	if byType.Count != 1 || byType.Items[0].ID != blog.Content.ID {
		t.Fatalf("type filter = %+v", byType)
	}

	var found ListContentsResponse
	decode(t, e.do(http.MethodGet, "/contents?q=Coffee&sort=relevance", u.ID, nil), &found)
	if found.Count != 1 || found.Items[0].ID != ad.Content.ID || found.Items[0].Score <= 0 {
		t.Fatalf("search = %+v", found)
	}

	var oldest ListContentsResponse
	decode(t, e.do(http.MethodGet, "/contents?sort=oldest&limit=5", u.ID, nil), &oldest)
	if oldest.Count != 2 || oldest.Items[0].ID != blog.Content.ID {
		t.Fatalf("oldest = %+v", oldest)
	}

	expectError(t, e.do(http.MethodGet, "/contents?sort=random", u.ID, nil),
		http.StatusBadRequest, ErrCodeBadRequest, "sort must be one of recent, oldest, favorites, relevance")

	other := e.signUp(t, "other@example.com")
	var none ListContentsResponse
	decode(t, e.do(http.MethodGet, "/contents", other.ID, nil), &none)
	if none.Count != 0 || none.Items == nil {
		t.Fatalf("other user's history = %+v", none)
	}
}

func TestContents_GetFavoriteDelete(t *testing.T) {
	e := newEnv(t)
	u := e.signUp(t, "fav@example.com")
	res := e.generate(t, u.ID, GenerateRequest{ContentType: "Blog Post", Prompt: "keep me"})
	path := "/contents/" + res.Content.ID

	var item services.ContentItem
	decode(t, e.do(http.MethodGet, path, u.ID, nil), &item)
	if item.ID != res.Content.ID || item.IsFavorite {
		t.Fatalf("item = %+v", item)
	}

	var fav FavoriteResponse
	decode(t, e.do(http.MethodPost, path+"/favorite", u.ID, nil), &fav)
	if !fav.IsFavorite || fav.ID != res.Content.ID {
		t.Fatalf("first toggle = %+v", fav)
	}
	decode(t, e.do(http.MethodPost, path+"/favorite", u.ID, nil), &fav)
	if fav.IsFavorite {
		t.Fatal("second toggle should clear the favorite")
	}

	other := e.signUp(t, "thief@example.com")
	expectError(t, e.do(http.MethodPost, path+"/favorite", other.ID, nil), http.StatusNotFound, ErrCodeNotFound, "content not found")
	expectError(t, e.do(http.MethodGet, path, other.ID, nil), http.StatusNotFound, ErrCodeNotFound, "content not found")
	expectError(t, e.do(http.MethodGet, "/contents/nope", u.ID, nil), http.StatusBadRequest, ErrCodeBadRequest, "content id must be a UUID")

	expectError(t, e.do(http.MethodDelete, path, u.ID, nil), http.StatusNotImplemented, ErrCodeNotImplemented, "deleting content is not supported yet")
	if w := e.do(http.MethodGet, path, u.ID, nil); w.Code != http.StatusOK {
		t.Fatalf("content gone after delete attempt: %d", w.Code)
	}
}
