package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/mcpar-land/quill/internal/postservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(svc *postservice.Service, authEnabled bool, token string) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/posts", h.ListPosts)
	r.Get("/posts/{name}", h.GetPost)
	r.Get("/search", h.Search)
	r.Get("/tags", h.Tags)
	r.Get("/tags/{tag}", h.PostsByTag)

	return r
}
