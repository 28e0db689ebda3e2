package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	domainAccount "github.com/noobLue/fullstack5pw/internal/domain/account"
	domainBlog "github.com/noobLue/fullstack5pw/internal/domain/blog"
	usecaseBlog "github.com/noobLue/fullstack5pw/internal/usecase/blog"
)

// OrderedLister returns the ranked blog list.
type OrderedLister interface {
	OrderedList(ctx context.Context) ([]*domainBlog.Blog, error)
}

// BlogHandler serves blog endpoints.
type BlogHandler struct {
	service *usecaseBlog.Service
	ranking OrderedLister
	logger  *slog.Logger
}

// NewBlogHandler creates a new handler.
func NewBlogHandler(service *usecaseBlog.Service, ranking OrderedLister, logger *slog.Logger) *BlogHandler {
	return &BlogHandler{service: service, ranking: ranking, logger: logger}
}

// RegisterRoutes registers blog handlers on the router.
func (h *BlogHandler) RegisterRoutes(r chiRouter) {
	r.Get("/blogs", h.handleList)
	r.Post("/blogs", h.handleCreate)
	r.Get("/blogs/{id}", h.handleGet)
	r.Patch("/blogs/{id}/like", h.handleLike)
	r.Delete("/blogs/{id}", h.handleDelete)
}

type blogOwnerResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type blogResponse struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Author    string            `json:"author"`
	URL       string            `json:"url"`
	Likes     int               `json:"likes"`
	User      blogOwnerResponse `json:"user"`
	CreatedAt time.Time         `json:"created_at"`
}

func toBlogResponse(b *domainBlog.Blog) blogResponse {
	return blogResponse{
		ID:     b.ID.String(),
		Title:  b.Title,
		Author: b.Author,
		URL:    b.URL,
		Likes:  b.Likes,
		User: blogOwnerResponse{
			ID:       b.Owner.ID.String(),
			Username: b.Owner.Username,
			Name:     b.Owner.Name,
		},
		CreatedAt: b.CreatedAt,
	}
}

type createBlogRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
}

func (h *BlogHandler) handleList(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.ranking.OrderedList(r.Context())
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	resp := make([]blogResponse, 0, len(blogs))
	for _, b := range blogs {
		resp = append(resp, toBlogResponse(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BlogHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := blogID(r)
	if !ok {
		writeDomainError(w, r, h.logger, domainBlog.ErrNotFound)
		return
	}
	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBlogResponse(b))
}

func (h *BlogHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())
	if caller.IsAnonymous() {
		writeDomainError(w, r, h.logger, domainAccount.ErrUnauthenticated)
		return
	}
	var req createBlogRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	b, err := h.service.Create(r.Context(), caller, usecaseBlog.CreateParams{
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBlogResponse(b))
}

func (h *BlogHandler) handleLike(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())
	id, ok := blogID(r)
	if !ok {
		if caller.IsAnonymous() {
			writeDomainError(w, r, h.logger, domainAccount.ErrUnauthenticated)
			return
		}
		writeDomainError(w, r, h.logger, domainBlog.ErrNotFound)
		return
	}
	b, err := h.service.Like(r.Context(), caller, id)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBlogResponse(b))
}

func (h *BlogHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r.Context())
	id, ok := blogID(r)
	if !ok {
		if caller.IsAnonymous() {
			writeDomainError(w, r, h.logger, domainAccount.ErrUnauthenticated)
			return
		}
		writeDomainError(w, r, h.logger, domainBlog.ErrNotFound)
		return
	}
	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// blogID parses the {id} URL parameter. Malformed ids cannot name a blog.
func blogID(r *http.Request) (domainBlog.ID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
