package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"

	"github.com/jadhavharshh/portfolio-api/internal/db"
	"github.com/jadhavharshh/portfolio-api/internal/models"
)

var validate = validator.New()

// PostStore is the slice of the database layer the post handlers use.
type PostStore interface {
	ListPosts(ctx context.Context) ([]models.PostSummary, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	CreatePost(ctx context.Context, post models.Post) (*models.Post, error)
	UpdatePost(ctx context.Context, slug string, post models.Post) (*models.Post, error)
	DeletePost(ctx context.Context, id int) error
}

type PostsHandler struct {
	store PostStore
	log   *logrus.Logger
}

func NewPostsHandler(store PostStore, log *logrus.Logger) *PostsHandler {
	return &PostsHandler{store: store, log: log}
}

type PostsResponse struct {
	Posts []models.PostSummary `json:"posts"`
}

type PostResponse struct {
	Post *models.Post `json:"post"`
}

type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type CreatePostRequest struct {
	Title   string `json:"title" validate:"required"`
	Slug    string `json:"slug" validate:"required"`
	Excerpt string `json:"excerpt"`
	Content string `json:"content" validate:"required"`
}

type UpdatePostRequest struct {
	Title   string `json:"title" validate:"required"`
	NewSlug string `json:"newSlug"`
	Excerpt string `json:"excerpt"`
	Content string `json:"content" validate:"required"`
}

func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.ListPosts(r.Context())
	if err != nil {
		h.log.WithError(err).Error("list posts")
		respondError(w, http.StatusInternalServerError, "Failed to fetch posts")
		return
	}
	respondJSON(w, http.StatusOK, PostsResponse{Posts: posts})
}

func (h *PostsHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.store.GetPostBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		h.log.WithError(err).Error("get post")
		respondError(w, http.StatusInternalServerError, "Failed to fetch post")
		return
	}
	respondJSON(w, http.StatusOK, PostResponse{Post: post})
}

// Create persists a new post. The submitted slug is normalized to its
// URL-safe form before it is stored.
func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	_, err := h.store.CreatePost(r.Context(), models.Post{
		Title:   req.Title,
		Slug:    slug.Make(req.Slug),
		Excerpt: req.Excerpt,
		Content: req.Content,
	})
	if err != nil {
		h.respondStoreError(w, err, "create post", "Failed to create post")
		return
	}
	respondJSON(w, http.StatusOK, StatusResponse{
		Success: true,
		Message: "Post created successfully!",
	})
}

// Update rewrites the post addressed by the slug in the URL. An omitted
// newSlug keeps the current slug.
func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	newSlug := ""
	if req.NewSlug != "" {
		newSlug = slug.Make(req.NewSlug)
	}
	_, err := h.store.UpdatePost(r.Context(), chi.URLParam(r, "slug"), models.Post{
		Title:   req.Title,
		Slug:    newSlug,
		Excerpt: req.Excerpt,
		Content: req.Content,
	})
	if err != nil {
		h.respondStoreError(w, err, "update post", "Failed to update post")
		return
	}
	respondJSON(w, http.StatusOK, StatusResponse{
		Success: true,
		Message: "Post updated successfully!",
	})
}

func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing or invalid id")
		return
	}
	if err := h.store.DeletePost(r.Context(), id); err != nil {
		h.respondStoreError(w, err, "delete post", "Failed to delete post")
		return
	}
	respondJSON(w, http.StatusOK, StatusResponse{Success: true})
}

// respondStoreError maps the store's error taxonomy to HTTP statuses:
// validation 400, not found 404, slug conflict 409, anything else 500.
func (h *PostsHandler) respondStoreError(w http.ResponseWriter, err error, op, fallback string) {
	var vErr *db.ValidationError
	switch {
	case errors.As(err, &vErr):
		respondError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, db.ErrNotFound):
		respondError(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, db.ErrSlugExists):
		respondError(w, http.StatusConflict, "A post with this slug already exists")
	default:
		h.log.WithError(err).Error(op)
		respondError(w, http.StatusInternalServerError, fallback)
	}
}
