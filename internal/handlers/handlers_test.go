package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/jadhavharshh/portfolio-api/internal/auth"
	"github.com/jadhavharshh/portfolio-api/internal/db"
	appmiddleware "github.com/jadhavharshh/portfolio-api/internal/middleware"
	"github.com/jadhavharshh/portfolio-api/internal/models"
)

// fakeStore is an in-memory PostStore with the same error semantics
// as the real one: unique slugs, refreshed updated_at, typed errors.
type fakeStore struct {
	posts  []models.Post
	nextID int
	now    time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID: 1,
		now:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick advances the fake clock so created_at/updated_at ordering is
// observable in tests.
func (f *fakeStore) tick() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func (f *fakeStore) ListPosts(_ context.Context) ([]models.PostSummary, error) {
	out := make([]models.PostSummary, 0, len(f.posts))
	for i := len(f.posts) - 1; i >= 0; i-- {
		p := f.posts[i]
		out = append(out, models.PostSummary{
			ID:        p.ID,
			Title:     p.Title,
			Slug:      p.Slug,
			Excerpt:   p.Excerpt,
			CreatedAt: p.CreatedAt,
		})
	}
	return out, nil
}

func (f *fakeStore) GetPostBySlug(_ context.Context, slug string) (*models.Post, error) {
	for i := range f.posts {
		if f.posts[i].Slug == slug {
			post := f.posts[i]
			return &post, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) CreatePost(_ context.Context, post models.Post) (*models.Post, error) {
	if post.Title == "" {
		return nil, &db.ValidationError{Field: "title"}
	}
	if post.Slug == "" {
		return nil, &db.ValidationError{Field: "slug"}
	}
	if post.Content == "" {
		return nil, &db.ValidationError{Field: "content"}
	}
	for _, p := range f.posts {
		if p.Slug == post.Slug {
			return nil, db.ErrSlugExists
		}
	}
	now := f.tick()
	post.ID = f.nextID
	f.nextID++
	post.CreatedAt = now
	post.UpdatedAt = now
	f.posts = append(f.posts, post)
	created := post
	return &created, nil
}

func (f *fakeStore) UpdatePost(_ context.Context, slug string, post models.Post) (*models.Post, error) {
	if post.Title == "" {
		return nil, &db.ValidationError{Field: "title"}
	}
	if post.Content == "" {
		return nil, &db.ValidationError{Field: "content"}
	}
	var target *models.Post
	for i := range f.posts {
		if f.posts[i].Slug == slug {
			target = &f.posts[i]
			break
		}
	}
	if target == nil {
		return nil, db.ErrNotFound
	}
	newSlug := post.Slug
	if newSlug == "" {
		newSlug = target.Slug
	}
	for i := range f.posts {
		if f.posts[i].Slug == newSlug && f.posts[i].ID != target.ID {
			return nil, db.ErrSlugExists
		}
	}
	target.Title = post.Title
	target.Slug = newSlug
	target.Excerpt = post.Excerpt
	target.Content = post.Content
	target.UpdatedAt = f.tick()
	updated := *target
	return &updated, nil
}

func (f *fakeStore) DeletePost(_ context.Context, id int) error {
	for i := range f.posts {
		if f.posts[i].ID == id {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			return nil
		}
	}
	return db.ErrNotFound
}

const (
	testUsername = "admin"
	testPassword = "secret"
)

// newTestServer builds a router with the same layout as main.go,
// backed by a fake store.
func newTestServer(t *testing.T) (http.Handler, *fakeStore) {
	t.Helper()

	store := newFakeStore()
	log := logrus.New()
	log.SetOutput(io.Discard)

	tokens := auth.NewTokenManager("test-secret")
	creds := auth.Credentials{Username: testUsername, Password: testPassword}

	authHandler := NewAuthHandler(creds, tokens)
	postsHandler := NewPostsHandler(store, log)

	r := chi.NewRouter()
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Get("/login", authHandler.Check)
	})
	r.Route("/posts", func(r chi.Router) {
		r.Get("/", postsHandler.List)
		r.Get("/{slug}", postsHandler.GetBySlug)
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.RequireAuth(tokens))
			r.Post("/", postsHandler.Create)
			r.Put("/{slug}", postsHandler.Update)
			r.Delete("/", postsHandler.Delete)
		})
	})
	return r, store
}

func doRequest(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func loginToken(t *testing.T, h http.Handler) string {
	t.Helper()

	rec := doRequest(t, h, http.MethodPost, "/auth/login", "", `{"username":"admin","password":"secret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d, body %s", rec.Code, rec.Body.String())
	}
	var resp LoginResponse
	decodeBody(t, rec, &resp)
	if resp.Token == "" {
		t.Fatal("login: empty token")
	}
	return resp.Token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}
