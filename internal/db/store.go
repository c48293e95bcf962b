package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jadhavharshh/portfolio-api/internal/models"
)

var (
	// ErrNotFound means no post matched the given slug or id.
	ErrNotFound = errors.New("post not found")
	// ErrSlugExists means a different post already owns the slug.
	ErrSlugExists = errors.New("slug already exists")
)

// ValidationError reports a missing required field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// uniqueViolation is the SQLSTATE Postgres reports when an insert or
// update breaks a unique constraint.
const uniqueViolation = "23505"

type Store struct {
	pool *pgxpool.Pool
}

// Pool returns the underlying pgxpool.Pool
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate provisions the posts table. Idempotent; runs once at startup
// before the server accepts requests.
func (s *Store) Migrate(ctx context.Context) error {
	const schema = `CREATE TABLE IF NOT EXISTS posts (
	    id SERIAL PRIMARY KEY,
	    title TEXT NOT NULL,
	    slug TEXT UNIQUE NOT NULL,
	    excerpt TEXT,
	    content TEXT NOT NULL,
	    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}
	return nil
}

func (s *Store) ListPosts(ctx context.Context) ([]models.PostSummary, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}

	const query = `
		SELECT
			id,
			title,
			slug,
			COALESCE(excerpt, ''),
			created_at
		FROM posts
		ORDER BY created_at DESC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]models.PostSummary, 0)
	for rows.Next() {
		var post models.PostSummary
		if err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Slug,
			&post.Excerpt,
			&post.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return posts, nil
}

func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}
	const query = `
		SELECT
			id,
			title,
			slug,
			COALESCE(excerpt, ''),
			content,
			created_at,
			updated_at
		FROM posts
		WHERE slug = $1
	`
	var post models.Post
	err := s.pool.QueryRow(ctx, query, slug).Scan(
		&post.ID,
		&post.Title,
		&post.Slug,
		&post.Excerpt,
		&post.Content,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post by slug: %w", err)
	}
	return &post, nil
}

func (s *Store) CreatePost(ctx context.Context, post models.Post) (*models.Post, error) {
	if post.Title == "" {
		return nil, &ValidationError{Field: "title"}
	}
	if post.Slug == "" {
		return nil, &ValidationError{Field: "slug"}
	}
	if post.Content == "" {
		return nil, &ValidationError{Field: "content"}
	}
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}

	const query = `
		INSERT INTO posts (title, slug, excerpt, content)
		VALUES ($1, $2, $3, $4)
		RETURNING
			id,
			title,
			slug,
			COALESCE(excerpt, ''),
			content,
			created_at,
			updated_at
	`
	var created models.Post
	err := s.pool.QueryRow(
		ctx,
		query,
		post.Title,
		post.Slug,
		post.Excerpt,
		post.Content,
	).Scan(
		&created.ID,
		&created.Title,
		&created.Slug,
		&created.Excerpt,
		&created.Content,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &created, nil
}

// UpdatePost rewrites the post currently stored under slug. An empty
// post.Slug keeps the existing slug; updated_at is refreshed
// unconditionally.
func (s *Store) UpdatePost(ctx context.Context, slug string, post models.Post) (*models.Post, error) {
	if post.Title == "" {
		return nil, &ValidationError{Field: "title"}
	}
	if post.Content == "" {
		return nil, &ValidationError{Field: "content"}
	}
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}

	const query = `
		UPDATE posts
		SET
			title = $1,
			slug = COALESCE(NULLIF($2, ''), slug),
			excerpt = $3,
			content = $4,
			updated_at = now()
		WHERE slug = $5
		RETURNING
			id,
			title,
			slug,
			COALESCE(excerpt, ''),
			content,
			created_at,
			updated_at
	`
	var updated models.Post
	err := s.pool.QueryRow(
		ctx,
		query,
		post.Title,
		post.Slug,
		post.Excerpt,
		post.Content,
		slug,
	).Scan(
		&updated.ID,
		&updated.Title,
		&updated.Slug,
		&updated.Excerpt,
		&updated.Content,
		&updated.CreatedAt,
		&updated.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	return &updated, nil
}

// DeletePost removes the post with the given id. Deleting an id that
// does not exist is ErrNotFound rather than a silent success.
func (s *Store) DeletePost(ctx context.Context, id int) error {
	if s.pool == nil {
		return errors.New("db not initialized")
	}
	tag, err := s.pool.Exec(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
