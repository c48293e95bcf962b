package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/jadhavharshh/portfolio-api/internal/auth"
	"github.com/jadhavharshh/portfolio-api/internal/config"
	"github.com/jadhavharshh/portfolio-api/internal/db"
	"github.com/jadhavharshh/portfolio-api/internal/handlers"
	appmiddleware "github.com/jadhavharshh/portfolio-api/internal/middleware"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	ctx := context.Background()
	store, err := db.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret)
	creds := auth.Credentials{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appmiddleware.RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CorsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler)

	r.Get("/health", handlers.Health)

	authHandler := handlers.NewAuthHandler(creds, tokens)
	postsHandler := handlers.NewPostsHandler(store, log)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Get("/login", authHandler.Check)
	})

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", postsHandler.List)
		r.Get("/{slug}", postsHandler.GetBySlug)

		// Mutations require a valid admin token.
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.RequireAuth(tokens))
			r.Post("/", postsHandler.Create)
			r.Put("/{slug}", postsHandler.Update)
			r.Delete("/", postsHandler.Delete)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown error: %v", err)
	}
}
