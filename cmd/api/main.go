package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/inkwell/inkwell-go/internal/config"
	"github.com/inkwell/inkwell-go/internal/crypto"
	"github.com/inkwell/inkwell-go/internal/handler"
	"github.com/inkwell/inkwell-go/internal/middleware"
	"github.com/inkwell/inkwell-go/internal/repository"
	"github.com/inkwell/inkwell-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := repository.ApplyMigrations(db); err != nil {
		slog.Error("applying migrations failed", "error", err)
		os.Exit(1)
	}

	tokenIssuer := crypto.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	hasher := crypto.NewHasher()

	userRepo := repository.NewUserRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	entryRepo := repository.NewEntryRepository(db)

	authService := service.NewAuthService(userRepo, attemptRepo, hasher, tokenIssuer, service.ThrottlePolicy{
		MaxAttempts: cfg.LoginMaxAttempts,
		Window:      cfg.LoginAttemptWindow,
	})
	entryService := service.NewEntryService(entryRepo)
	exportService := service.NewExportService(entryRepo)

	authHandler := handler.NewAuthHandler(authService)
	entryHandler := handler.NewEntryHandler(entryService)
	exportHandler := handler.NewExportHandler(exportService)

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(5, 10))
		r.Post("/api/v1/auth/register", authHandler.HandleRegister)
		r.Post("/api/v1/auth/login", authHandler.HandleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(tokenIssuer))
		r.Get("/api/v1/auth/me", authHandler.HandleMe)

		r.Post("/api/v1/entries", entryHandler.HandleCreate)
		r.Get("/api/v1/entries", entryHandler.HandleList)
		r.Get("/api/v1/entries/{entry_id}", entryHandler.HandleGet)
		r.Put("/api/v1/entries/{entry_id}", entryHandler.HandleUpdate)
		r.Delete("/api/v1/entries/{entry_id}", entryHandler.HandleDelete)

		r.Get("/api/v1/tags", entryHandler.HandleListTags)
		r.Get("/api/v1/export", exportHandler.HandleExport)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
