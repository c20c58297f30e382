package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/maren/photorestore/internal/config"
	"github.com/maren/photorestore/internal/firebaseauth"
	"github.com/maren/photorestore/internal/handler"
	"github.com/maren/photorestore/internal/replicate"
	"github.com/maren/photorestore/internal/repository"
	"github.com/maren/photorestore/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := sqlx.Connect("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelMigrate()
	if err := repository.Migrate(migrateCtx, db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	slog.Info("database connected")

	userRepo := repository.NewUserRepository(db)
	txnRepo := repository.NewTransactionRepository(db)

	var verifier firebaseauth.Verifier
	if cfg.FirebaseProjectID != "" {
		verifier = firebaseauth.NewTokenVerifier(cfg.FirebaseProjectID)
	} else {
		slog.Warn("FIREBASE_PROJECT_ID not set, authentication is disabled")
	}

	if cfg.PaddleWebhookSecret == "" {
		slog.Warn("PADDLE_WEBHOOK_SECRET not set, webhook signatures are not verified")
	}

	userSvc := service.NewUserService(userRepo)
	creditSvc := service.NewCreditService(userRepo)
	paymentSvc := service.NewPaymentService(txnRepo)
	predictionSvc := service.NewPredictionService(
		replicate.NewClient(cfg.ReplicateAPIToken),
		cfg.ReplicateModel,
		cfg.WebhookHost,
	)

	validate := handler.NewValidator()
	userHandler := handler.NewUserHandler(userSvc, validate)
	creditHandler := handler.NewCreditHandler(creditSvc, validate)
	predictionHandler := handler.NewPredictionHandler(predictionSvc)
	webhookHandler := handler.NewWebhookHandler(paymentSvc, cfg.PaddleWebhookSecret)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(handler.RequestLogger)
	r.Use(handler.Recover)
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		handler.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// Public: package catalog and provider callbacks.
		r.Get("/credits", creditHandler.Packages)
		r.Route("/webhooks", func(r chi.Router) {
			r.Get("/paddle", webhookHandler.Alive)
			r.Post("/paddle", webhookHandler.HandlePaddle)
			r.Post("/replicate", predictionHandler.ReplicateWebhook)
		})

		// Everything else requires a Firebase ID token (when configured).
		r.Group(func(r chi.Router) {
			r.Use(handler.RequireAuth(verifier))

			r.Post("/users", userHandler.SignIn)
			r.Get("/users", userHandler.Get)
			r.Post("/credits", creditHandler.Purchase)
			r.Patch("/credits", creditHandler.Spend)
			r.Post("/predictions", predictionHandler.Create)
			r.Get("/predictions/{id}", predictionHandler.Get)
		})
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
