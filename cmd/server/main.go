package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"harf_sayi/internal/api"
	"harf_sayi/internal/app/service"
	"harf_sayi/internal/common/security"
	"harf_sayi/internal/domain/model"
	"harf_sayi/internal/domain/repository"
	"harf_sayi/internal/platform/config"
	"harf_sayi/internal/platform/database"
	"harf_sayi/internal/platform/queue"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogger(cfg)
	slog.Info("configuration loaded", "driver", cfg.DBDriver, "base_path", cfg.BasePath)

	ctx := context.Background()

	// 2. Initialize Database
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// 3. Initialize Redis (optional)
	rdb, err := queue.ConnectRedis(ctx, cfg)
	if err != nil {
		return err
	}
	var publisher service.ResultPublisher
	if rdb != nil {
		defer rdb.Close()
		publisher = queue.NewResultPublisher(rdb, cfg.ResultsQueueName)
	}

	// 4. Initialize Repositories
	userRepo := repository.NewUserRepository(db)
	resultRepo := repository.NewTestResultRepository(db)

	// 5. Initialize Services
	tokens := security.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTExp)
	authService := service.NewAuthService(userRepo, tokens,
		service.Account{Username: cfg.AdminUsername, Password: cfg.AdminPassword, Role: model.RoleAdmin},
		service.Account{Username: cfg.DemoUsername, Password: cfg.DemoPassword, Role: model.RoleUser},
	)

	// 6. Default accounts must exist before traffic is accepted.
	boot, err := authService.EnsureDefaultUsers(ctx)
	if err != nil {
		return err
	}
	fallbackUserID := cfg.FallbackUserID
	if fallbackUserID == 0 {
		fallbackUserID = boot.Users[1].ID
	}
	slog.Info("default users ready", "created", boot.Created, "fallback_user_id", fallbackUserID)

	resultService := service.NewResultService(resultRepo, publisher, fallbackUserID)

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(cfg, authService, resultService, tokens)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-stop:
	}

	slog.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("server stopped gracefully")
	return nil
}

func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var h slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}
