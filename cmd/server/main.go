package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pharmarun/pharmacy-delivery/internal/api"
	"github.com/pharmarun/pharmacy-delivery/internal/core/service"
	"github.com/pharmarun/pharmacy-delivery/internal/core/store"
	"github.com/pharmarun/pharmacy-delivery/internal/infrastructure/queue"
	"github.com/pharmarun/pharmacy-delivery/internal/infrastructure/storage"
	"github.com/pharmarun/pharmacy-delivery/internal/pkg/config"
	"github.com/pharmarun/pharmacy-delivery/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("storage init failed")
	}

	st := store.New(backend, log)
	if err := st.Reindex(ctx); err != nil {
		log.Fatal().Err(err).Msg("initial index build failed")
	}

	// --- Services ---
	userService := service.NewUserService(st, log)
	authService := service.NewAuthService(userService, cfg.JWTSecret, 24*time.Hour)
	productService := service.NewProductService(st, log)
	inventoryService := service.NewInventoryService(st, log)
	notificationService := service.NewNotificationService(st, log)
	cartService := service.NewCartService(st, log)

	dispatcher := queue.NewDispatcher(cfg.NotificationWorkers, notificationService, log)
	dispatcher.Start(ctx)

	orderService := service.NewOrderService(st, inventoryService, dispatcher, log)

	e := api.NewRouter(api.Dependencies{
		Store:         st,
		Backend:       backend,
		Auth:          authService,
		Users:         userService,
		Products:      productService,
		Inventory:     inventoryService,
		Orders:        orderService,
		Carts:         cartService,
		Notifications: notificationService,
		JWTSecret:     cfg.JWTSecret,
		Log:           log,
	})

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("backend", cfg.StorageBackend).
			Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
