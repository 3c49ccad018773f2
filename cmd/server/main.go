package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"photoshare/internal/api"
	"photoshare/internal/config"
	"photoshare/internal/database"
	"photoshare/internal/logging"
	"photoshare/internal/photos"
	"photoshare/internal/storage"
	"photoshare/internal/users"
	"photoshare/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Dir)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	dbpool, err := database.NewPool(ctx, cfg.DB.Source, cfg.DB.MaxConns, cfg.DB.MinConns)
	if err != nil {
		return err
	}
	defer dbpool.Close()
	logger.Info(ctx, "connected to database")

	if err := database.Migrate(ctx, dbpool); err != nil {
		return err
	}

	images, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	images = storage.Instrument(images)
	logger.Info(ctx, "image storage ready", "backend", cfg.Storage.Backend)

	wsHub := websocket.NewHub(logger)
	go wsHub.Run(ctx)

	store := database.NewStore(dbpool, wsHub)

	photoService, err := photos.NewService(photos.NewPostgresRepository(store), images, logger)
	if err != nil {
		return err
	}

	server, err := api.NewServer(cfg, store, users.NewService(store), photoService, wsHub, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      server.Routes(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "starting server", "addr", cfg.HTTP.Addr, "host", cfg.AppHost)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	return httpServer.Shutdown(shutdownCtx)
}
