package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/grocerycalc/internal/config"
	"github.com/dukerupert/grocerycalc/internal/database"
	"github.com/dukerupert/grocerycalc/internal/logging"
	"github.com/dukerupert/grocerycalc/internal/lookup"
	"github.com/dukerupert/grocerycalc/internal/server"
	"github.com/dukerupert/grocerycalc/internal/shopping"
	"github.com/dukerupert/grocerycalc/internal/storage"
	"github.com/dukerupert/grocerycalc/internal/store"
	ws "github.com/dukerupert/grocerycalc/internal/websocket"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "grocerycalc: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	format, err := cfg.Formatter()
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gateway := storage.NewGateway(store.NewBlobStore(db), logger.With("component", "storage"))
	gateway.Start(context.Background())

	hub := ws.NewHub(logger.With("component", "websocket"))
	engine := shopping.New(shopping.Options{
		Persister: gateway,
		Logger:    logger.With("component", "engine"),
		OnChange:  hub.OnChange,
	})
	engine.Load(ctx)

	lookupClient := lookup.NewClient(lookup.Config{
		BaseURL: cfg.LookupURL,
		Timeout: cfg.LookupTimeout,
	}, logger.With("component", "lookup"))

	srv := server.New(server.Deps{
		Engine:      engine,
		Persistence: gateway,
		Lookup:      lookupClient,
		Hub:         hub,
		Format:      format,
		Logger:      logger,
	})
	go srv.RunMaintenance(ctx)

	httpServer := &http.Server{
		Addr:         "localhost:" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("grocerycalc listening", "addr", "http://"+httpServer.Addr, "db", cfg.DBPath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			gateway.Stop()
			return fmt.Errorf("serve: %w", err)
		}
	}

	logger.Info("shutting down")
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if err := gateway.Flush(shutdownCtx); err != nil {
		logger.Warn("pending saves not flushed", "error", err)
	}
	gateway.Stop()
	return nil
}
