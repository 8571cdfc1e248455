package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kartikbazzad/bunbase/bunquery"
	"github.com/kartikbazzad/bunbase/bunquery/internal/config"
	"github.com/kartikbazzad/bunbase/bunquery/internal/handlers"
	"github.com/kartikbazzad/bunbase/bunquery/internal/logger"
	"github.com/kartikbazzad/bunbase/bunquery/memdoc"
	"github.com/kartikbazzad/bunbase/bunquery/sqlitedoc"
)

func main() {
	port := flag.String("port", "", "Server port (overrides config)")
	driver := flag.String("store-driver", "", "Collection backend: memory or sqlite (overrides config)")
	storePath := flag.String("store-path", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *driver != "" {
		cfg.Store.Driver = *driver
	}
	if *storePath != "" {
		cfg.Store.Path = *storePath
	}

	logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log := logger.Component("server")

	resolve, cleanup, err := newResolver(cfg)
	if err != nil {
		log.Error("failed to open store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	handler, err := handlers.NewQueryHandler(bunquery.NewService(), resolve)
	if err != nil {
		log.Error("failed to build handler", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: handlers.NewRouter(cfg, handler),
	}

	go func() {
		log.Info("bunquery server listening", "port", cfg.Server.Port, "driver", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "error", err)
	}
}

// newResolver opens the configured backend and returns the collection
// resolver plus a cleanup func.
func newResolver(cfg *config.Config) (handlers.CollectionResolver, func(), error) {
	switch cfg.Store.Driver {
	case "sqlite":
		store, err := sqlitedoc.Open(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		resolve := func(name string) handlers.DocumentCollection {
			return store.Collection(name)
		}
		return resolve, func() { store.Close() }, nil
	default:
		store := memdoc.NewStore()
		resolve := func(name string) handlers.DocumentCollection {
			return store.Collection(name)
		}
		return resolve, func() {}, nil
	}
}
