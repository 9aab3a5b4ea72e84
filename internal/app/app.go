package app

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/antonevtu/shortlink/internal/cache"
	"github.com/antonevtu/shortlink/internal/cfg"
	"github.com/antonevtu/shortlink/internal/db"
	"github.com/antonevtu/shortlink/internal/handlers"
	"github.com/antonevtu/shortlink/internal/pool"
	"github.com/antonevtu/shortlink/internal/repository"
	"github.com/antonevtu/shortlink/internal/shortener"
	"github.com/antonevtu/shortlink/internal/sqlite"
)

const shutdownTimeout = 5 * time.Second

// storeCloser is a shortener.Store owned by Run.
type storeCloser interface {
	shortener.Store
	Close()
}

func Run() {
	var cfgApp, err = cfg.New()
	if err != nil {
		log.Fatal(err)
	}

	level, _ := cfgApp.Level()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// select repository
	store, err := newStore(ctx, cfgApp, logger)
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	links, closeLinks, err := newService(ctx, cfgApp, store, logger)
	if err != nil {
		logger.Error("init service", "error", err)
		store.Close()
		os.Exit(1)
	}
	defer closeLinks()

	r := handlers.NewRouter(links, cfgApp, logger)
	httpServer := &http.Server{
		Addr:              cfgApp.ServerAddress,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	// Run server
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server started", "addr", cfgApp.ServerAddress, "base_url", cfgApp.BaseURL)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	signalChan := make(chan os.Signal, 1)

	signal.Notify(
		signalChan,
		syscall.SIGHUP,  // kill -SIGHUP XXXX
		syscall.SIGINT,  // kill -SIGINT XXXX or Ctrl+c
		syscall.SIGTERM, // kill XXXX
		syscall.SIGQUIT, // kill -SIGQUIT XXXX
	)

	select {
	case sig := <-signalChan:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-serverErr:
		logger.Error("http server failed", "error", err)
	}

	gracefulCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err = httpServer.Shutdown(gracefulCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	} else {
		logger.Info("web server gracefully stopped")
	}
}

// newStore picks the store by config: Postgres, then SQLite/libSQL, then in-memory with backup file.
func newStore(ctx context.Context, cfgApp cfg.Config, logger *slog.Logger) (storeCloser, error) {
	switch {
	case cfgApp.DatabaseDSN != "":
		dbPool, err := db.New(ctx, cfgApp.DatabaseDSN, cfgApp.Dedup, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("postgres connected")
		return &dbPool, nil
	case cfgApp.SQLiteDSN != "":
		repo, err := sqlite.New(ctx, cfgApp.SQLiteDSN, cfgApp.Dedup, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("sqlite connected")
		return repo, nil
	default:
		repo, err := repository.New(cfgApp.FileStoragePath, cfgApp.Dedup)
		if err != nil {
			return nil, err
		}
		logger.Info("memory storage restored", "file", cfgApp.FileStoragePath, "records", repo.Len())
		return repo, nil
	}
}

// newService builds the shortener with the optional Redis cache and click pool.
// The returned func drains the pool and closes the cache; call it before closing store.
func newService(ctx context.Context, cfgApp cfg.Config, store shortener.Store, logger *slog.Logger) (*shortener.Service, func(), error) {
	newID, err := shortener.NanoID(cfgApp.ShortIDLength)
	if err != nil {
		return nil, nil, err
	}
	opts := []shortener.Option{
		shortener.WithIDGenerator(newID),
		shortener.WithMaxAttempts(cfgApp.MaxAttempts),
		shortener.WithDedup(cfgApp.Dedup),
		shortener.WithLogger(logger),
	}

	var closers []func()
	if cfgApp.RedisAddr != "" {
		redisCache, err := cache.New(ctx, cfgApp.RedisAddr, cfgApp.CacheTTL, logger)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { _ = redisCache.Close() })
		opts = append(opts, shortener.WithCache(redisCache))
	}

	if cfgApp.AsyncClicks {
		// пул не привязан к ctx запуска, чтобы очередь дописалась при остановке
		clickPool := pool.New(context.WithoutCancel(ctx), store, cfgApp.ClickWorkers, logger)
		closers = append(closers, clickPool.Close)
		opts = append(opts, shortener.WithRecorder(clickPool))
	}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return shortener.New(store, opts...), closeAll, nil
}
