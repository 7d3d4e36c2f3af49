package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"google.golang.org/grpc"

	"github.com/rl1809/pizzan/internal/adapter/handler"
	"github.com/rl1809/pizzan/internal/adapter/storage"
	"github.com/rl1809/pizzan/internal/config"
	"github.com/rl1809/pizzan/internal/core/service"
	"github.com/rl1809/pizzan/internal/core/session"
	"github.com/rl1809/pizzan/internal/port"
)

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file merged into the environment")
	migrateOnly := pflag.Bool("migrate", false, "apply MySQL migrations and exit")
	pflag.Parse()

	load := config.Load
	if *migrateOnly {
		load = config.Read
	}
	cfg, err := load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.Log.Level)}))
	slog.SetDefault(logger)

	if err := run(cfg, *migrateOnly, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, migrateOnly bool, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if migrateOnly {
		return migrate(ctx, cfg.Store, logger)
	}

	store, err := storage.Open(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn("closing store", "error", err)
		}
	}()

	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	err = store.Ping(pingCtx)
	pingCancel()
	if err != nil {
		return fmt.Errorf("ping %s store: %w", cfg.Store.Driver, err)
	}
	logger.Info("connected to store", "driver", cfg.Store.Driver)

	var countCache port.FoodCountCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			PoolSize: 20,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			// the count hint is optional; run without it
			logger.Warn("redis unavailable, food count cache disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			countCache = storage.NewRedisAdapter(rdb)
			logger.Info("connected to redis", "addr", cfg.Redis.Addr)
		}
	}

	signer, err := session.NewSigner([]byte(cfg.Auth.Secret), cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	catalog := service.NewCatalogService(store, countCache, logger)
	carts := service.NewCartService(store)
	users := service.NewUserService(store)

	var grpcServer *grpc.Server
	if addr := cfg.HTTP.GRPCAddr(); addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen grpc: %w", err)
		}
		grpcServer = grpc.NewServer()
		handler.RegisterCatalogServer(grpcServer, handler.NewGRPCHandler(catalog, logger))

		go func() {
			logger.Info("gRPC server listening", "addr", addr)
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC server error", "error", err)
			}
		}()
	}

	httpHandler := handler.NewHTTPHandler(catalog, carts, users, signer, handler.Options{
		CookieSecure: cfg.Auth.CookieSecure,
		CORSOrigins:  cfg.HTTP.CORSOrigins,
		Logger:       logger,
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           httpHandler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	runErr := waitForStop(quit, serveErr)
	if runErr != nil {
		logger.Error("HTTP server error", "error", runErr)
	}

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown", "error", err)
	}
	logger.Info("HTTP server stopped")

	if grpcServer != nil {
		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")
	}
	return runErr
}

// waitForStop blocks until a shutdown signal or a serve failure. Only the
// latter is returned as an error.
func waitForStop(quit <-chan os.Signal, serveErr <-chan error) error {
	select {
	case <-quit:
		return nil
	case err := <-serveErr:
		return fmt.Errorf("serve http: %w", err)
	}
}

func migrate(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) error {
	if cfg.Driver != config.DriverMySQL {
		return fmt.Errorf("--migrate only applies to the mysql driver, not %q", cfg.Driver)
	}
	cfg.AutoMigrate = true

	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return store.Close(ctx)
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
