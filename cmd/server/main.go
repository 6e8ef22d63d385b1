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

	"github.com/nulzo/prism-fanout/internal/analytics"
	"github.com/nulzo/prism-fanout/internal/cli"
	"github.com/nulzo/prism-fanout/internal/config"
	"github.com/nulzo/prism-fanout/internal/credentials"
	"github.com/nulzo/prism-fanout/internal/gateway"
	"github.com/nulzo/prism-fanout/internal/platform/logger"
	"github.com/nulzo/prism-fanout/internal/platform/otel"
	"github.com/nulzo/prism-fanout/internal/server"
	"github.com/nulzo/prism-fanout/internal/store/sqlite"
	"github.com/nulzo/prism-fanout/internal/version"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	// vendor adapters register their factories in init
	_ "github.com/nulzo/prism-fanout/internal/llm/anthropic"
	_ "github.com/nulzo/prism-fanout/internal/llm/cohere"
	_ "github.com/nulzo/prism-fanout/internal/llm/google"
	_ "github.com/nulzo/prism-fanout/internal/llm/openai"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Initialize(logger.FromConfig(cfg.Log))
	defer logger.Sync()
	log := logger.Get()

	log.Info(cli.Banner("prism-fanout") + " " + version.AppVersion)

	if err := run(cfg, log); err != nil {
		log.Fatal("Server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := otel.InitTracer(cfg.Tracing, log, os.Stdout)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	if cfg.Server.CheckUpdates {
		go func() {
			update, err := version.CheckForUpdates(ctx, version.DefaultReleaseURL, version.AppVersion)
			if err != nil {
				log.Debug("Update check failed", zap.Error(err))
				return
			}
			if update != nil {
				log.Warn(fmt.Sprintf("%s You are running an outdated version", cli.WarningSign()),
					zap.String("current", update.Current),
					zap.String("latest", update.Latest))
			}
		}()
	}

	registry, err := gateway.BootstrapRegistry(cfg.Providers, log)
	if err != nil {
		return fmt.Errorf("bootstrap providers: %w", err)
	}
	resolver := credentials.NewResolver(cfg.FallbackCredentials())

	var (
		sinks []analytics.Sink
		stats analytics.Service
	)

	if cfg.Database.Enabled {
		repo, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open run history: %w", err)
		}
		defer func() {
			_ = repo.Close()
		}()
		sinks = append(sinks, analytics.NewStoreSink(repo))
		stats = analytics.NewService(repo)
	}

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			_ = rdb.Close()
		}()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Warn("Redis unreachable, run events will not be published", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			sinks = append(sinks, analytics.NewRedisSink(rdb, cfg.Redis.Key, cfg.Redis.MaxLen))
		}
	}

	var ingestor analytics.Ingestor
	if len(sinks) > 0 {
		ingestor = analytics.NewIngestor(log, cfg.Analytics, sinks...)
		// the worker outlives ctx so Stop can flush after the server drained
		ingestor.Start(context.Background())
		defer ingestor.Stop()
	}

	service := gateway.NewService(log, registry, resolver, ingestor, cfg.Gateway.ProviderTimeout)
	srv := server.New(cfg, log, service, stats)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("%s Listening on :%s", cli.CheckMark(), cfg.Server.Port),
			zap.Int("providers", registry.Len()),
			zap.Duration("provider_timeout", cfg.Gateway.ProviderTimeout))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	// provider calls are bounded by provider_timeout, give them that long to finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Gateway.ProviderTimeout+5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
