package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/searchkit/termindex/internal/catalog"
	"github.com/searchkit/termindex/internal/index"
	"github.com/searchkit/termindex/internal/ingest"
	"github.com/searchkit/termindex/pkg/config"
	"github.com/searchkit/termindex/pkg/health"
	"github.com/searchkit/termindex/pkg/kafka"
	"github.com/searchkit/termindex/pkg/logger"
	"github.com/searchkit/termindex/pkg/metrics"
	"github.com/searchkit/termindex/pkg/postgres"
	"github.com/searchkit/termindex/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting indexing service", "redis_addr", cfg.Redis.Addr)

	store, err := redis.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checker := health.NewChecker()
	checker.Register("redis", health.PingCheck(store.Ping))

	var cat *catalog.Catalog
	if cfg.Postgres.Enabled {
		db, err := postgres.New(cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		cat = catalog.New(db)
		if err := cat.EnsureSchema(ctx); err != nil {
			slog.Error("failed to ensure catalog schema", "error", err)
			os.Exit(1)
		}
		checker.Register("postgres", health.PingCheck(db.DB.PingContext))
		slog.Info("document catalog enabled", "host", cfg.Postgres.Host)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdown := metrics.StartServer(cfg.Metrics.Port, checker)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown failed", "error", err)
			}
		}()
	}

	writer := index.NewWriter(store, m)
	handler := ingest.HandleMessage(writer, cat, cfg.Ingest, m)
	consumer := ingest.New(kafka.NewConsumer(cfg.Kafka, cfg.Kafka.IngestTopic, handler))

	slog.Info("indexing service ready, consuming from kafka",
		"topic", cfg.Kafka.IngestTopic,
		"group", cfg.Kafka.ConsumerGroup,
	)

	if err := consumer.Start(ctx); err != nil {
		slog.Error("consumer error", "error", err)
	}

	slog.Info("indexing service stopped")
}
