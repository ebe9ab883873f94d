// Command simulate appends one random sale to the shared feed file every
// FEED_INTERVAL until interrupted. Configuration comes from the environment.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/sales-feed-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/sales-feed-service/internal/adapter/kafka"
	"github.com/couchcryptid/sales-feed-service/internal/config"
	"github.com/couchcryptid/sales-feed-service/internal/feed"
	"github.com/couchcryptid/sales-feed-service/internal/observability"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	sink := feed.NewFileSink(cfg.FeedFile, cfg.Location)
	created, err := sink.EnsureHeader()
	if err != nil {
		logger.Error("prepare feed file failed", "path", cfg.FeedFile, "error", err)
		return 1
	}
	logger.Info("feed file ready", "path", cfg.FeedFile, "created", created)

	var opts []feed.Option
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		opts = append(opts, feed.WithPublisher("kafka", publisher))
		logger.Info("kafka fan-out enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	gen := feed.NewGenerator(sink, cfg.FeedInterval, logger, metrics, opts...)
	srv := httpadapter.NewOpsServer(cfg.SimulateAddr, gen, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	exitCode := 0
	if err := gen.Run(ctx); err != nil {
		logger.Error("generator failed", "error", err)
		exitCode = 1
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return exitCode
}
