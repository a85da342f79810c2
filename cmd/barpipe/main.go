package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quantick/barpipe/internal/bootstrap"
	"github.com/quantick/barpipe/internal/domain/market"
	"github.com/quantick/barpipe/internal/publisher"
	"github.com/quantick/barpipe/internal/server"
	"github.com/quantick/barpipe/internal/symbols"
	"github.com/quantick/barpipe/pkg/config"
	"github.com/quantick/barpipe/pkg/logger"
	"github.com/quantick/barpipe/pkg/questdb"
	"github.com/quantick/barpipe/pkg/redis"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(logger.WithLoggingLevel(logger.Level(cfg.App.LogLevel)))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	questdbClient, err := questdb.NewClient(ctx, cfg.QuestDB)
	if err != nil {
		appLogger.Error(err)
		os.Exit(1)
	}
	defer questdbClient.Close()
	appLogger.Info("QuestDB client connected successfully")

	var redisClient redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(appLogger, &cfg.Redis)
		if err := redisClient.Connect(ctx); err != nil {
			appLogger.Error(err)
			os.Exit(1)
		}
		defer redisClient.Disconnect(context.Background())
		appLogger.Info("Redis client connected successfully")
	}

	var barPublisher market.BarPublisher
	if cfg.BarKafka.Enabled() {
		kafkaPublisher := publisher.NewKafkaPublisher(cfg.BarKafka, appLogger)
		defer kafkaPublisher.Close()
		barPublisher = kafkaPublisher
		appLogger.Info("Kafka bar publisher enabled",
			logger.NewField("topic", cfg.BarKafka.Topic),
			logger.NewField("brokers", len(cfg.BarKafka.Brokers)),
		)
	}

	b := (&bootstrap.Bootstrap{}).Init(bootstrap.BootstrapConfig{
		Config:    cfg,
		Logger:    appLogger,
		QuestDB:   questdbClient,
		Redis:     redisClient,
		Publisher: barPublisher,
	})

	universe, err := resolveUniverse(ctx, &b, cfg)
	if err != nil {
		appLogger.Error(err)
		os.Exit(1)
	}
	appLogger.Info("symbol universe selected", logger.NewField("symbols", len(universe)))

	b.Pipeline.Aggregator.Start(ctx)

	httpServer := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.App.Port),
		Handler: server.New(
			server.Config{DefaultSymbols: universe, SymbolLimit: cfg.Vendor.SymbolLimit},
			b.Pipeline.Aggregator,
			b.Pipeline.Registry,
			b.Usecase.BarUsecase,
			b.Usecase.QuoteUsecase,
			b.ClientFactory(),
			appLogger,
		).Handler(),
	}

	go func() {
		appLogger.Info("HTTP server listening",
			logger.NewField("port", cfg.App.Port),
			logger.NewField("environment", cfg.App.Environment),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(err)
	}

	// Tear subscriber sessions down first so no new ticks arrive, then let
	// the aggregator flush every live bucket.
	b.Pipeline.Registry.TeardownAll()
	b.Pipeline.Aggregator.Stop()

	appLogger.Info("shutdown complete")
}

// resolveUniverse fetches the vendor symbol master and picks the default
// subscription universe. An unreachable symbol master is fatal: without a
// universe the default stream endpoint would serve nothing.
func resolveUniverse(ctx context.Context, b *bootstrap.Bootstrap, cfg *config.Config) ([]string, error) {
	resolveCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	instruments, err := b.Pipeline.Directory.ResolveSymbols(resolveCtx)
	if err != nil {
		return nil, err
	}
	return symbols.SelectUniverse(instruments, cfg.Vendor.SymbolLimit), nil
}
