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
	"shop-relay/ai"
	"shop-relay/auth"
	"shop-relay/contract"
	grpcserver "shop-relay/infrastructure/grpc/server"
	"shop-relay/infrastructure/httpapi"
	"shop-relay/infrastructure/pubsub"
	"shop-relay/infrastructure/websocket"
	"shop-relay/internal"
	"shop-relay/keywords"
	"shop-relay/observability"
	"shop-relay/repositories"
	"shop-relay/runtime"
	"shop-relay/runtime/workers"
	"shop-relay/services"
	"shop-relay/sink"
	"sync"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/lo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Exit codes give a meaningful status to the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "shop-relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until a signal or a server failure.
// Returning instead of exiting lets the deferred closes run.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Storage
	db, err := badger.Open(buildBadgerOpts(ctx, config, logger))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	var products *ai.ProductContext
	if config.CatalogDSN != "" {
		catalog, err := gorm.Open(sqlite.Open(config.CatalogDSN), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
		if err != nil {
			return exitRuntime, fmt.Errorf("catalog opening failed: %w", err)
		}
		productRepository := repositories.NewProductRepository(catalog)
		if err := productRepository.Migrate(); err != nil {
			return exitRuntime, err
		}
		if sqlDB, err := catalog.DB(); err == nil {
			defer func() {
				logger.Info("Closing product catalog...")
				_ = sqlDB.Close()
			}()
		}
		products = ai.NewProductContext(productRepository, logger, ai.ProductContextTTL)
	} else {
		logger.Warn("No CATALOG_DSN, the bot answers without product context")
	}

	messageRepository := repositories.NewMessageRepository(db, logger, config.LimitMessages)
	messageIndex := repositories.NewMessageIndex(blugeWriter, logger)

	// 3. Text generation
	var generator ai.TextGenerator = ai.DisabledGenerator{}
	if config.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiGenerator(ctx, logger, config.GeminiAPIKey, config.GeminiModel, config.GenerationTimeout)
		if err != nil {
			return exitConfig, fmt.Errorf("gemini client: %w", err)
		}
		defer func() {
			logger.Info("Closing Gemini client...")
			_ = gemini.Close()
		}()
		generator = gemini
	} else {
		logger.Warn("No GEMINI_API_KEY, bot replies are disabled")
	}

	// 4. Metrics
	registerer := prometheus.NewRegistry()
	registerer.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registerer)
	monitor := observability.NewMonitor()

	// 5. Backplane (optional)
	nodeID := uuid.NewString()
	var backplane contract.Backplane
	if config.RedisAddr != "" {
		client, err := pubsub.Connect(ctx, config.RedisAddr)
		if err != nil {
			return exitRuntime, err
		}
		redisBackplane := pubsub.NewRedisBackplane(client, config.RedisChannel, logger)
		defer func() {
			logger.Info("Closing Redis...")
			_ = redisBackplane.Close()
		}()
		backplane = redisBackplane
	}

	// 6. Relay core
	registry := runtime.NewRegistry()
	router := runtime.NewRouter(logger, registry, backplane, nodeID)

	handoff, err := keywords.NewHandoffMatcher()
	if err != nil {
		return exitRuntime, err
	}
	topics, err := keywords.NewTopicMatcher()
	if err != nil {
		return exitRuntime, err
	}

	delivery := workers.NewDelayedDelivery(logger, router, config.DeliveryQueueSize)
	indexSink := sink.NewIndexSink(messageIndex, logger, config.IndexBatchSize, config.IndexBufferTimeout, config.IndexTimeout)
	fanout := workers.NewMessageFanout(logger, config.FanoutQueueSize, indexSink, sink.NewAnalyticsSink(topics, metrics, logger))

	botService := services.NewBotService(logger, messageRepository, ai.NewResponder(generator, products), handoff, delivery, metrics, config.BotQueueSize)
	chatService := services.NewChatService(logger, registry, router, messageRepository, botService, fanout, metrics)
	livestreamService := services.NewLivestreamService(logger, registry, router, metrics)
	signalingService := services.NewSignalingService(logger, router, livestreamService)
	dispatcher := services.NewDispatcher(logger, router, chatService, livestreamService, signalingService, metrics)

	// 7. Supervised workers
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(
		delivery,
		fanout,
		workers.NewHeartbeatWorker(logger, registry, livestreamService, monitor, metrics, config.HeartbeatInterval),
		workers.NewChannelCapacityWorker(logger, []workers.NamedChannel{
			{Name: "bot_jobs", Channel: botService.Jobs()},
			{Name: "message_fanout", Channel: fanout.Queue()},
		}, metrics, config.HeartbeatInterval),
	)
	for range config.BotWorkers {
		sup.Add(workers.NewBotWorker(logger, botService.Jobs(), botService))
	}
	if backplane != nil {
		sup.Add(workers.NewBackplaneSubscriber(logger, backplane, router))
	}

	var supervised sync.WaitGroup
	supervised.Add(1)
	go func() {
		defer supervised.Done()
		logger.Info("Starting workers...")
		sup.Run(ctx)
	}()

	// 8. Servers
	tokens := auth.NewTokens(config.JWTSecret)
	wsServer := websocket.NewServer(logger, registry, dispatcher, tokens, metrics, websocket.Config{
		SendBufferSize:  config.SendBufferSize,
		MaxMessageSize:  int64(config.MaxMessageSize),
		EventsPerSecond: config.EventsPerSecond,
		EventBurst:      config.EventBurst,
		AllowAnonymous:  config.AllowAnonymous,
	})
	if config.AllowAnonymous {
		logger.Warn("ALLOW_ANONYMOUS is on, tokenless connections may claim any identity")
	}

	handler := httpapi.NewHandler(logger, chatService, messageIndex)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:              address,
		Handler:           httpapi.NewRouter(handler, wsServer, tokens, registerer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 3)
	go func() {
		logger.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	var health *grpcserver.HealthServer
	if config.GrpcPort > 0 {
		grpcAddress := fmt.Sprintf("%s:%d", config.Host, config.GrpcPort)
		listener, err := net.Listen("tcp", grpcAddress)
		if err != nil {
			return exitRuntime, fmt.Errorf("failed to listen on %s: %w", grpcAddress, err)
		}
		health = grpcserver.NewHealthServer(logger)
		health.SetServing(true)
		go func() {
			if err := health.Serve(listener); err != nil {
				errChan <- err
			}
		}()
	}

	var debugServer *http.Server
	if config.DebugPort > 0 && logger.Enabled(ctx, slog.LevelDebug) {
		debugServer = internal.NewDebugServer(logger, db, config.DebugPort, internal.ChatMapper, relayStats(monitor))
		logger.Info("Debug Badger inspector available", "url", fmt.Sprintf("http://localhost:%d%s", config.DebugPort, internal.InspectEndpoint))
		go func() {
			if err := debugServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("Debug inspector stopped", "error", err)
			}
		}()
	}

	// 9. Wait for Stop or Error
	code, runErr := exitOK, error(nil)
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errChan:
		code = exitRuntime
	}

	// 10. Graceful shutdown: stop accepting, close connections, drain workers, flush the index.
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	stop()
	if health != nil {
		health.Stop(shutdownCtx)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown incomplete", "error", err)
	}
	wsServer.Shutdown()
	if debugServer != nil {
		_ = debugServer.Shutdown(shutdownCtx)
	}
	sup.Stop()
	supervised.Wait()
	if err := indexSink.Flush(shutdownCtx); err != nil {
		logger.Warn("Last search index flush failed", "error", err)
	}
	logger.Info("Program stopped cleanly")

	return code, runErr
}

func buildBadgerOpts(ctx context.Context, config internal.Config, logger *slog.Logger) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}

func relayStats(monitor *observability.Monitor) internal.StatsProvider {
	return func() map[string]any {
		latest := monitor.GetLatest()
		return map[string]any{
			"connections": latest.Connections,
			"viewers":     latest.Viewers,
			"streaming":   latest.Streaming,
			"likes":       latest.Likes,
			"goroutines":  latest.Process.Goroutines,
			"rss_mb":      latest.Process.RSSMb,
			"cpu_percent": lo.Ternary(latest.Process.SampledAt.IsZero(), "-", fmt.Sprintf("%.1f", latest.Process.CPUPercent)),
		}
	}
}
