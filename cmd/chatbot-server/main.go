// cmd/chatbot-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"platform-chatbot/internal/api"
	"platform-chatbot/internal/chat"
	"platform-chatbot/internal/chat/generator"
	"platform-chatbot/internal/common/config"
	"platform-chatbot/internal/common/database"
	"platform-chatbot/internal/common/logger"
	"platform-chatbot/internal/common/observability"
	"platform-chatbot/internal/store"
	"platform-chatbot/internal/webhook"
	"platform-chatbot/pkg/rulepack"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting chatbot server...",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("address", cfg.Server.Address),
	)

	obs := observability.New("chatbot-server")
	defer obs.Shutdown()

	ctx := context.Background()

	storeOpts := store.Options{
		MaxTurns:      cfg.Storage.Retention.MaxTurns,
		MaxConvs:      cfg.Storage.Retention.MaxConversations,
		IdleTTL:       time.Duration(cfg.Storage.Retention.IdleTTL) * time.Second,
		SweepInterval: time.Duration(cfg.Storage.Retention.SweepInterval) * time.Second,
	}

	var convStore store.ConversationStore
	switch cfg.Storage.Backend {
	case "redis":
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Storage.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		zapLog.Info("Redis connected successfully")
		convStore = store.NewRedisStore(redisClient.Client, storeOpts, log)

	case "postgres":
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Storage.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")
		convStore, err = store.NewPostgresStore(pg.DB, storeOpts, log)
		if err != nil {
			zapLog.Fatal("postgres store init failed", zap.Error(err))
		}

	default:
		convStore = store.NewMemoryStore(storeOpts, log)
		zapLog.Info("Using in-memory conversation store")
	}
	defer convStore.Close()

	cls, err := rulepack.Load(cfg.Chat.RulePackPath)
	if err != nil {
		zapLog.Fatal("rule pack load failed", zap.Error(err))
	}

	var dispatcher *webhook.Dispatcher
	var emitter chat.EventEmitter
	if cfg.Webhook.Enabled {
		dispatcher, err = webhook.NewDispatcher(cfg.Webhook, log)
		if err != nil {
			zapLog.Fatal("webhook dispatcher init failed", zap.Error(err))
		}
		defer dispatcher.Close()
		emitter = dispatcher
		zapLog.Info("Webhook dispatcher started", zap.Int("targets", len(cfg.Webhook.Targets)))
	}

	service := chat.NewService(
		cfg.Chat,
		time.Duration(cfg.Storage.Timeout)*time.Millisecond,
		convStore,
		cls,
		generator.New(),
		emitter,
		obs,
		log,
	)

	handler := api.NewHandler(service, dispatcher, log)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      handler.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("API server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("API server failed", zap.Error(err))
		}
	}()

	// --- Debug & Metrics Server ---
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Debug/Metrics server listening", zap.String("address", cfg.Server.DebugAddress))
		if err := http.ListenAndServe(cfg.Server.DebugAddress, nil); err != nil {
			zapLog.Error("Debug/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down API server", zap.Error(err))
	}

	zapLog.Info("Chatbot server stopped gracefully")
}
