package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wenlinc/line-todo-bot/internal/api/router"
	appconfig "github.com/wenlinc/line-todo-bot/internal/config"
	"github.com/wenlinc/line-todo-bot/internal/lineapi"
	"github.com/wenlinc/line-todo-bot/internal/observability/metrics"
	"github.com/wenlinc/line-todo-bot/internal/todo"
	"github.com/wenlinc/line-todo-bot/internal/webhook"
	"github.com/wenlinc/line-todo-bot/pkg/logging"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.Info("starting line-todo-bot",
		"env", cfg.Env,
		"port", cfg.Port,
		"todo_backend", cfg.TodoBackend,
		"welcome_delivery", cfg.WelcomeDelivery,
	)

	lineClient, err := lineapi.New(lineapi.Config{
		BaseURL:            cfg.LineAPIBaseURL,
		DataBaseURL:        cfg.LineDataAPIBaseURL,
		ChannelAccessToken: cfg.ChannelAccessToken,
		Timeout:            cfg.DeliveryTimeout,
		Logger:             logger.Logger,
	})
	if err != nil {
		logger.Error("failed to build LINE client", "error", err)
		os.Exit(1)
	}

	todoSource, err := buildTodoSource(cfg, logger)
	if err != nil {
		logger.Error("failed to build to-do source", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	dispatcher := webhook.NewDispatcher(webhook.DispatcherConfig{
		Todos:           todoSource,
		Sender:          lineClient,
		Logger:          logger,
		WelcomePush:     cfg.WelcomeDelivery == appconfig.WelcomeDeliveryPush,
		TodoAppURL:      cfg.TodoAppURL,
		WelcomeImageURL: cfg.WelcomeImageURL,
	})
	webhookHandler := webhook.NewHandler(webhook.HandlerConfig{
		Dispatcher:      dispatcher,
		Logger:          logger,
		Metrics:         webhookMetrics,
		DeliveryTimeout: cfg.DeliveryTimeout,
	})

	r := router.New(&router.Config{
		Logger:         logger,
		WebhookHandler: webhookHandler,
		ChannelSecret:  cfg.ChannelSecret,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func buildTodoSource(cfg *appconfig.Config, logger *logging.Logger) (todo.Source, error) {
	switch cfg.TodoBackend {
	case appconfig.TodoBackendRedis:
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis not reachable at startup", "error", err)
		}
		return todo.NewRedisSource(client, cfg.TodoRedisKey), nil
	default:
		return todo.NewFileSource(cfg.TodoFilePath), nil
	}
}
