package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/openlob/openlob/config"
	"github.com/openlob/openlob/pkg/api"
	"github.com/openlob/openlob/pkg/db/queue"
	"github.com/openlob/openlob/pkg/engine"
	"github.com/openlob/openlob/pkg/feed"
	"github.com/openlob/openlob/pkg/logging"
	"github.com/openlob/openlob/pkg/messaging"
	"github.com/openlob/openlob/pkg/messaging/kafka"
	"github.com/openlob/openlob/pkg/otel"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup logging
	logging.Setup(logging.Config{
		Level:  cfg.Server.LogLevel,
		Pretty: cfg.Server.LogFormat == "pretty",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry
	cleanup, err := otel.Init(otel.Config{
		ServiceName:      api.ServiceName,
		ServiceVersion:   "1.0.0",
		Endpoint:         cfg.Otel.Endpoint,
		CollectorEnabled: cfg.Otel.Enabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize OpenTelemetry")
	}
	defer cleanup()

	if cfg.Otel.Enabled {
		if err := otel.StartRuntimeMetrics(); err != nil {
			log.Warn().Err(err).Msg("Failed to start runtime metrics")
		}
	}

	// The order book everything else hangs off
	book := engine.NewBook()

	// Execution publishing (optional)
	var sender messaging.MessageSender
	if cfg.Kafka.Enabled {
		switch cfg.Kafka.Driver {
		case "sarama":
			sender = queue.NewPooledSender()
		default:
			kafkaSender, err := kafka.NewKafkaMessageSender(cfg.Kafka.BrokerAddr, cfg.Kafka.Topic)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to create Kafka sender")
			}
			defer kafkaSender.Close()
			sender = kafkaSender
		}

		// The consumer is for developer purposes; it pretty prints every
		// execution message landing on the topic.
		var kafkaConsumer *queue.QueueMessageConsumer
		kafkaConsumer, err = kafka.SetupConsumer(ctx, log.Logger)
		if err == nil && kafkaConsumer != nil {
			defer kafkaConsumer.Close()
		}
	}

	// WebSocket broadcast hub
	hub := api.NewHub(book, cfg.Broadcast.DepthInterval, cfg.Broadcast.StatsInterval, cfg.Broadcast.DepthLevels)
	go hub.Run(ctx)

	// External exchange feeds (optional)
	if cfg.Feeds.Enabled {
		feedCfg, err := feed.LoadConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load feed configuration")
		}
		manager := feed.NewManager(book, feedCfg)
		if err := manager.Start(ctx, cfg.Feeds.Exchanges); err != nil {
			log.Fatal().Err(err).Msg("Failed to start exchange feeds")
		}
	}

	// HTTP and WebSocket surface
	handler := api.NewHandler(book, sender, cfg.Book.DefaultDepthLevels, cfg.Book.MaxDepthLevels)
	app := api.NewApp()
	api.SetupRoutes(app, handler, hub, api.RouterConfig{
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimitRPS:     cfg.RateLimit.RPS,
		RateLimitBurst:   cfg.RateLimit.Burst,
	})

	go func() {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("Starting HTTP server")
		if err := app.Listen(cfg.Server.HTTPAddr); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve HTTP")
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh

	log.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")

	// Graceful shutdown: stop broadcasts and feeds, then drain HTTP.
	cancel()
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Server shutdown complete")
}
