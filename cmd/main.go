package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"alert-service/internal/api"
	"alert-service/internal/config"
	"alert-service/internal/enrichment"
	"alert-service/internal/kafka"
	"alert-service/internal/logging"
	"alert-service/internal/market"
	"alert-service/internal/notification"
	"alert-service/internal/repository"
	"alert-service/internal/service"
	"alert-service/internal/storage"
	"alert-service/internal/ws"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// Select storage backend
	var backend storage.Backend
	if cfg.DB.DSN != "" {
		pg, err := storage.NewPostgres(cfg.DB.DSN)
		if err != nil {
			logger.Errorf("Failed to connect to database: %v", err)
			log.Fatalf("Database connection failed: %v", err)
		}
		defer pg.Close()
		backend = pg
	} else {
		logger.Warnf("DB_DSN not set, using in-memory backend")
		backend = storage.NewMemory()
	}

	repo, err := repository.New(backend, logger)
	if err != nil {
		log.Fatalf("Repository init failed: %v", err)
	}

	// Market source: Kafka-fed cache over the HTTP client
	var fallback market.Source
	if cfg.Market.BaseURL != "" {
		fallback = market.NewClient(cfg.Market.BaseURL, cfg.Market.Timeout, cfg.Market.RatePerSecond)
	}
	cache := market.NewCache(fallback, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Kafka.Broker != "" {
		consumer := kafka.NewConsumer([]string{cfg.Kafka.Broker}, cfg.Kafka.Topic, cfg.Kafka.GroupID, cache, logger)
		defer consumer.Close()
		go consumer.Start(ctx)
		logger.Infof("Kafka consumer initialized with topic: %s", cfg.Kafka.Topic)
	}

	// Pipeline
	hub := ws.NewHub(logger)
	enricher := enrichment.New(cache, logger)
	notifier := notification.New(config.Load, logger)
	pipeline := service.New(repo, enricher, notifier, config.Load, hub, logger)
	go pipeline.Run(ctx, cfg.Scheduler.Interval)

	// API server
	handler := api.NewHandler(repo, hub, logger)
	router := api.NewRouter(cfg, handler, logger)
	go func() {
		logger.Infof("Starting API server on %s", cfg.API.Port)
		if err := router.Run(cfg.API.Port); err != nil {
			logger.Errorf("API server failed: %v", err)
		}
	}()

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	logger.Infof("Shutting down...")
	cancel()
	logger.Infof("Service stopped")
}
