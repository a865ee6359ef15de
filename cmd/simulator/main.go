package main

import (
	"context"
	"errors"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"fleet-tracker/internal/cache"
	"fleet-tracker/internal/config"
	"fleet-tracker/internal/database"
	"fleet-tracker/internal/events"
	"fleet-tracker/internal/geo"
	"fleet-tracker/internal/geocode"
	"fleet-tracker/internal/repositories"
	"fleet-tracker/internal/simulator"
	"fleet-tracker/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFile)

	db, err := database.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		logger.Fatalf("Failed to open locations database: %v", err)
	}

	repo := repositories.NewLocationRepository(db)

	walker := geo.NewWalker(geo.BoundingBox{
		LatMin: cfg.LatMin,
		LatMax: cfg.LatMax,
		LngMin: cfg.LngMin,
		LngMax: cfg.LngMax,
	}, rand.New(rand.NewSource(time.Now().UnixNano())))

	resolver := geocode.NewResolver(cfg, logger)

	publishers := []events.Publisher{events.NewLogPublisher(logger)}
	if cfg.MQTTEnabled() {
		mqttPublisher, err := events.NewMQTTPublisher(cfg, logger)
		if err != nil {
			logger.Fatalf("Failed to connect to MQTT broker: %v", err)
		}
		publishers = append(publishers, mqttPublisher)
	}
	defer func() {
		for _, publisher := range publishers {
			publisher.Close()
		}
	}()

	var cacheClient *cache.Client
	if cfg.RedisEnabled() {
		cacheClient, err = cache.New(cfg, logger)
		if err != nil {
			logger.Fatalf("Failed to connect to redis: %v", err)
		}
		defer cacheClient.Close()
	}

	live := simulator.NewLive(repo, walker, resolver, publishers, cacheClient, simulator.LiveConfig{
		DeviceCount: cfg.DeviceCount,
		Interval:    cfg.LiveInterval,
		MaxDelta:    cfg.LiveMaxDelta,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := live.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Live simulation failed: %v", err)
	}
}
