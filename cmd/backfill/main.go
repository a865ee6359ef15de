package main

import (
	"context"
	"errors"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"fleet-tracker/internal/config"
	"fleet-tracker/internal/database"
	"fleet-tracker/internal/geo"
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

	start, end := cfg.BackfillWindow(time.Now())
	logger.Infof("Backfilling %d devices from %s to %s at %s cadence",
		cfg.DeviceCount, start.Format(time.DateOnly), end.Format(time.DateOnly), cfg.BackfillCadence)

	backfill := simulator.NewBackfill(repo, walker, simulator.BackfillConfig{
		DeviceCount: cfg.DeviceCount,
		Start:       start,
		End:         end,
		Cadence:     cfg.BackfillCadence,
		MaxDelta:    cfg.BackfillMaxDelta,
		BatchSize:   cfg.BackfillBatchSize,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := backfill.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Backfill failed: %v", err)
	}
}
