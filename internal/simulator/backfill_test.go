package simulator

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"fleet-tracker/internal/geo"
	"fleet-tracker/internal/models"
	"fleet-tracker/internal/utils"
)

func TestBackfill(t *testing.T) {
	box := geo.BoundingBox{LatMin: 10.4, LatMax: 30.5, LngMin: 72.7, LngMax: 85.25}
	testLogger := utils.NewLogger("error", "")
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Window divides evenly into cadence steps", func(t *testing.T) {
		repo := newTestRepo(t)
		cfg := BackfillConfig{
			DeviceCount: 3,
			Start:       start,
			End:         start.Add(100 * time.Minute),
			Cadence:     20 * time.Minute,
			MaxDelta:    0.01,
			BatchSize:   4,
		}
		backfill := NewBackfill(repo, geo.NewWalker(box, rand.New(rand.NewSource(1))), cfg, testLogger)

		if err := backfill.Run(context.Background()); err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		for deviceID := 1; deviceID <= 3; deviceID++ {
			records, err := repo.ListForDevice(deviceID)
			if err != nil {
				t.Fatalf("ListForDevice failed: %v", err)
			}
			if len(records) != 5 {
				t.Errorf("Device %d: expected 5 records for a 100min window at 20min cadence, got %d", deviceID, len(records))
			}
		}
	})

	t.Run("Partial trailing step still produces a record", func(t *testing.T) {
		repo := newTestRepo(t)
		cfg := BackfillConfig{
			DeviceCount: 1,
			Start:       start,
			End:         start.Add(90 * time.Minute),
			Cadence:     20 * time.Minute,
			MaxDelta:    0.01,
			BatchSize:   100,
		}
		backfill := NewBackfill(repo, geo.NewWalker(box, rand.New(rand.NewSource(1))), cfg, testLogger)

		if err := backfill.Run(context.Background()); err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		records, err := repo.ListForDevice(1)
		if err != nil {
			t.Fatalf("ListForDevice failed: %v", err)
		}
		// Timestamps 0, 20, 40, 60 and 80 minutes in.
		if len(records) != 5 {
			t.Errorf("Expected 5 records for a 90min window at 20min cadence, got %d", len(records))
		}
	})

	t.Run("Generated records skip geocoding and stay in bounds", func(t *testing.T) {
		repo := newTestRepo(t)
		cfg := BackfillConfig{
			DeviceCount: 2,
			Start:       start,
			End:         start.Add(60 * time.Minute),
			Cadence:     20 * time.Minute,
			MaxDelta:    0.01,
			BatchSize:   3,
		}
		backfill := NewBackfill(repo, geo.NewWalker(box, rand.New(rand.NewSource(2))), cfg, testLogger)

		if err := backfill.Run(context.Background()); err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		records, err := repo.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(records) == 0 {
			t.Fatal("No records generated")
		}
		for _, location := range records {
			if location.District != nil || location.State != nil {
				t.Errorf("Record %d carries geocode data: district=%v state=%v", location.ID, location.District, location.State)
			}
			if location.Status != models.StatusActive {
				t.Errorf("Record %d status = %q, want %q", location.ID, location.Status, models.StatusActive)
			}
			if !box.Contains(geo.Position{Latitude: location.Latitude, Longitude: location.Longitude}) {
				t.Errorf("Record %d out of bounds: (%f, %f)", location.ID, location.Latitude, location.Longitude)
			}
			timestamp, err := location.Timestamp()
			if err != nil {
				t.Fatalf("Record %d has malformed time %q: %v", location.ID, location.Time, err)
			}
			if timestamp.Before(start) || !timestamp.Before(start.Add(60*time.Minute)) {
				t.Errorf("Record %d outside the window: %s", location.ID, location.Time)
			}
		}
	})

	t.Run("Cancellation aborts the run", func(t *testing.T) {
		repo := newTestRepo(t)
		cfg := BackfillConfig{
			DeviceCount: 1,
			Start:       start,
			End:         start.Add(100 * time.Minute),
			Cadence:     20 * time.Minute,
			MaxDelta:    0.01,
			BatchSize:   100,
		}
		backfill := NewBackfill(repo, geo.NewWalker(box, rand.New(rand.NewSource(3))), cfg, testLogger)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := backfill.Run(ctx); err == nil {
			t.Error("Expected an error from a cancelled run")
		}
	})
}
