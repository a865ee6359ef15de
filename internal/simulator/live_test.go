package simulator

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"fleet-tracker/internal/events"
	"fleet-tracker/internal/geo"
	"fleet-tracker/internal/geocode"
	"fleet-tracker/internal/models"
	"fleet-tracker/internal/repositories"
	"fleet-tracker/internal/utils"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) repositories.LocationRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to access underlying database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Location{}); err != nil {
		t.Fatalf("Failed to migrate schema: %v", err)
	}
	return repositories.NewLocationRepository(db)
}

// stubResolver avoids network calls in tests.
type stubResolver struct {
	result geocode.Result
}

func (r stubResolver) Resolve(ctx context.Context, lat, lng float64) geocode.Result {
	return r.result
}

func newTestLive(repo repositories.LocationRepository, cfg LiveConfig) *Live {
	walker := geo.NewWalker(
		geo.BoundingBox{LatMin: 10.4, LatMax: 30.5, LngMin: 72.7, LngMax: 85.25},
		rand.New(rand.NewSource(7)),
	)
	testLogger := utils.NewLogger("error", "")
	resolver := stubResolver{result: geocode.Result{District: "Pune", State: "Maharashtra"}}
	return NewLive(repo, walker, resolver, []events.Publisher{events.NewLogPublisher(testLogger)}, nil, cfg, testLogger)
}

func TestLive(t *testing.T) {
	t.Run("Fresh start seeds active devices inside the box", func(t *testing.T) {
		repo := newTestRepo(t)
		live := newTestLive(repo, LiveConfig{DeviceCount: 5, MaxDelta: 0.25})

		if err := live.initialize(); err != nil {
			t.Fatalf("initialize failed: %v", err)
		}

		for deviceID := 1; deviceID <= 5; deviceID++ {
			position, ok := live.positions[deviceID]
			if !ok {
				t.Fatalf("Device %d has no seeded position", deviceID)
			}
			if !live.walker.Box().Contains(position) {
				t.Errorf("Device %d seeded out of bounds: %+v", deviceID, position)
			}
			if live.statuses[deviceID] != models.StatusActive {
				t.Errorf("Device %d status = %q, want %q", deviceID, live.statuses[deviceID], models.StatusActive)
			}
		}
	})

	t.Run("Restart resumes position and status from the store", func(t *testing.T) {
		repo := newTestRepo(t)
		prior := models.Location{
			DeviceID:  7,
			Time:      "2020-06-01 12:00:00",
			Latitude:  20.0,
			Longitude: 80.0,
			Status:    "Maintenance",
		}
		if err := repo.Create(&prior); err != nil {
			t.Fatalf("Failed to seed store: %v", err)
		}

		live := newTestLive(repo, LiveConfig{DeviceCount: 7, MaxDelta: 0.25})
		if err := live.initialize(); err != nil {
			t.Fatalf("initialize failed: %v", err)
		}
		live.tick(context.Background())

		latest, err := repo.LatestForDevice(7)
		if err != nil {
			t.Fatalf("LatestForDevice failed: %v", err)
		}
		if latest.Status != "Maintenance" {
			t.Errorf("Expected resumed status 'Maintenance', got %q", latest.Status)
		}
		if math.Abs(latest.Latitude-20.0) > 0.25 {
			t.Errorf("Latitude jumped %f from resume point", latest.Latitude-20.0)
		}
		if math.Abs(latest.Longitude-80.0) > 0.25 {
			t.Errorf("Longitude jumped %f from resume point", latest.Longitude-80.0)
		}
	})

	t.Run("Tick appends one record per device", func(t *testing.T) {
		repo := newTestRepo(t)
		live := newTestLive(repo, LiveConfig{DeviceCount: 4, MaxDelta: 0.25})

		if err := live.initialize(); err != nil {
			t.Fatalf("initialize failed: %v", err)
		}
		live.tick(context.Background())
		live.tick(context.Background())

		for deviceID := 1; deviceID <= 4; deviceID++ {
			records, err := repo.ListForDevice(deviceID)
			if err != nil {
				t.Fatalf("ListForDevice failed: %v", err)
			}
			if len(records) != 2 {
				t.Errorf("Device %d: expected 2 records, got %d", deviceID, len(records))
			}
			for _, location := range records {
				if location.District == nil || *location.District != "Pune" {
					t.Errorf("Device %d: unexpected district %v", deviceID, location.District)
				}
				if location.State == nil || *location.State != "Maharashtra" {
					t.Errorf("Device %d: unexpected state %v", deviceID, location.State)
				}
			}
		}
	})

	t.Run("External status change survives the next tick", func(t *testing.T) {
		repo := newTestRepo(t)
		live := newTestLive(repo, LiveConfig{DeviceCount: 3, MaxDelta: 0.25})

		if err := live.initialize(); err != nil {
			t.Fatalf("initialize failed: %v", err)
		}
		live.tick(context.Background())

		// Mutation through the HTTP layer while the loop sleeps.
		if err := repo.UpdateStatus(2, "Inactive"); err != nil {
			t.Fatalf("UpdateStatus failed: %v", err)
		}

		live.refreshStatuses()
		live.tick(context.Background())

		latest, err := repo.LatestForDevice(2)
		if err != nil {
			t.Fatalf("LatestForDevice failed: %v", err)
		}
		if latest.Status != "Inactive" {
			t.Errorf("Status mutation was reverted: got %q", latest.Status)
		}

		other, err := repo.LatestForDevice(1)
		if err != nil {
			t.Fatalf("LatestForDevice failed: %v", err)
		}
		if other.Status != models.StatusActive {
			t.Errorf("Device 1 status changed unexpectedly: %q", other.Status)
		}
	})
}
