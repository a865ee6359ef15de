package simulator

import (
	"context"
	"time"

	"fleet-tracker/internal/geo"
	"fleet-tracker/internal/models"
	"fleet-tracker/internal/repositories"
	"fleet-tracker/internal/utils"
)

// BackfillConfig holds the parameters of one historical generation run.
type BackfillConfig struct {
	DeviceCount int
	Start       time.Time
	End         time.Time
	Cadence     time.Duration
	MaxDelta    float64
	BatchSize   int
}

// Backfill synthesizes a past record stream at high throughput. It never
// resumes from the store and performs no geocoding; district and state
// stay NULL on every generated row.
type Backfill struct {
	repo   repositories.LocationRepository
	walker *geo.Walker
	cfg    BackfillConfig
	logger *utils.Logger
}

// NewBackfill creates a backfill orchestrator.
func NewBackfill(repo repositories.LocationRepository, walker *geo.Walker, cfg BackfillConfig, logger *utils.Logger) *Backfill {
	return &Backfill{repo: repo, walker: walker, cfg: cfg, logger: logger}
}

// Run generates the full window and reports the elapsed wall-clock time.
// A failed batch write aborts the run; the whole window must be rerun.
func (b *Backfill) Run(ctx context.Context) error {
	started := time.Now()

	positions := make(map[int]geo.Position, b.cfg.DeviceCount)
	for deviceID := 1; deviceID <= b.cfg.DeviceCount; deviceID++ {
		positions[deviceID] = b.walker.Initial()
	}

	batch := make([]models.Location, 0, b.cfg.BatchSize)

	for current := b.cfg.Start; current.Before(b.cfg.End); current = current.Add(b.cfg.Cadence) {
		if err := ctx.Err(); err != nil {
			return err
		}

		timestamp := current.Format(models.TimeLayout)
		for deviceID := 1; deviceID <= b.cfg.DeviceCount; deviceID++ {
			positions[deviceID] = b.walker.Step(positions[deviceID], b.cfg.MaxDelta)

			batch = append(batch, models.Location{
				DeviceID:  deviceID,
				Time:      timestamp,
				Latitude:  positions[deviceID].Latitude,
				Longitude: positions[deviceID].Longitude,
				Status:    models.StatusActive,
			})

			if len(batch) >= b.cfg.BatchSize {
				if err := b.repo.CreateBatch(batch); err != nil {
					return err
				}
				b.logger.Infof("Inserted batch of data up to %s", timestamp)
				batch = batch[:0]
			}
		}
	}

	if len(batch) > 0 {
		if err := b.repo.CreateBatch(batch); err != nil {
			return err
		}
		b.logger.Infof("Inserted final batch of %d records", len(batch))
	}

	b.logger.Infof("Backfill completed in %s", time.Since(started).Round(time.Millisecond))
	return nil
}
