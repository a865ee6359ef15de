package simulator

import (
	"context"
	"time"

	"fleet-tracker/internal/cache"
	"fleet-tracker/internal/events"
	"fleet-tracker/internal/geo"
	"fleet-tracker/internal/geocode"
	"fleet-tracker/internal/models"
	"fleet-tracker/internal/repositories"
	"fleet-tracker/internal/repositories/base"
	"fleet-tracker/internal/utils"
)

// GeocodeResolver resolves a coordinate to administrative names.
type GeocodeResolver interface {
	Resolve(ctx context.Context, lat, lng float64) geocode.Result
}

// LiveConfig holds the live loop parameters.
type LiveConfig struct {
	DeviceCount int
	Interval    time.Duration
	MaxDelta    float64
}

// Live drives the real-time simulation: every tick it advances each
// device's position, reverse-geocodes it and appends a record. Devices
// are swept strictly sequentially, so one slow geocode delays the rest
// of the sweep.
type Live struct {
	repo       repositories.LocationRepository
	walker     *geo.Walker
	resolver   GeocodeResolver
	publishers []events.Publisher
	cache      *cache.Client // optional
	cfg        LiveConfig
	logger     *utils.Logger

	positions map[int]geo.Position
	statuses  map[int]string
}

// NewLive creates a live simulation loop. cache may be nil.
func NewLive(
	repo repositories.LocationRepository,
	walker *geo.Walker,
	resolver GeocodeResolver,
	publishers []events.Publisher,
	cacheClient *cache.Client,
	cfg LiveConfig,
	logger *utils.Logger,
) *Live {
	return &Live{
		repo:       repo,
		walker:     walker,
		resolver:   resolver,
		publishers: publishers,
		cache:      cacheClient,
		cfg:        cfg,
		logger:     logger,
		positions:  make(map[int]geo.Position),
		statuses:   make(map[int]string),
	}
}

// Run resumes device state from the store and ticks until ctx is
// cancelled. That cancellation is the loop's only exit path.
func (s *Live) Run(ctx context.Context) error {
	if err := s.initialize(); err != nil {
		return err
	}

	var statusCh <-chan cache.StatusChange
	if s.cache != nil {
		statusCh = s.cache.SubscribeStatusChanges(ctx)
	}

	s.logger.Infof("Live simulation started for %d devices (interval %s)", s.cfg.DeviceCount, s.cfg.Interval)

	for {
		s.refreshStatuses()
		s.drainStatusChanges(statusCh)
		s.tick(ctx)

		select {
		case <-ctx.Done():
			s.logger.Infof("Live simulation stopped")
			return ctx.Err()
		case <-time.After(s.cfg.Interval):
		}
	}
}

// initialize seeds per-device position and status from the most recent
// stored record, falling back to a fresh initial position and "Active".
func (s *Live) initialize() error {
	for deviceID := 1; deviceID <= s.cfg.DeviceCount; deviceID++ {
		latest, err := s.repo.LatestForDevice(deviceID)
		switch {
		case err == nil:
			s.positions[deviceID] = geo.Position{Latitude: latest.Latitude, Longitude: latest.Longitude}
			s.statuses[deviceID] = latest.Status
		case base.IsEntityNotFound(err):
			s.positions[deviceID] = s.walker.Initial()
			s.statuses[deviceID] = models.StatusActive
		default:
			return err
		}
	}
	return nil
}

// refreshStatuses re-reads per-device status from the store so a status
// mutated through the HTTP layer is carried forward instead of being
// overwritten with a stale value on the next append.
func (s *Live) refreshStatuses() {
	latest, err := s.repo.LatestPerDevice()
	if err != nil {
		s.logger.Warnf("Failed to refresh device statuses: %v", err)
		return
	}
	for _, location := range latest {
		if _, tracked := s.statuses[location.DeviceID]; tracked {
			s.statuses[location.DeviceID] = location.Status
		}
	}
}

// drainStatusChanges applies any pending redis-relayed status mutations
// without blocking.
func (s *Live) drainStatusChanges(statusCh <-chan cache.StatusChange) {
	if statusCh == nil {
		return
	}
	for {
		select {
		case change, ok := <-statusCh:
			if !ok {
				return
			}
			if _, tracked := s.statuses[change.DeviceID]; tracked {
				s.statuses[change.DeviceID] = change.Status
			}
		default:
			return
		}
	}
}

// tick sweeps every device once in ascending id order. A failed append
// loses that single record and the sweep moves on.
func (s *Live) tick(ctx context.Context) {
	for deviceID := 1; deviceID <= s.cfg.DeviceCount; deviceID++ {
		position := s.walker.Step(s.positions[deviceID], s.cfg.MaxDelta)
		s.positions[deviceID] = position

		resolved := s.resolver.Resolve(ctx, position.Latitude, position.Longitude)

		location := models.Location{
			DeviceID:  deviceID,
			Time:      time.Now().Format(models.TimeLayout),
			Latitude:  position.Latitude,
			Longitude: position.Longitude,
			District:  &resolved.District,
			State:     &resolved.State,
			Status:    s.statuses[deviceID],
		}

		if err := s.repo.Create(&location); err != nil {
			s.logger.Errorf("Failed to store location for device %d: %v", deviceID, err)
			continue
		}

		for _, publisher := range s.publishers {
			if err := publisher.PublishLocation(location); err != nil {
				s.logger.Warnf("Failed to publish location for device %d: %v", deviceID, err)
			}
		}

		if s.cache != nil {
			if err := s.cache.SetLatest(ctx, location); err != nil {
				s.logger.Warnf("Failed to cache latest location for device %d: %v", deviceID, err)
			}
		}
	}
}
