package repositories

import (
	"fmt"

	"fleet-tracker/internal/models"
	"fleet-tracker/internal/repositories/base"

	"gorm.io/gorm"
)

// createBatchSize keeps multi-row INSERTs under sqlite's bound-variable
// limit; the surrounding transaction keeps the whole batch atomic.
const createBatchSize = 500

// LocationRepository is the append/query interface over the locations
// time series.
type LocationRepository interface {
	Create(location *models.Location) error
	CreateBatch(locations []models.Location) error
	LatestForDevice(deviceID int) (*models.Location, error)
	LatestPerDevice() ([]models.Location, error)
	UpdateStatus(deviceID int, status string) error
	ListForDevice(deviceID int) ([]models.Location, error)
	List() ([]models.Location, error)
}

type locationRepository struct {
	db *gorm.DB
}

// NewLocationRepository creates a gorm-backed location repository.
func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

// Create appends a single record.
func (r *locationRepository) Create(location *models.Location) error {
	if err := r.db.Create(location).Error; err != nil {
		return base.WrapDBError("create", "locations", err)
	}
	return nil
}

// CreateBatch appends many records as one atomic unit. Any failure rolls
// the entire batch back; there is no partial commit.
func (r *locationRepository) CreateBatch(locations []models.Location) error {
	if len(locations) == 0 {
		return nil
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(locations, createBatchSize).Error
	})
	if err != nil {
		return base.WrapDBError("batch create", "locations", err)
	}
	return nil
}

// LatestForDevice returns the max-time record for a device.
func (r *locationRepository) LatestForDevice(deviceID int) (*models.Location, error) {
	var location models.Location
	err := r.db.
		Where("device_id = ?", deviceID).
		Order("time DESC").
		First(&location).Error
	if err != nil {
		return nil, base.HandleDBError("get latest", "locations", fmt.Sprintf("device_id %d", deviceID), err)
	}
	return &location, nil
}

// LatestPerDevice returns exactly one max-time record per distinct
// device in the store. A timestamp tie within a device is broken by the
// highest id, the most recently inserted of the tied rows.
func (r *locationRepository) LatestPerDevice() ([]models.Location, error) {
	var locations []models.Location
	err := r.db.Raw(
		`SELECT * FROM locations WHERE id IN
		   (SELECT MAX(id) FROM locations AS l
		    WHERE l.time = (SELECT MAX(time) FROM locations AS m WHERE m.device_id = l.device_id)
		    GROUP BY l.device_id)`,
	).Scan(&locations).Error
	if err != nil {
		return nil, base.WrapDBError("get latest per device", "locations", err)
	}
	return locations, nil
}

// UpdateStatus rewrites the status of the device's most recent record in
// place. It does not append a new record, so the time series does not
// advance; status history on earlier rows is not preserved.
func (r *locationRepository) UpdateStatus(deviceID int, status string) error {
	result := r.db.Exec(
		`UPDATE locations SET status = ?
		 WHERE device_id = ? AND time = (SELECT MAX(time) FROM locations WHERE device_id = ?)`,
		status, deviceID, deviceID,
	)
	if result.Error != nil {
		return base.WrapDBError("update status", "locations", result.Error)
	}
	if result.RowsAffected == 0 {
		return base.NewEntityNotFoundError("locations", fmt.Sprintf("device_id %d", deviceID))
	}
	return nil
}

// ListForDevice returns every record for a device, unordered.
func (r *locationRepository) ListForDevice(deviceID int) ([]models.Location, error) {
	var locations []models.Location
	if err := r.db.Where("device_id = ?", deviceID).Find(&locations).Error; err != nil {
		return nil, base.WrapDBError("list", "locations", err)
	}
	return locations, nil
}

// List returns every record in the store, unordered.
func (r *locationRepository) List() ([]models.Location, error) {
	var locations []models.Location
	if err := r.db.Find(&locations).Error; err != nil {
		return nil, base.WrapDBError("list", "locations", err)
	}
	return locations, nil
}
