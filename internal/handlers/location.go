package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fleet-tracker/internal/cache"
	"fleet-tracker/internal/models"
	"fleet-tracker/internal/repositories"
	"fleet-tracker/internal/repositories/base"
	"fleet-tracker/internal/simulator"
	"fleet-tracker/internal/utils"

	"github.com/labstack/echo/v4"
)

// LocationHandler serves the location ingest and query API.
type LocationHandler struct {
	repo     repositories.LocationRepository
	resolver simulator.GeocodeResolver
	cache    *cache.Client // optional
	logger   *utils.Logger
}

// NewLocationHandler creates a new location handler. cacheClient may be nil.
func NewLocationHandler(
	repo repositories.LocationRepository,
	resolver simulator.GeocodeResolver,
	cacheClient *cache.Client,
	logger *utils.Logger,
) *LocationHandler {
	return &LocationHandler{
		repo:     repo,
		resolver: resolver,
		cache:    cacheClient,
		logger:   logger,
	}
}

// ReceiveLocation stores one externally reported position, enriched with
// a reverse-geocode lookup.
func (h *LocationHandler) ReceiveLocation(c echo.Context) error {
	var request struct {
		DeviceID  *int     `json:"device_id"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}

	if err := c.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}
	if request.DeviceID == nil || request.Latitude == nil || request.Longitude == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "device_id, latitude and longitude are required")
	}

	resolved := h.resolver.Resolve(c.Request().Context(), *request.Latitude, *request.Longitude)

	location := models.Location{
		DeviceID:  *request.DeviceID,
		Time:      time.Now().Format(models.TimeLayout),
		Latitude:  *request.Latitude,
		Longitude: *request.Longitude,
		District:  &resolved.District,
		State:     &resolved.State,
		Status:    models.StatusActive,
	}

	if err := h.repo.Create(&location); err != nil {
		h.logger.Errorf("Failed to store location: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store location data")
	}

	if h.cache != nil {
		if err := h.cache.SetLatest(c.Request().Context(), location); err != nil {
			h.logger.Warnf("Failed to cache latest location for device %d: %v", location.DeviceID, err)
		}
	}

	return c.JSON(http.StatusOK, utils.SuccessResponse("Location data stored successfully", location))
}

// ListLocations lists stored records, optionally filtered by device_id.
func (h *LocationHandler) ListLocations(c echo.Context) error {
	var (
		locations []models.Location
		err       error
	)

	if deviceParam := c.QueryParam("device_id"); deviceParam != "" {
		deviceID, parseErr := strconv.Atoi(deviceParam)
		if parseErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "device_id must be an integer")
		}
		locations, err = h.repo.ListForDevice(deviceID)
	} else {
		locations, err = h.repo.List()
	}

	if err != nil {
		h.logger.Errorf("Failed to fetch locations: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch location data")
	}

	return c.JSON(http.StatusOK, locations)
}

// LatestLocations returns the most recent record per device, or for a
// single device when device_id is given. The single-device path is
// served from the redis cache when one is configured, falling back to
// the store on a miss.
func (h *LocationHandler) LatestLocations(c echo.Context) error {
	if deviceParam := c.QueryParam("device_id"); deviceParam != "" {
		deviceID, parseErr := strconv.Atoi(deviceParam)
		if parseErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "device_id must be an integer")
		}
		return h.latestForDevice(c, deviceID)
	}

	locations, err := h.repo.LatestPerDevice()
	if err != nil {
		h.logger.Errorf("Failed to fetch latest locations: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch latest location data")
	}
	return c.JSON(http.StatusOK, locations)
}

func (h *LocationHandler) latestForDevice(c echo.Context, deviceID int) error {
	if h.cache != nil {
		cached, err := h.cache.GetLatest(c.Request().Context(), deviceID)
		if err != nil {
			h.logger.Warnf("Cache lookup failed for device %d: %v", deviceID, err)
		} else if cached != nil {
			return c.JSON(http.StatusOK, []models.Location{*cached})
		}
	}

	latest, err := h.repo.LatestForDevice(deviceID)
	if err != nil {
		if base.IsEntityNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("No records for device %d", deviceID))
		}
		h.logger.Errorf("Failed to fetch latest location for device %d: %v", deviceID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch latest location data")
	}
	return c.JSON(http.StatusOK, []models.Location{*latest})
}

// UpdateDeviceStatus rewrites the status of a device's latest record and
// broadcasts the change to any running live loop.
func (h *LocationHandler) UpdateDeviceStatus(c echo.Context) error {
	var request struct {
		DeviceID *int   `json:"device_id"`
		Status   string `json:"status"`
	}

	if err := c.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}
	if request.DeviceID == nil || request.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "device_id and status are required")
	}

	if err := h.repo.UpdateStatus(*request.DeviceID, request.Status); err != nil {
		if base.IsEntityNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("No records for device %d", *request.DeviceID))
		}
		h.logger.Errorf("Failed to update device status: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update device status")
	}

	if h.cache != nil {
		if err := h.cache.PublishStatusChange(c.Request().Context(), *request.DeviceID, request.Status); err != nil {
			h.logger.Warnf("Failed to publish status change for device %d: %v", *request.DeviceID, err)
		}
	}

	return c.JSON(http.StatusOK, utils.SuccessResponse("Device status updated successfully", nil))
}
