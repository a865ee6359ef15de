package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"fleet-tracker/internal/utils"

	"github.com/labstack/echo/v4"
)

// FiltersHandler persists map filter preferences to a flat JSON file.
type FiltersHandler struct {
	path   string
	logger *utils.Logger
}

// NewFiltersHandler creates a new filters handler.
func NewFiltersHandler(path string, logger *utils.Logger) *FiltersHandler {
	return &FiltersHandler{path: path, logger: logger}
}

// SaveFilters writes the posted filter document verbatim.
func (h *FiltersHandler) SaveFilters(c echo.Context) error {
	var filters map[string]interface{}
	if err := c.Bind(&filters); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
	}

	payload, err := json.Marshal(filters)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save filters")
	}
	if err := os.WriteFile(h.path, payload, 0644); err != nil {
		h.logger.Errorf("Failed to write filters file: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save filters")
	}

	return c.JSON(http.StatusOK, utils.SuccessResponse("Filters saved successfully", nil))
}

// LoadFilters returns the stored filter document, or an empty default
// when none has been saved yet.
func (h *FiltersHandler) LoadFilters(c echo.Context) error {
	payload, err := os.ReadFile(h.path)
	if os.IsNotExist(err) {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"states":    []string{},
			"districts": []string{},
			"regions":   []string{},
			"locked":    false,
		})
	}
	if err != nil {
		h.logger.Errorf("Failed to read filters file: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load filters")
	}

	var filters map[string]interface{}
	if err := json.Unmarshal(payload, &filters); err != nil {
		h.logger.Errorf("Filters file is corrupt: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load filters")
	}

	return c.JSON(http.StatusOK, filters)
}
