package handlers

import (
	"net/http"

	"fleet-tracker/internal/repositories"
	"fleet-tracker/internal/utils"

	"github.com/labstack/echo/v4"
)

// ReferenceHandler serves the read-only states/districts lookup.
type ReferenceHandler struct {
	repo   repositories.ReferenceRepository
	logger *utils.Logger
}

// NewReferenceHandler creates a new reference handler.
func NewReferenceHandler(repo repositories.ReferenceRepository, logger *utils.Logger) *ReferenceHandler {
	return &ReferenceHandler{repo: repo, logger: logger}
}

// StatesAndDistricts lists every state with its district names.
func (h *ReferenceHandler) StatesAndDistricts(c echo.Context) error {
	states, err := h.repo.StatesAndDistricts()
	if err != nil {
		h.logger.Errorf("Failed to fetch states and districts: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Database error")
	}
	return c.JSON(http.StatusOK, states)
}
