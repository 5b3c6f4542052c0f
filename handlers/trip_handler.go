package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/fleetdesk/fleetdesk-backend/errors"
	"github.com/fleetdesk/fleetdesk-backend/logger"
	tripservice "github.com/fleetdesk/fleetdesk-backend/models/trip/service"
	"github.com/fleetdesk/fleetdesk-backend/types"
)

// TripHandler exposes trip logging and summary endpoints.
type TripHandler struct {
	tripService *tripservice.TripService
}

// NewTripHandler creates a new trip handler.
func NewTripHandler(tripService *tripservice.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// LogTrip handles POST /trips.
func (h *TripHandler) LogTrip(c *gin.Context) {
	var req types.TripCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Errorw("Invalid request body", "error", err)
		attachError(c, apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	trip, err := h.tripService.LogTrip(c.Request.Context(), &req)
	if err != nil {
		attachError(c, err)
		return
	}

	c.JSON(http.StatusCreated, trip)
}

// GetTrip handles GET /trips/:id.
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		attachError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// ListTrips handles GET /trips, optionally filtered by driverId.
func (h *TripHandler) ListTrips(c *gin.Context) {
	var (
		trips []*types.Trip
		err   error
	)

	if driverID := c.Query("driverId"); driverID != "" {
		trips, err = h.tripService.ListDriverTrips(c.Request.Context(), driverID)
	} else {
		trips, err = h.tripService.ListTrips(c.Request.Context())
	}
	if err != nil {
		attachError(c, err)
		return
	}

	c.JSON(http.StatusOK, trips)
}

// DriverDailySummary handles GET /drivers/:id/summary?date=2025-06-01.
func (h *TripHandler) DriverDailySummary(c *gin.Context) {
	dateRaw := c.Query("date")
	if dateRaw == "" {
		attachError(c, apperrors.ValidationFailed("missing date", "the date query parameter is required"))
		return
	}

	dayStart, err := time.ParseInLocation("2006-01-02", dateRaw, time.Local)
	if err != nil {
		attachError(c, apperrors.ValidationFailed("invalid date", "date must be formatted as YYYY-MM-DD"))
		return
	}

	summary, err := h.tripService.DriverDailySummary(c.Request.Context(), c.Param("id"), dayStart)
	if err != nil {
		attachError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
