package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/fleetdesk/fleetdesk-backend/errors"
	"github.com/fleetdesk/fleetdesk-backend/logger"
	"github.com/fleetdesk/fleetdesk-backend/middleware"
	fleetservice "github.com/fleetdesk/fleetdesk-backend/models/fleet/service"
	"github.com/fleetdesk/fleetdesk-backend/types"
)

// FleetHandler exposes driver, vehicle and assignment endpoints.
type FleetHandler struct {
	fleetService *fleetservice.FleetService
}

// NewFleetHandler creates a new fleet handler.
func NewFleetHandler(fleetService *fleetservice.FleetService) *FleetHandler {
	return &FleetHandler{fleetService: fleetService}
}

// RegisterDriver handles POST /drivers.
func (h *FleetHandler) RegisterDriver(c *gin.Context) {
	var req types.DriverCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Errorw("Invalid request body", "error", err)
		attachError(c, apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	driver, err := h.fleetService.RegisterDriver(c.Request.Context(), &req)
	if err != nil {
		attachError(c, err)
		return
	}

	c.JSON(http.StatusCreated, driver)
}

// GetDriver handles GET /drivers/:id.
func (h *FleetHandler) GetDriver(c *gin.Context) {
	driver, err := h.fleetService.GetDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		attachError(c, err)
		return
	}
	c.JSON(http.StatusOK, driver)
}

// ListDrivers handles GET /drivers.
func (h *FleetHandler) ListDrivers(c *gin.Context) {
	drivers, err := h.fleetService.ListDrivers(c.Request.Context())
	if err != nil {
		attachError(c, err)
		return
	}
	c.JSON(http.StatusOK, drivers)
}

// UpdateDriver handles PATCH /drivers/:id.
func (h *FleetHandler) UpdateDriver(c *gin.Context) {
	var req types.DriverUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Errorw("Invalid request body", "error", err)
		attachError(c, apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	driver, err := h.fleetService.UpdateDriver(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		attachError(c, err)
		return
	}
	c.JSON(http.StatusOK, driver)
}

// DeleteDriver handles DELETE /drivers/:id.
func (h *FleetHandler) DeleteDriver(c *gin.Context) {
	if err := h.fleetService.DeleteDriver(c.Request.Context(), c.Param("id")); err != nil {
		attachError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterVehicle handles POST /vehicles.
func (h *FleetHandler) RegisterVehicle(c *gin.Context) {
	var req types.VehicleCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Errorw("Invalid request body", "error", err)
		attachError(c, apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	vehicle, err := h.fleetService.RegisterVehicle(c.Request.Context(), &req)
	if err != nil {
		attachError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vehicle)
}

// GetVehicle handles GET /vehicles/:id.
func (h *FleetHandler) GetVehicle(c *gin.Context) {
	vehicle, err := h.fleetService.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		attachError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

// ListVehicles handles GET /vehicles.
func (h *FleetHandler) ListVehicles(c *gin.Context) {
	vehicles, err := h.fleetService.ListVehicles(c.Request.Context())
	if err != nil {
		attachError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

// UpdateVehicle handles PATCH /vehicles/:id.
func (h *FleetHandler) UpdateVehicle(c *gin.Context) {
	var req types.VehicleUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Errorw("Invalid request body", "error", err)
		attachError(c, apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	vehicle, err := h.fleetService.UpdateVehicle(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		attachError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

// DeleteVehicle handles DELETE /vehicles/:id.
func (h *FleetHandler) DeleteVehicle(c *gin.Context) {
	if err := h.fleetService.DeleteVehicle(c.Request.Context(), c.Param("id")); err != nil {
		attachError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AssignVehicle handles POST /assignments.
func (h *FleetHandler) AssignVehicle(c *gin.Context) {
	var req types.AssignmentCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Errorw("Invalid request body", "error", err)
		attachError(c, apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	auth, ok := middleware.GetAuthContext(c)
	if !ok {
		attachError(c, apperrors.Unauthorized("missing_identity", "Authorization required"))
		return
	}

	assignment, err := h.fleetService.AssignVehicle(c.Request.Context(), &req, auth.UserID)
	if err != nil {
		attachError(c, err)
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

// GetAssignment handles GET /assignments/:id.
func (h *FleetHandler) GetAssignment(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	assignment, err := h.fleetService.GetAssignment(c.Request.Context(), id)
	if err != nil {
		attachError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// ListAssignments handles GET /assignments.
func (h *FleetHandler) ListAssignments(c *gin.Context) {
	assignments, err := h.fleetService.ListAssignments(c.Request.Context())
	if err != nil {
		attachError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignments)
}

// EndAssignment handles POST /assignments/:id/end.
func (h *FleetHandler) EndAssignment(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req struct {
		EndDate *time.Time `json:"endDate,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		logger.GetLogger().Errorw("Invalid request body", "error", err)
		attachError(c, apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	endDate := time.Time{}
	if req.EndDate != nil {
		endDate = *req.EndDate
	}

	assignment, err := h.fleetService.EndAssignment(c.Request.Context(), id, endDate)
	if err != nil {
		attachError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}
