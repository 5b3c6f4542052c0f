package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/fleetdesk/fleetdesk-backend/errors"
	"github.com/fleetdesk/fleetdesk-backend/logger"
	"github.com/fleetdesk/fleetdesk-backend/middleware"
	incidentservice "github.com/fleetdesk/fleetdesk-backend/models/incident/service"
	"github.com/fleetdesk/fleetdesk-backend/types"
)

// IncidentHandler exposes incident reporting and resolution endpoints.
type IncidentHandler struct {
	incidentService *incidentservice.IncidentService
}

// NewIncidentHandler creates a new incident handler.
func NewIncidentHandler(incidentService *incidentservice.IncidentService) *IncidentHandler {
	return &IncidentHandler{incidentService: incidentService}
}

// ReportIncident handles POST /incidents.
func (h *IncidentHandler) ReportIncident(c *gin.Context) {
	var req types.IncidentCreate
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

	incident, err := h.incidentService.ReportIncident(c.Request.Context(), &req, auth.UserID)
	if err != nil {
		attachError(c, err)
		return
	}

	c.JSON(http.StatusCreated, incident)
}

// GetIncident handles GET /incidents/:id.
func (h *IncidentHandler) GetIncident(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	incident, err := h.incidentService.GetIncident(c.Request.Context(), id)
	if err != nil {
		attachError(c, err)
		return
	}
	c.JSON(http.StatusOK, incident)
}

// ListIncidents handles GET /incidents.
func (h *IncidentHandler) ListIncidents(c *gin.Context) {
	incidents, err := h.incidentService.ListIncidents(c.Request.Context())
	if err != nil {
		attachError(c, err)
		return
	}
	c.JSON(http.StatusOK, incidents)
}

// ResolveIncident handles POST /incidents/:id/resolve.
func (h *IncidentHandler) ResolveIncident(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req types.IncidentResolve
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

	incident, err := h.incidentService.ResolveIncident(c.Request.Context(), id, &req, auth.UserID)
	if err != nil {
		attachError(c, err)
		return
	}

	c.JSON(http.StatusOK, incident)
}
