package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleetdesk/fleetdesk-backend/services"
	"github.com/fleetdesk/fleetdesk-backend/types"
)

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	healthService *services.HealthService
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(healthService *services.HealthService) *HealthHandler {
	return &HealthHandler{healthService: healthService}
}

// LivenessCheck handles the kubernetes liveness probe.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}

// ReadinessCheck handles the kubernetes readiness probe.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	health := h.healthService.CheckHealth(c.Request.Context())

	if health.Status == types.HealthStatusDown {
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}
