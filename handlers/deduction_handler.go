package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/fleetdesk/fleetdesk-backend/errors"
	"github.com/fleetdesk/fleetdesk-backend/logger"
	"github.com/fleetdesk/fleetdesk-backend/middleware"
	deductionservice "github.com/fleetdesk/fleetdesk-backend/models/deduction/service"
	"github.com/fleetdesk/fleetdesk-backend/types"
)

// DeductionHandler exposes deduction creation and review endpoints.
type DeductionHandler struct {
	deductionService *deductionservice.DeductionService
}

// NewDeductionHandler creates a new deduction handler.
func NewDeductionHandler(deductionService *deductionservice.DeductionService) *DeductionHandler {
	return &DeductionHandler{deductionService: deductionService}
}

// CreateDeduction handles POST /deductions.
func (h *DeductionHandler) CreateDeduction(c *gin.Context) {
	var req types.DeductionCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().Errorw("Invalid request body", "error", err)
		attachError(c, apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	deduction, err := h.deductionService.CreateDeduction(c.Request.Context(), &req)
	if err != nil {
		attachError(c, err)
		return
	}

	c.JSON(http.StatusCreated, deduction)
}

// GetDeduction handles GET /deductions/:id.
func (h *DeductionHandler) GetDeduction(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	deduction, err := h.deductionService.GetDeduction(c.Request.Context(), id)
	if err != nil {
		attachError(c, err)
		return
	}
	c.JSON(http.StatusOK, deduction)
}

// ListDriverDeductions handles GET /drivers/:id/deductions.
func (h *DeductionHandler) ListDriverDeductions(c *gin.Context) {
	deductions, err := h.deductionService.ListDriverDeductions(c.Request.Context(), c.Param("id"))
	if err != nil {
		attachError(c, err)
		return
	}
	c.JSON(http.StatusOK, deductions)
}

// ReviewDeduction handles POST /deductions/:id/review.
func (h *DeductionHandler) ReviewDeduction(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req types.DeductionReview
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

	deduction, err := h.deductionService.ReviewDeduction(c.Request.Context(), id, req.Action, auth.UserID)
	if err != nil {
		attachError(c, err)
		return
	}

	c.JSON(http.StatusOK, deduction)
}
