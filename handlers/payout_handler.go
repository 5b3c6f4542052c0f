package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/fleetdesk/fleetdesk-backend/errors"
	"github.com/fleetdesk/fleetdesk-backend/logger"
	"github.com/fleetdesk/fleetdesk-backend/middleware"
	payoutservice "github.com/fleetdesk/fleetdesk-backend/models/payout/service"
	"github.com/fleetdesk/fleetdesk-backend/types"
)

// PayoutHandler exposes payout generation, review and payment endpoints.
type PayoutHandler struct {
	payoutService *payoutservice.PayoutService
}

// NewPayoutHandler creates a new payout handler.
func NewPayoutHandler(payoutService *payoutservice.PayoutService) *PayoutHandler {
	return &PayoutHandler{payoutService: payoutService}
}

// GeneratePayout handles POST /payouts.
func (h *PayoutHandler) GeneratePayout(c *gin.Context) {
	log := logger.GetLogger()

	var req types.PayoutGenerate
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Errorw("Invalid request body", "error", err)
		attachError(c, apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	payout, err := h.payoutService.GeneratePayout(c.Request.Context(), &req)
	if err != nil {
		attachError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payout)
}

// GetPayout handles GET /payouts/:id.
func (h *PayoutHandler) GetPayout(c *gin.Context) {
	id, ok := payoutID(c)
	if !ok {
		return
	}

	payout, err := h.payoutService.GetPayout(c.Request.Context(), id)
	if err != nil {
		attachError(c, err)
		return
	}

	c.JSON(http.StatusOK, payout)
}

// ListPayouts handles GET /payouts, optionally filtered by driverId.
func (h *PayoutHandler) ListPayouts(c *gin.Context) {
	var (
		payouts []*types.Payout
		err     error
	)

	if driverID := c.Query("driverId"); driverID != "" {
		payouts, err = h.payoutService.ListDriverPayouts(c.Request.Context(), driverID)
	} else {
		payouts, err = h.payoutService.ListPayouts(c.Request.Context())
	}
	if err != nil {
		attachError(c, err)
		return
	}

	c.JSON(http.StatusOK, payouts)
}

// ListMyPayouts handles GET /payouts/me: the caller's own payout history.
func (h *PayoutHandler) ListMyPayouts(c *gin.Context) {
	auth, ok := middleware.GetAuthContext(c)
	if !ok {
		attachError(c, apperrors.Unauthorized("missing_identity", "Authorization required"))
		return
	}

	payouts, err := h.payoutService.ListOwnPayouts(c.Request.Context(), auth)
	if err != nil {
		attachError(c, err)
		return
	}

	c.JSON(http.StatusOK, payouts)
}

// PreviewPayout handles GET /payouts/preview?driverId=...&date=YYYY-MM-DD.
// It runs the trip window and commission schedule without persisting.
func (h *PayoutHandler) PreviewPayout(c *gin.Context) {
	driverID := c.Query("driverId")
	date := c.Query("date")
	if driverID == "" || date == "" {
		attachError(c, apperrors.ValidationFailed(
			"missing parameters",
			"driverId and date query parameters are required",
		))
		return
	}

	preview, err := h.payoutService.PreviewPayout(c.Request.Context(), driverID, date)
	if err != nil {
		attachError(c, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// ReviewPayout handles POST /payouts/:id/approval.
func (h *PayoutHandler) ReviewPayout(c *gin.Context) {
	log := logger.GetLogger()

	id, ok := payoutID(c)
	if !ok {
		return
	}

	var req types.PayoutApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Errorw("Invalid request body", "error", err)
		attachError(c, apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	auth, ok := middleware.GetAuthContext(c)
	if !ok {
		attachError(c, apperrors.Unauthorized("missing_identity", "Authorization required"))
		return
	}

	payout, err := h.payoutService.ReviewPayout(c.Request.Context(), id, req.Action, auth.UserID)
	if err != nil {
		attachError(c, err)
		return
	}

	c.JSON(http.StatusOK, payout)
}

// RecordPayment handles POST /payouts/:id/payment.
func (h *PayoutHandler) RecordPayment(c *gin.Context) {
	log := logger.GetLogger()

	id, ok := payoutID(c)
	if !ok {
		return
	}

	var req types.PayoutPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Errorw("Invalid request body", "error", err)
		attachError(c, apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	auth, ok := middleware.GetAuthContext(c)
	if !ok {
		attachError(c, apperrors.Unauthorized("missing_identity", "Authorization required"))
		return
	}

	payout, err := h.payoutService.RecordPayment(c.Request.Context(), id, &req, auth.UserID)
	if err != nil {
		attachError(c, err)
		return
	}

	c.JSON(http.StatusOK, payout)
}

// PreviewBreakdown handles GET /payouts/breakdown?revenue=2500. It returns
// the commission decomposition without creating anything.
func (h *PayoutHandler) PreviewBreakdown(c *gin.Context) {
	raw := c.Query("revenue")
	if raw == "" {
		attachError(c, apperrors.ValidationFailed("missing revenue", "the revenue query parameter is required"))
		return
	}

	revenue, err := decimal.NewFromString(raw)
	if err != nil {
		attachError(c, apperrors.ValidationFailed("invalid revenue", "revenue must be a decimal number"))
		return
	}

	breakdown, err := h.payoutService.ComputeBreakdown(revenue)
	if err != nil {
		attachError(c, err)
		return
	}

	c.JSON(http.StatusOK, breakdown)
}

func payoutID(c *gin.Context) (int64, bool) {
	return int64Param(c, "id")
}
