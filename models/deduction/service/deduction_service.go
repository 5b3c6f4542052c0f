// Package service implements the deduction review workflow.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/fleetdesk/fleetdesk-backend/errors"
	"github.com/fleetdesk/fleetdesk-backend/internal/events"
	istore "github.com/fleetdesk/fleetdesk-backend/internal/store"
	"github.com/fleetdesk/fleetdesk-backend/logger"
	"github.com/fleetdesk/fleetdesk-backend/types"
)

// DeductionService manages deductions between creation and consumption.
// Only approved deductions are picked up by payout generation.
type DeductionService struct {
	deductions istore.DeductionStore
	drivers    istore.DriverStore
	publisher  events.Publisher
}

// NewDeductionService creates a new deduction service.
func NewDeductionService(deductions istore.DeductionStore, drivers istore.DriverStore, publisher events.Publisher) *DeductionService {
	return &DeductionService{
		deductions: deductions,
		drivers:    drivers,
		publisher:  publisher,
	}
}

// CreateDeduction raises a deduction directly, outside the incident flow.
// New deductions start pending.
func (s *DeductionService) CreateDeduction(ctx context.Context, create *types.DeductionCreate) (*types.Deduction, error) {
	if create.Amount.IsNegative() {
		return nil, apperrors.InvalidAmount("invalid deduction amount", "deduction amount cannot be negative")
	}

	if _, err := s.drivers.GetDriver(ctx, create.DriverID); err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.DriverNotFound(create.DriverID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	deduction, err := s.deductions.CreateDeduction(ctx, create)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	logger.GetLogger().Infow("Deduction created",
		"deductionID", deduction.ID,
		"driverID", deduction.DriverID,
		"amount", deduction.Amount,
	)
	return deduction, nil
}

// GetDeduction retrieves a deduction by ID.
func (s *DeductionService) GetDeduction(ctx context.Context, id int64) (*types.Deduction, error) {
	deduction, err := s.deductions.GetDeduction(ctx, id)
	if err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.NotFound("Deduction", id)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return deduction, nil
}

// ListDriverDeductions lists one driver's deductions.
func (s *DeductionService) ListDriverDeductions(ctx context.Context, driverID string) ([]*types.Deduction, error) {
	deductions, err := s.deductions.ListDriverDeductions(ctx, driverID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return deductions, nil
}

// ReviewDeduction approves or rejects a pending deduction. Either outcome
// is terminal and stamps the reviewer.
func (s *DeductionService) ReviewDeduction(ctx context.Context, id int64, action types.ApprovalAction, reviewerID string) (*types.Deduction, error) {
	if !action.IsValid() {
		return nil, apperrors.ValidationFailed(
			"invalid action",
			fmt.Sprintf("action must be %q or %q", types.ApprovalActionApprove, types.ApprovalActionReject),
		)
	}

	next := types.DeductionStatus(action.ResultStatus())
	deduction, err := s.deductions.ReviewDeduction(ctx, id, next, reviewerID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, istore.ErrNotFound):
			return nil, apperrors.NotFound("Deduction", id)
		case errors.Is(err, istore.ErrNotEligible):
			current, getErr := s.deductions.GetDeduction(ctx, id)
			if getErr != nil {
				return nil, apperrors.InvalidStatusTransition("unknown", string(next))
			}
			return nil, apperrors.InvalidStatusTransition(string(current.Status), string(next))
		default:
			return nil, apperrors.NewDatabaseError(err)
		}
	}

	s.publishReviewed(ctx, deduction, reviewerID)

	logger.GetLogger().Infow("Deduction reviewed",
		"deductionID", deduction.ID,
		"status", deduction.Status,
		"reviewerID", reviewerID,
	)
	return deduction, nil
}

func (s *DeductionService) publishReviewed(ctx context.Context, deduction *types.Deduction, reviewerID string) {
	if s.publisher == nil {
		return
	}

	event, err := events.NewEvent(events.EventDeductionReviewed, deduction.DriverID, reviewerID, map[string]any{
		"deductionId": deduction.ID,
		"status":      deduction.Status,
		"amount":      deduction.Amount.String(),
	})
	if err == nil {
		err = s.publisher.Publish(ctx, deduction.DriverID, event)
	}
	if err != nil {
		logger.GetLogger().Warnw("Failed to publish deduction event", "error", err, "deductionID", deduction.ID)
	}
}
