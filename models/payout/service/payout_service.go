// Package service implements the payout engine: daily payout assembly from
// completed trips, the approval workflow, and payment recording.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/fleetdesk/fleetdesk-backend/errors"
	"github.com/fleetdesk/fleetdesk-backend/internal/events"
	istore "github.com/fleetdesk/fleetdesk-backend/internal/store"
	"github.com/fleetdesk/fleetdesk-backend/logger"
	"github.com/fleetdesk/fleetdesk-backend/pkg/commission"
	"github.com/fleetdesk/fleetdesk-backend/types"
)

const payoutDateLayout = "2006-01-02"

// PayoutService coordinates payout generation and the two-stage
// approval/payment lifecycle.
type PayoutService struct {
	payouts   istore.PayoutStore
	drivers   istore.DriverStore
	trips     istore.TripStore
	publisher events.Publisher
	schedule  commission.Schedule
	loc       *time.Location
}

// NewPayoutService creates a new payout service. loc resolves the daily
// trip window; pass time.Local when no business timezone is configured.
func NewPayoutService(
	payouts istore.PayoutStore,
	drivers istore.DriverStore,
	trips istore.TripStore,
	publisher events.Publisher,
	schedule commission.Schedule,
	loc *time.Location,
) *PayoutService {
	if loc == nil {
		loc = time.Local
	}
	return &PayoutService{
		payouts:   payouts,
		drivers:   drivers,
		trips:     trips,
		publisher: publisher,
		schedule:  schedule,
		loc:       loc,
	}
}

// GeneratePayout assembles the payout for one driver and calendar date.
// The window covers [date 00:00, next day 00:00) in the service timezone.
// A driver with no completed trips still gets a zero payout row.
func (s *PayoutService) GeneratePayout(ctx context.Context, req *types.PayoutGenerate) (*types.Payout, error) {
	log := logger.GetLogger()

	driver, err := s.drivers.GetDriver(ctx, req.DriverID)
	if err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.DriverNotFound(req.DriverID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	date, err := time.ParseInLocation(payoutDateLayout, req.PayoutDate, s.loc)
	if err != nil {
		return nil, apperrors.ValidationFailed(
			"invalid payout date",
			fmt.Sprintf("payoutDate must be formatted as YYYY-MM-DD: %q", req.PayoutDate),
		)
	}

	windowStart := date
	windowEnd := date.AddDate(0, 0, 1)

	payout, err := s.payouts.Generate(ctx, driver.ID, date, windowStart, windowEnd,
		func(totals istore.TripTotals, deductions []*types.Deduction) (*types.Payout, error) {
			breakdown, err := s.schedule.ComputeBreakdown(totals.TotalRevenue)
			if err != nil {
				return nil, err
			}

			totalDeductions := decimal.Zero
			for _, d := range deductions {
				totalDeductions = totalDeductions.Add(d.Amount)
			}

			return &types.Payout{
				DriverID:         driver.ID,
				PayoutDate:       date,
				RevenueAmount:    totals.TotalRevenue,
				CommissionAmount: totals.TotalCommission,
				IncentiveAmount:  breakdown.IncentiveAmount,
				DeductionAmount:  totalDeductions,
				NetPayout:        commission.NetPayout(breakdown.TotalPayout, totalDeductions),
				ApprovalStatus:   types.PayoutApprovalPending,
				PaymentStatus:    types.PayoutPaymentPending,
			}, nil
		})
	if err != nil {
		var appErr *apperrors.AppError
		switch {
		case errors.As(err, &appErr):
			return nil, err
		case errors.Is(err, istore.ErrDuplicate):
			return nil, apperrors.NewConflictError(
				"payout_exists",
				fmt.Sprintf("a payout already exists for driver %s on %s", driver.ID, req.PayoutDate),
			)
		default:
			return nil, apperrors.NewDatabaseError(err)
		}
	}

	s.publish(ctx, events.EventPayoutCreated, payout, "")

	log.Infow("Payout generated",
		"payoutID", payout.ID,
		"driverID", payout.DriverID,
		"payoutDate", req.PayoutDate,
		"netPayout", payout.NetPayout,
	)
	return payout, nil
}

// ComputeBreakdown exposes the commission decomposition for a revenue
// amount without touching storage. Used by the preview endpoint.
func (s *PayoutService) ComputeBreakdown(revenue decimal.Decimal) (commission.Breakdown, error) {
	return s.schedule.ComputeBreakdown(revenue)
}

// PayoutPreview is a dry run of payout generation for a driver and date:
// the same trip window and commission schedule, with nothing persisted and
// no deductions consumed.
type PayoutPreview struct {
	DriverID         string               `json:"driverId"`
	PayoutDate       string               `json:"payoutDate"`
	TripCount        int                  `json:"tripCount"`
	RevenueAmount    decimal.Decimal      `json:"revenueAmount"`
	CommissionAmount decimal.Decimal      `json:"commissionAmount"`
	Breakdown        commission.Breakdown `json:"breakdown"`
}

// PreviewPayout computes the commission breakdown a payout for this driver
// and date would produce, without writing anything.
func (s *PayoutService) PreviewPayout(ctx context.Context, driverID, payoutDate string) (*PayoutPreview, error) {
	driver, err := s.drivers.GetDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.DriverNotFound(driverID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	date, err := time.ParseInLocation(payoutDateLayout, payoutDate, s.loc)
	if err != nil {
		return nil, apperrors.ValidationFailed(
			"invalid payout date",
			fmt.Sprintf("date must be formatted as YYYY-MM-DD: %q", payoutDate),
		)
	}

	totals, err := s.trips.SumCompletedTrips(ctx, driver.ID, date, date.AddDate(0, 0, 1))
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	breakdown, err := s.schedule.ComputeBreakdown(totals.TotalRevenue)
	if err != nil {
		return nil, err
	}

	return &PayoutPreview{
		DriverID:         driver.ID,
		PayoutDate:       payoutDate,
		TripCount:        totals.TripCount,
		RevenueAmount:    totals.TotalRevenue,
		CommissionAmount: totals.TotalCommission,
		Breakdown:        breakdown,
	}, nil
}

// GetPayout retrieves a single payout by ID.
func (s *PayoutService) GetPayout(ctx context.Context, id int64) (*types.Payout, error) {
	payout, err := s.payouts.GetPayout(ctx, id)
	if err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.PayoutNotFound(id)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return payout, nil
}

// ListPayouts lists all payouts.
func (s *PayoutService) ListPayouts(ctx context.Context) ([]*types.Payout, error) {
	payouts, err := s.payouts.ListPayouts(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return payouts, nil
}

// ListDriverPayouts lists one driver's payouts.
func (s *PayoutService) ListDriverPayouts(ctx context.Context, driverID string) ([]*types.Payout, error) {
	payouts, err := s.payouts.ListDriverPayouts(ctx, driverID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return payouts, nil
}

// ListOwnPayouts lists the payouts of the caller's own driver profile. The
// profile is resolved from the token's driver claim, falling back to a
// lookup by auth user ID.
func (s *PayoutService) ListOwnPayouts(ctx context.Context, auth *types.AuthContext) ([]*types.Payout, error) {
	driverID := auth.DriverID
	if driverID == "" {
		driver, err := s.drivers.GetDriverByUserID(ctx, auth.UserID)
		if err != nil {
			if errors.Is(err, istore.ErrNotFound) {
				return nil, apperrors.NotFound("Driver profile for user", auth.UserID)
			}
			return nil, apperrors.NewDatabaseError(err)
		}
		driverID = driver.ID
	}
	return s.ListDriverPayouts(ctx, driverID)
}

// ReviewPayout applies an approve or reject decision to a pending payout.
// Both outcomes are terminal and stamp the reviewer and time.
func (s *PayoutService) ReviewPayout(ctx context.Context, id int64, action types.ApprovalAction, reviewerID string) (*types.Payout, error) {
	if !action.IsValid() {
		return nil, apperrors.ValidationFailed(
			"invalid action",
			fmt.Sprintf("action must be %q or %q", types.ApprovalActionApprove, types.ApprovalActionReject),
		)
	}

	next := action.ResultStatus()
	payout, err := s.payouts.UpdateApproval(ctx, id, next, reviewerID, time.Now())
	if err != nil {
		return nil, s.transitionError(ctx, id, err, string(next))
	}

	eventType := events.EventPayoutApproved
	if next == types.PayoutApprovalRejected {
		eventType = events.EventPayoutRejected
	}
	s.publish(ctx, eventType, payout, reviewerID)

	logger.GetLogger().Infow("Payout reviewed",
		"payoutID", payout.ID,
		"approvalStatus", payout.ApprovalStatus,
		"reviewerID", reviewerID,
	)
	return payout, nil
}

// RecordPayment records the paid or failed outcome of an approved payout.
// An optional payment reference (bank transaction ID) is stored alongside.
func (s *PayoutService) RecordPayment(ctx context.Context, id int64, req *types.PayoutPaymentRequest, actorID string) (*types.Payout, error) {
	if req.Status != types.PayoutPaymentPaid && req.Status != types.PayoutPaymentFailed {
		return nil, apperrors.ValidationFailed(
			"invalid payment status",
			fmt.Sprintf("status must be %q or %q", types.PayoutPaymentPaid, types.PayoutPaymentFailed),
		)
	}

	payout, err := s.payouts.UpdatePayment(ctx, id, req.Status, req.PaymentReference)
	if err != nil {
		return nil, s.transitionError(ctx, id, err, string(req.Status))
	}

	eventType := events.EventPayoutPaid
	if req.Status == types.PayoutPaymentFailed {
		eventType = events.EventPayoutPaymentFailed
	}
	s.publish(ctx, eventType, payout, actorID)

	logger.GetLogger().Infow("Payout payment recorded",
		"payoutID", payout.ID,
		"paymentStatus", payout.PaymentStatus,
		"actorID", actorID,
	)
	return payout, nil
}

// transitionError maps a failed conditional update to a client-facing error.
// ErrNotEligible means the row exists but its current state forbids the
// transition; the payout is re-read so the error can name that state.
func (s *PayoutService) transitionError(ctx context.Context, id int64, err error, next string) error {
	switch {
	case errors.Is(err, istore.ErrNotFound):
		return apperrors.PayoutNotFound(id)
	case errors.Is(err, istore.ErrNotEligible):
		payout, getErr := s.payouts.GetPayout(ctx, id)
		if getErr != nil {
			return apperrors.InvalidStatusTransition("unknown", next)
		}
		current := string(payout.ApprovalStatus)
		if payout.ApprovalStatus == types.PayoutApprovalApproved && payout.PaymentStatus != types.PayoutPaymentPending {
			current = string(payout.PaymentStatus)
		}
		return apperrors.InvalidStatusTransition(current, next)
	default:
		return apperrors.NewDatabaseError(err)
	}
}

// publish emits a lifecycle event. Failures are logged, not returned; the
// state change has already been committed.
func (s *PayoutService) publish(ctx context.Context, eventType events.EventType, payout *types.Payout, actorID string) {
	if s.publisher == nil {
		return
	}

	event, err := events.NewEvent(eventType, payout.DriverID, actorID, map[string]any{
		"payoutId":   payout.ID,
		"payoutDate": payout.PayoutDate.Format(payoutDateLayout),
		"netPayout":  payout.NetPayout.String(),
	})
	if err == nil {
		err = s.publisher.Publish(ctx, payout.DriverID, event)
	}
	if err != nil {
		logger.GetLogger().Warnw("Failed to publish payout event",
			"error", err,
			"eventType", eventType,
			"payoutID", payout.ID,
		)
	}
}
