// Package service implements trip logging and revenue summaries.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/fleetdesk/fleetdesk-backend/errors"
	istore "github.com/fleetdesk/fleetdesk-backend/internal/store"
	"github.com/fleetdesk/fleetdesk-backend/logger"
	"github.com/fleetdesk/fleetdesk-backend/types"
)

// TripService handles trip logging. Trips are immutable once recorded;
// the payout engine reads them through aggregate queries.
type TripService struct {
	trips   istore.TripStore
	drivers istore.DriverStore
}

// NewTripService creates a new trip service.
func NewTripService(trips istore.TripStore, drivers istore.DriverStore) *TripService {
	return &TripService{trips: trips, drivers: drivers}
}

// LogTrip records a completed, cancelled or disputed fare for a driver.
func (s *TripService) LogTrip(ctx context.Context, create *types.TripCreate) (*types.Trip, error) {
	if !create.Status.IsValid() {
		return nil, apperrors.ValidationFailed("invalid trip status", string(create.Status))
	}
	if create.FareAmount.IsNegative() {
		return nil, apperrors.InvalidAmount("invalid fare amount", "fare amount cannot be negative")
	}
	if create.PlatformCommission.IsNegative() {
		return nil, apperrors.InvalidAmount("invalid platform commission", "platform commission cannot be negative")
	}
	if create.PlatformCommission.GreaterThan(create.FareAmount) {
		return nil, apperrors.InvalidAmount("invalid platform commission", "platform commission cannot exceed the fare amount")
	}
	if create.EndTime != nil && create.EndTime.Before(create.StartTime) {
		return nil, apperrors.ValidationFailed("invalid trip window", "end time cannot precede start time")
	}

	if _, err := s.drivers.GetDriver(ctx, create.DriverID); err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.DriverNotFound(create.DriverID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	trip, err := s.trips.CreateTrip(ctx, create)
	if err != nil {
		if errors.Is(err, istore.ErrDuplicate) {
			return nil, apperrors.NewConflictError("trip_exists", "a trip with this platform trip ID already exists")
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	logger.GetLogger().Infow("Trip logged",
		"tripID", trip.ID,
		"driverID", trip.DriverID,
		"fareAmount", trip.FareAmount,
		"status", trip.Status,
	)
	return trip, nil
}

// GetTrip retrieves a trip by ID.
func (s *TripService) GetTrip(ctx context.Context, id string) (*types.Trip, error) {
	trip, err := s.trips.GetTrip(ctx, id)
	if err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.NotFound("Trip", id)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return trip, nil
}

// ListTrips lists all trips.
func (s *TripService) ListTrips(ctx context.Context) ([]*types.Trip, error) {
	trips, err := s.trips.ListTrips(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return trips, nil
}

// ListDriverTrips lists one driver's trips.
func (s *TripService) ListDriverTrips(ctx context.Context, driverID string) ([]*types.Trip, error) {
	trips, err := s.trips.ListDriverTrips(ctx, driverID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return trips, nil
}

// DailySummary is the aggregated revenue view of one driver's completed
// trips for a calendar day.
type DailySummary struct {
	DriverID        string          `json:"driverId"`
	Date            string          `json:"date"`
	TripCount       int             `json:"tripCount"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	TotalCommission decimal.Decimal `json:"totalCommission"`
	NetRevenue      decimal.Decimal `json:"netRevenue"`
}

// DriverDailySummary aggregates a driver's completed trips for the day
// starting at dayStart in its location.
func (s *TripService) DriverDailySummary(ctx context.Context, driverID string, dayStart time.Time) (*DailySummary, error) {
	if _, err := s.drivers.GetDriver(ctx, driverID); err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.DriverNotFound(driverID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	totals, err := s.trips.SumCompletedTrips(ctx, driverID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	return &DailySummary{
		DriverID:        driverID,
		Date:            dayStart.Format("2006-01-02"),
		TripCount:       totals.TripCount,
		TotalRevenue:    totals.TotalRevenue,
		TotalCommission: totals.TotalCommission,
		NetRevenue:      totals.TotalRevenue.Sub(totals.TotalCommission),
	}, nil
}
