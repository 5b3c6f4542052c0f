package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type TripStatus string

const (
	TripStatusCompleted TripStatus = "completed"
	TripStatusCancelled TripStatus = "cancelled"
	TripStatusDisputed  TripStatus = "disputed"
)

// IsValid checks if the trip status is a known value.
func (s TripStatus) IsValid() bool {
	switch s {
	case TripStatusCompleted, TripStatusCancelled, TripStatusDisputed:
		return true
	}
	return false
}

// Trip is an immutable record of one fare. Net revenue for the driver is
// FareAmount minus PlatformCommission.
type Trip struct {
	ID                 string          `json:"id"`
	DriverID           string          `json:"driverId"`
	VehicleID          *string         `json:"vehicleId,omitempty"`
	StartTime          time.Time       `json:"startTime"`
	EndTime            *time.Time      `json:"endTime,omitempty"`
	PickupLocation     *string         `json:"pickupLocation,omitempty"`
	DropLocation       *string         `json:"dropLocation,omitempty"`
	DistanceKM         *float64        `json:"distanceKm,omitempty"`
	FareAmount         decimal.Decimal `json:"fareAmount"`
	PlatformCommission decimal.Decimal `json:"platformCommission"`
	Status             TripStatus      `json:"status"`
	PlatformTripID     *string         `json:"platformTripId,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// NetRevenue returns the driver's share of the fare.
func (t *Trip) NetRevenue() decimal.Decimal {
	return t.FareAmount.Sub(t.PlatformCommission)
}

// TripCreate is the request body for logging a trip.
type TripCreate struct {
	DriverID           string          `json:"driverId" binding:"required,uuid"`
	VehicleID          *string         `json:"vehicleId,omitempty" binding:"omitempty,uuid"`
	StartTime          time.Time       `json:"startTime" binding:"required"`
	EndTime            *time.Time      `json:"endTime,omitempty"`
	PickupLocation     *string         `json:"pickupLocation,omitempty"`
	DropLocation       *string         `json:"dropLocation,omitempty"`
	DistanceKM         *float64        `json:"distanceKm,omitempty"`
	FareAmount         decimal.Decimal `json:"fareAmount"`
	PlatformCommission decimal.Decimal `json:"platformCommission"`
	Status             TripStatus      `json:"status" binding:"required"`
	PlatformTripID     *string         `json:"platformTripId,omitempty"`
}

// TripRevenue is the per-trip projection the payout assembler sums over.
type TripRevenue struct {
	FareAmount         decimal.Decimal
	PlatformCommission decimal.Decimal
}
