// Package store defines the persistence interfaces consumed by the service
// layer. Implementations live in internal/store/postgres.
package store

import (
	"context"
	"time"

	"github.com/fleetdesk/fleetdesk-backend/types"
	"github.com/shopspring/decimal"
)

// TripTotals is the aggregated revenue view of a driver's completed trips
// inside a payout window. Null fares and commissions count as zero.
type TripTotals struct {
	TotalRevenue    decimal.Decimal
	TotalCommission decimal.Decimal
	TripCount       int
}

// PayoutBuilder turns the in-transaction snapshot (trip totals plus the
// locked set of approved, unconsumed deductions) into the payout row to
// insert. Returning an error aborts the transaction.
type PayoutBuilder func(totals TripTotals, deductions []*types.Deduction) (*types.Payout, error)

// DriverStore handles driver profile persistence.
type DriverStore interface {
	CreateDriver(ctx context.Context, create *types.DriverCreate) (*types.Driver, error)
	GetDriver(ctx context.Context, id string) (*types.Driver, error)
	ListDrivers(ctx context.Context) ([]*types.Driver, error)
	UpdateDriver(ctx context.Context, id string, update *types.DriverUpdate) (*types.Driver, error)
	DeleteDriver(ctx context.Context, id string) error
	// GetDriverByUserID resolves the driver profile linked to an auth user.
	GetDriverByUserID(ctx context.Context, userID string) (*types.Driver, error)
}

// VehicleStore handles vehicle persistence.
type VehicleStore interface {
	CreateVehicle(ctx context.Context, create *types.VehicleCreate) (*types.Vehicle, error)
	GetVehicle(ctx context.Context, id string) (*types.Vehicle, error)
	ListVehicles(ctx context.Context) ([]*types.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, update *types.VehicleUpdate) (*types.Vehicle, error)
	DeleteVehicle(ctx context.Context, id string) error
}

// AssignmentStore handles driver-vehicle assignment persistence.
type AssignmentStore interface {
	CreateAssignment(ctx context.Context, create *types.AssignmentCreate, assignedBy string) (*types.Assignment, error)
	GetAssignment(ctx context.Context, id int64) (*types.Assignment, error)
	ListAssignments(ctx context.Context) ([]*types.Assignment, error)
	EndAssignment(ctx context.Context, id int64, endDate time.Time) (*types.Assignment, error)
}

// TripStore handles trip persistence. Trips are immutable once logged.
type TripStore interface {
	CreateTrip(ctx context.Context, create *types.TripCreate) (*types.Trip, error)
	GetTrip(ctx context.Context, id string) (*types.Trip, error)
	ListTrips(ctx context.Context) ([]*types.Trip, error)
	ListDriverTrips(ctx context.Context, driverID string) ([]*types.Trip, error)
	// SumCompletedTrips aggregates fares and commissions of completed trips
	// whose start time falls in [from, to).
	SumCompletedTrips(ctx context.Context, driverID string, from, to time.Time) (TripTotals, error)
}

// IncidentStore handles incident persistence.
type IncidentStore interface {
	CreateIncident(ctx context.Context, create *types.IncidentCreate, reportedBy string) (*types.Incident, error)
	GetIncident(ctx context.Context, id int64) (*types.Incident, error)
	ListIncidents(ctx context.Context) ([]*types.Incident, error)
	UpdateIncidentStatus(ctx context.Context, id int64, status types.IncidentStatus) (*types.Incident, error)
}

// DeductionStore handles deduction persistence.
type DeductionStore interface {
	CreateDeduction(ctx context.Context, create *types.DeductionCreate) (*types.Deduction, error)
	GetDeduction(ctx context.Context, id int64) (*types.Deduction, error)
	ListDriverDeductions(ctx context.Context, driverID string) ([]*types.Deduction, error)
	// ReviewDeduction approves or rejects a pending deduction, stamping the
	// reviewer. Returns ErrNotEligible if the deduction is no longer pending.
	ReviewDeduction(ctx context.Context, id int64, status types.DeductionStatus, reviewerID string, reviewedAt time.Time) (*types.Deduction, error)
}

// PayoutStore handles payout persistence and the generation transaction.
type PayoutStore interface {
	// Generate runs the payout assembly for one driver and window inside a
	// single transaction: it sums completed trips in [windowStart, windowEnd),
	// locks the driver's approved unconsumed deductions (FOR UPDATE), calls
	// build to produce the payout row, inserts it, and stamps
	// applied_to_payout_id on every consumed deduction. All-or-nothing.
	// Returns ErrDuplicate when a payout already exists for (driver, date).
	Generate(ctx context.Context, driverID string, payoutDate time.Time, windowStart, windowEnd time.Time, build PayoutBuilder) (*types.Payout, error)
	GetPayout(ctx context.Context, id int64) (*types.Payout, error)
	ListPayouts(ctx context.Context) ([]*types.Payout, error)
	ListDriverPayouts(ctx context.Context, driverID string) ([]*types.Payout, error)
	// UpdateApproval performs the pending -> approved|rejected transition as a
	// conditional update. Returns ErrNotEligible when the payout is not pending.
	UpdateApproval(ctx context.Context, id int64, status types.PayoutApprovalStatus, approverID string, approvedAt time.Time) (*types.Payout, error)
	// UpdatePayment performs the pending -> paid|failed transition, guarded on
	// approval_status = approved. Returns ErrNotEligible otherwise.
	UpdatePayment(ctx context.Context, id int64, status types.PayoutPaymentStatus, paymentReference *string) (*types.Payout, error)
}
