package postgres

import (
	"context"
	"time"

	"github.com/fleetdesk/fleetdesk-backend/internal/store"
	"github.com/fleetdesk/fleetdesk-backend/types"
)

// TripStore implements store.TripStore using PostgreSQL.
type TripStore struct {
	db DB
}

// NewTripStore creates a new TripStore instance.
func NewTripStore(db DB) *TripStore {
	return &TripStore{db: db}
}

const tripColumns = `id, driver_id, vehicle_id, trip_start_time, trip_end_time,
		pickup_location, drop_location, distance_km, fare_amount,
		platform_commission, trip_status, platform_trip_id, created_at, updated_at`

func scanTrip(row interface{ Scan(dest ...any) error }) (*types.Trip, error) {
	t := &types.Trip{}
	err := row.Scan(
		&t.ID,
		&t.DriverID,
		&t.VehicleID,
		&t.StartTime,
		&t.EndTime,
		&t.PickupLocation,
		&t.DropLocation,
		&t.DistanceKM,
		&t.FareAmount,
		&t.PlatformCommission,
		&t.Status,
		&t.PlatformTripID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

// CreateTrip logs a new trip. Trips are never updated afterwards.
func (s *TripStore) CreateTrip(ctx context.Context, create *types.TripCreate) (*types.Trip, error) {
	query := `
		INSERT INTO trips (driver_id, vehicle_id, trip_start_time, trip_end_time,
			pickup_location, drop_location, distance_km, fare_amount,
			platform_commission, trip_status, platform_trip_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + tripColumns

	row := s.db.QueryRow(ctx, query,
		create.DriverID,
		create.VehicleID,
		create.StartTime,
		create.EndTime,
		create.PickupLocation,
		create.DropLocation,
		create.DistanceKM,
		create.FareAmount,
		create.PlatformCommission,
		create.Status,
		create.PlatformTripID,
	)
	return scanTrip(row)
}

// GetTrip retrieves a trip by ID.
func (s *TripStore) GetTrip(ctx context.Context, id string) (*types.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`
	return scanTrip(s.db.QueryRow(ctx, query, id))
}

// ListTrips returns all trips, most recent start first.
func (s *TripStore) ListTrips(ctx context.Context) ([]*types.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips ORDER BY trip_start_time DESC`
	return s.queryTrips(ctx, query)
}

// ListDriverTrips returns a driver's trips, most recent start first.
func (s *TripStore) ListDriverTrips(ctx context.Context, driverID string) ([]*types.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE driver_id = $1 ORDER BY trip_start_time DESC`
	return s.queryTrips(ctx, query, driverID)
}

func (s *TripStore) queryTrips(ctx context.Context, query string, args ...any) ([]*types.Trip, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var trips []*types.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// SumCompletedTrips aggregates completed-trip fares and commissions for a
// driver in the half-open window [from, to). Null amounts count as zero.
func (s *TripStore) SumCompletedTrips(ctx context.Context, driverID string, from, to time.Time) (store.TripTotals, error) {
	query := `
		SELECT COALESCE(SUM(fare_amount), 0),
		       COALESCE(SUM(platform_commission), 0),
		       COUNT(*)
		FROM trips
		WHERE driver_id = $1
		  AND trip_status = $2
		  AND trip_start_time >= $3
		  AND trip_start_time < $4`

	var totals store.TripTotals
	err := s.db.QueryRow(ctx, query, driverID, types.TripStatusCompleted, from, to).Scan(
		&totals.TotalRevenue,
		&totals.TotalCommission,
		&totals.TripCount,
	)
	if err != nil {
		return store.TripTotals{}, mapError(err)
	}
	return totals, nil
}
