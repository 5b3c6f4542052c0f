package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk-backend/internal/store"
	"github.com/fleetdesk/fleetdesk-backend/types"
)

func tripRows(tr *types.Trip) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "driver_id", "vehicle_id", "trip_start_time", "trip_end_time",
		"pickup_location", "drop_location", "distance_km", "fare_amount",
		"platform_commission", "trip_status", "platform_trip_id", "created_at", "updated_at",
	}).AddRow(
		tr.ID, tr.DriverID, tr.VehicleID, tr.StartTime, tr.EndTime,
		tr.PickupLocation, tr.DropLocation, tr.DistanceKM, tr.FareAmount,
		tr.PlatformCommission, tr.Status, tr.PlatformTripID, tr.CreatedAt, tr.UpdatedAt,
	)
}

func testTrip() *types.Trip {
	now := time.Now()
	platformTripID := "UBER-20250601-001"
	return &types.Trip{
		ID:                 uuid.NewString(),
		DriverID:           uuid.NewString(),
		StartTime:          time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		FareAmount:         dec("450"),
		PlatformCommission: dec("45"),
		Status:             types.TripStatusCompleted,
		PlatformTripID:     &platformTripID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func TestTripStore_CreateTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("logs a trip", func(t *testing.T) {
		mock, cleanup := setupMockDB(t)
		defer cleanup()
		s := NewTripStore(mock)

		want := testTrip()
		mock.ExpectQuery(`INSERT INTO trips`).
			WithArgs(want.DriverID, want.VehicleID, want.StartTime, want.EndTime,
				want.PickupLocation, want.DropLocation, want.DistanceKM, want.FareAmount,
				want.PlatformCommission, want.Status, want.PlatformTripID).
			WillReturnRows(tripRows(want))

		got, err := s.CreateTrip(ctx, &types.TripCreate{
			DriverID:           want.DriverID,
			StartTime:          want.StartTime,
			FareAmount:         want.FareAmount,
			PlatformCommission: want.PlatformCommission,
			Status:             want.Status,
			PlatformTripID:     want.PlatformTripID,
		})
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
		assert.True(t, got.FareAmount.Equal(dec("450")))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate platform trip ID", func(t *testing.T) {
		mock, cleanup := setupMockDB(t)
		defer cleanup()
		s := NewTripStore(mock)

		want := testTrip()
		mock.ExpectQuery(`INSERT INTO trips`).
			WithArgs(want.DriverID, want.VehicleID, want.StartTime, want.EndTime,
				want.PickupLocation, want.DropLocation, want.DistanceKM, want.FareAmount,
				want.PlatformCommission, want.Status, want.PlatformTripID).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		_, err := s.CreateTrip(ctx, &types.TripCreate{
			DriverID:           want.DriverID,
			StartTime:          want.StartTime,
			FareAmount:         want.FareAmount,
			PlatformCommission: want.PlatformCommission,
			Status:             want.Status,
			PlatformTripID:     want.PlatformTripID,
		})
		assert.ErrorIs(t, err, store.ErrDuplicate)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTripStore_SumCompletedTrips(t *testing.T) {
	ctx := context.Background()
	driverID := uuid.NewString()
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	t.Run("aggregates the daily window", func(t *testing.T) {
		mock, cleanup := setupMockDB(t)
		defer cleanup()
		s := NewTripStore(mock)

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(fare_amount\), 0\)`).
			WithArgs(driverID, types.TripStatusCompleted, from, to).
			WillReturnRows(pgxmock.NewRows([]string{"sum", "sum", "count"}).
				AddRow(dec("2500"), dec("250"), 2))

		totals, err := s.SumCompletedTrips(ctx, driverID, from, to)
		require.NoError(t, err)
		assert.True(t, totals.TotalRevenue.Equal(dec("2500")))
		assert.True(t, totals.TotalCommission.Equal(dec("250")))
		assert.Equal(t, 2, totals.TripCount)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty window sums to zero", func(t *testing.T) {
		mock, cleanup := setupMockDB(t)
		defer cleanup()
		s := NewTripStore(mock)

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(fare_amount\), 0\)`).
			WithArgs(driverID, types.TripStatusCompleted, from, to).
			WillReturnRows(pgxmock.NewRows([]string{"sum", "sum", "count"}).
				AddRow(dec("0"), dec("0"), 0))

		totals, err := s.SumCompletedTrips(ctx, driverID, from, to)
		require.NoError(t, err)
		assert.True(t, totals.TotalRevenue.IsZero())
		assert.Equal(t, 0, totals.TripCount)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
