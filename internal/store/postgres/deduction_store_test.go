package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk-backend/internal/store"
	"github.com/fleetdesk/fleetdesk-backend/types"
)

func deductionRows(d *types.Deduction) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "driver_id", "incident_id", "deduction_type", "amount",
		"reason", "status", "approved_by", "approved_at", "applied_to_payout_id",
		"created_at", "updated_at",
	}).AddRow(
		d.ID, d.DriverID, d.IncidentID, d.DeductionType, d.Amount,
		d.Reason, d.Status, d.ApprovedBy, d.ApprovedAt, d.AppliedToPayoutID,
		d.CreatedAt, d.UpdatedAt,
	)
}

func testDeduction() *types.Deduction {
	now := time.Now()
	dedType := "damage"
	reason := "Rear bumper damage, negligence confirmed"
	return &types.Deduction{
		ID:            7,
		DriverID:      uuid.NewString(),
		DeductionType: &dedType,
		Amount:        dec("500"),
		Reason:        &reason,
		Status:        types.DeductionStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestDeductionStore_CreateDeduction(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	ctx := context.Background()
	s := NewDeductionStore(mock)
	want := testDeduction()

	mock.ExpectQuery(`INSERT INTO deductions`).
		WithArgs(want.DriverID, want.IncidentID, want.DeductionType, want.Amount,
			want.Reason, types.DeductionStatusPending).
		WillReturnRows(deductionRows(want))

	got, err := s.CreateDeduction(ctx, &types.DeductionCreate{
		DriverID:      want.DriverID,
		DeductionType: want.DeductionType,
		Amount:        want.Amount,
		Reason:        want.Reason,
	})
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, types.DeductionStatusPending, got.Status)
	assert.True(t, got.Amount.Equal(dec("500")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeductionStore_ReviewDeduction(t *testing.T) {
	ctx := context.Background()
	reviewerID := uuid.NewString()
	reviewedAt := time.Now()

	t.Run("approves a pending deduction", func(t *testing.T) {
		mock, cleanup := setupMockDB(t)
		defer cleanup()
		s := NewDeductionStore(mock)

		want := testDeduction()
		want.Status = types.DeductionStatusApproved
		want.ApprovedBy = &reviewerID
		want.ApprovedAt = &reviewedAt

		mock.ExpectQuery(`UPDATE deductions SET`).
			WithArgs(want.ID, types.DeductionStatusApproved, reviewerID, reviewedAt, types.DeductionStatusPending).
			WillReturnRows(deductionRows(want))

		got, err := s.ReviewDeduction(ctx, want.ID, types.DeductionStatusApproved, reviewerID, reviewedAt)
		require.NoError(t, err)
		assert.Equal(t, types.DeductionStatusApproved, got.Status)
		require.NotNil(t, got.ApprovedBy)
		assert.Equal(t, reviewerID, *got.ApprovedBy)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already reviewed is not eligible", func(t *testing.T) {
		mock, cleanup := setupMockDB(t)
		defer cleanup()
		s := NewDeductionStore(mock)

		reviewed := testDeduction()
		reviewed.Status = types.DeductionStatusRejected

		mock.ExpectQuery(`UPDATE deductions SET`).
			WithArgs(reviewed.ID, types.DeductionStatusApproved, reviewerID, reviewedAt, types.DeductionStatusPending).
			WillReturnRows(pgxmock.NewRows([]string{"id"}))
		mock.ExpectQuery(`FROM deductions WHERE id`).
			WithArgs(reviewed.ID).
			WillReturnRows(deductionRows(reviewed))

		_, err := s.ReviewDeduction(ctx, reviewed.ID, types.DeductionStatusApproved, reviewerID, reviewedAt)
		assert.ErrorIs(t, err, store.ErrNotEligible)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown deduction", func(t *testing.T) {
		mock, cleanup := setupMockDB(t)
		defer cleanup()
		s := NewDeductionStore(mock)

		mock.ExpectQuery(`UPDATE deductions SET`).
			WithArgs(int64(404), types.DeductionStatusApproved, reviewerID, reviewedAt, types.DeductionStatusPending).
			WillReturnRows(pgxmock.NewRows([]string{"id"}))
		mock.ExpectQuery(`FROM deductions WHERE id`).
			WithArgs(int64(404)).
			WillReturnRows(pgxmock.NewRows([]string{"id"}))

		_, err := s.ReviewDeduction(ctx, 404, types.DeductionStatusApproved, reviewerID, reviewedAt)
		assert.ErrorIs(t, err, store.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeductionStore_ListDriverDeductions(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	ctx := context.Background()
	s := NewDeductionStore(mock)
	d := testDeduction()

	mock.ExpectQuery(`FROM deductions WHERE driver_id`).
		WithArgs(d.DriverID).
		WillReturnRows(deductionRows(d))

	deductions, err := s.ListDriverDeductions(ctx, d.DriverID)
	require.NoError(t, err)
	require.Len(t, deductions, 1)
	assert.Equal(t, d.ID, deductions[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
