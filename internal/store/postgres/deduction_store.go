package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/fleetdesk/fleetdesk-backend/internal/store"
	"github.com/fleetdesk/fleetdesk-backend/types"
)

// DeductionStore implements store.DeductionStore using PostgreSQL.
type DeductionStore struct {
	db DB
}

// NewDeductionStore creates a new DeductionStore instance.
func NewDeductionStore(db DB) *DeductionStore {
	return &DeductionStore{db: db}
}

const deductionColumns = `id, driver_id, incident_id, deduction_type, amount,
		reason, status, approved_by, approved_at, applied_to_payout_id,
		created_at, updated_at`

func scanDeduction(row interface{ Scan(dest ...any) error }) (*types.Deduction, error) {
	d := &types.Deduction{}
	err := row.Scan(
		&d.ID,
		&d.DriverID,
		&d.IncidentID,
		&d.DeductionType,
		&d.Amount,
		&d.Reason,
		&d.Status,
		&d.ApprovedBy,
		&d.ApprovedAt,
		&d.AppliedToPayoutID,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return d, nil
}

// CreateDeduction raises a new deduction in pending state.
func (s *DeductionStore) CreateDeduction(ctx context.Context, create *types.DeductionCreate) (*types.Deduction, error) {
	query := `
		INSERT INTO deductions (driver_id, incident_id, deduction_type, amount, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + deductionColumns

	row := s.db.QueryRow(ctx, query,
		create.DriverID,
		create.IncidentID,
		create.DeductionType,
		create.Amount,
		create.Reason,
		types.DeductionStatusPending,
	)
	return scanDeduction(row)
}

// GetDeduction retrieves a deduction by ID.
func (s *DeductionStore) GetDeduction(ctx context.Context, id int64) (*types.Deduction, error) {
	query := `SELECT ` + deductionColumns + ` FROM deductions WHERE id = $1`
	return scanDeduction(s.db.QueryRow(ctx, query, id))
}

// ListDriverDeductions returns all deductions for a driver, newest first.
func (s *DeductionStore) ListDriverDeductions(ctx context.Context, driverID string) ([]*types.Deduction, error) {
	query := `SELECT ` + deductionColumns + ` FROM deductions WHERE driver_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, driverID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var deductions []*types.Deduction
	for rows.Next() {
		d, err := scanDeduction(rows)
		if err != nil {
			return nil, err
		}
		deductions = append(deductions, d)
	}
	return deductions, rows.Err()
}

// ReviewDeduction approves or rejects a pending deduction. The update is
// guarded on the current pending state so concurrent reviewers cannot both
// succeed.
func (s *DeductionStore) ReviewDeduction(ctx context.Context, id int64, status types.DeductionStatus, reviewerID string, reviewedAt time.Time) (*types.Deduction, error) {
	query := `
		UPDATE deductions SET
			status = $2,
			approved_by = $3,
			approved_at = $4,
			updated_at = NOW()
		WHERE id = $1 AND status = $5
		RETURNING ` + deductionColumns

	d, err := scanDeduction(s.db.QueryRow(ctx, query, id, status, reviewerID, reviewedAt, types.DeductionStatusPending))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Row exists but is not pending, or does not exist at all.
			if _, getErr := s.GetDeduction(ctx, id); getErr == nil {
				return nil, store.ErrNotEligible
			}
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}
