package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/fleetdesk/fleetdesk-backend/internal/store"
	"github.com/fleetdesk/fleetdesk-backend/logger"
	"github.com/fleetdesk/fleetdesk-backend/types"
)

// PayoutStore implements store.PayoutStore using PostgreSQL.
type PayoutStore struct {
	db DB
}

// NewPayoutStore creates a new PayoutStore instance.
func NewPayoutStore(db DB) *PayoutStore {
	return &PayoutStore{db: db}
}

const payoutColumns = `id, driver_id, payout_date, revenue_amount, commission_amount,
		incentive_amount, deduction_amount, net_payout, approval_status,
		approved_by, approved_at, payment_status, payment_reference,
		created_at, updated_at`

func scanPayout(row interface{ Scan(dest ...any) error }) (*types.Payout, error) {
	p := &types.Payout{}
	err := row.Scan(
		&p.ID,
		&p.DriverID,
		&p.PayoutDate,
		&p.RevenueAmount,
		&p.CommissionAmount,
		&p.IncentiveAmount,
		&p.DeductionAmount,
		&p.NetPayout,
		&p.ApprovalStatus,
		&p.ApprovedBy,
		&p.ApprovedAt,
		&p.PaymentStatus,
		&p.PaymentReference,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

// Generate assembles and persists a payout in a single transaction.
//
// Inside the transaction it:
//  1. sums the driver's completed trips in [windowStart, windowEnd),
//  2. locks the driver's approved unconsumed deductions with FOR UPDATE,
//  3. calls build to produce the payout row,
//  4. inserts the payout,
//  5. stamps applied_to_payout_id on every locked deduction.
//
// The row lock plus the (driver_id, payout_date) unique index make
// concurrent generation for the same driver safe: one caller wins, the
// other gets ErrDuplicate, and no deduction is consumed twice.
func (s *PayoutStore) Generate(ctx context.Context, driverID string, payoutDate time.Time, windowStart, windowEnd time.Time, build store.PayoutBuilder) (result *types.Payout, err error) {
	log := logger.GetLogger()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Warnw("Failed to roll back payout generation", "error", rbErr, "driver_id", driverID)
			}
		}
	}()

	// Trip aggregation and deduction snapshot read within the transaction so
	// the write is based on exactly what gets consumed.
	var totals store.TripTotals
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(fare_amount), 0),
		       COALESCE(SUM(platform_commission), 0),
		       COUNT(*)
		FROM trips
		WHERE driver_id = $1
		  AND trip_status = $2
		  AND trip_start_time >= $3
		  AND trip_start_time < $4`,
		driverID, types.TripStatusCompleted, windowStart, windowEnd,
	).Scan(&totals.TotalRevenue, &totals.TotalCommission, &totals.TripCount)
	if err != nil {
		return nil, mapError(err)
	}

	rows, err := tx.Query(ctx, `
		SELECT `+deductionColumns+`
		FROM deductions
		WHERE driver_id = $1
		  AND status = $2
		  AND applied_to_payout_id IS NULL
		FOR UPDATE`,
		driverID, types.DeductionStatusApproved,
	)
	if err != nil {
		return nil, mapError(err)
	}

	var deductions []*types.Deduction
	for rows.Next() {
		d, scanErr := scanDeduction(rows)
		if scanErr != nil {
			rows.Close()
			err = scanErr
			return nil, err
		}
		deductions = append(deductions, d)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, mapError(err)
	}

	payout, err := build(totals, deductions)
	if err != nil {
		return nil, err
	}

	created, err := scanPayout(tx.QueryRow(ctx, `
		INSERT INTO payouts (driver_id, payout_date, revenue_amount,
			commission_amount, incentive_amount, deduction_amount, net_payout,
			approval_status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+payoutColumns,
		payout.DriverID,
		payoutDate,
		payout.RevenueAmount,
		payout.CommissionAmount,
		payout.IncentiveAmount,
		payout.DeductionAmount,
		payout.NetPayout,
		types.PayoutApprovalPending,
		types.PayoutPaymentPending,
	))
	if err != nil {
		return nil, err
	}

	// Consume the snapshot: stamped deductions are never selected again.
	for _, d := range deductions {
		tag, execErr := tx.Exec(ctx, `
			UPDATE deductions SET applied_to_payout_id = $1, updated_at = NOW()
			WHERE id = $2 AND applied_to_payout_id IS NULL`,
			created.ID, d.ID,
		)
		if execErr != nil {
			err = mapError(execErr)
			return nil, err
		}
		if tag.RowsAffected() == 0 {
			// Locked rows cannot change under us; treat as a hard failure.
			err = store.ErrNotEligible
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, mapError(err)
	}

	log.Infow("Payout generated",
		"payout_id", created.ID,
		"driver_id", driverID,
		"trip_count", totals.TripCount,
		"deductions_applied", len(deductions),
	)
	return created, nil
}

// GetPayout retrieves a payout by ID.
func (s *PayoutStore) GetPayout(ctx context.Context, id int64) (*types.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE id = $1`
	return scanPayout(s.db.QueryRow(ctx, query, id))
}

// ListPayouts returns all payouts, most recently created first.
func (s *PayoutStore) ListPayouts(ctx context.Context) ([]*types.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts ORDER BY created_at DESC`
	return s.queryPayouts(ctx, query)
}

// ListDriverPayouts returns a driver's payouts, most recently created first.
func (s *PayoutStore) ListDriverPayouts(ctx context.Context, driverID string) ([]*types.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE driver_id = $1 ORDER BY created_at DESC`
	return s.queryPayouts(ctx, query, driverID)
}

func (s *PayoutStore) queryPayouts(ctx context.Context, query string, args ...any) ([]*types.Payout, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var payouts []*types.Payout
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, err
		}
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}

// UpdateApproval moves a pending payout to approved or rejected. The update
// is guarded on the current pending state; both outcomes stamp the actor and
// timestamp for audit.
func (s *PayoutStore) UpdateApproval(ctx context.Context, id int64, status types.PayoutApprovalStatus, approverID string, approvedAt time.Time) (*types.Payout, error) {
	query := `
		UPDATE payouts SET
			approval_status = $2,
			approved_by = $3,
			approved_at = $4,
			updated_at = NOW()
		WHERE id = $1 AND approval_status = $5
		RETURNING ` + payoutColumns

	p, err := scanPayout(s.db.QueryRow(ctx, query, id, status, approverID, approvedAt, types.PayoutApprovalPending))
	if err != nil {
		return nil, s.disambiguate(ctx, id, err)
	}
	return p, nil
}

// UpdatePayment moves an approved payout's payment state from pending to
// paid or failed, recording the payment reference when supplied.
func (s *PayoutStore) UpdatePayment(ctx context.Context, id int64, status types.PayoutPaymentStatus, paymentReference *string) (*types.Payout, error) {
	query := `
		UPDATE payouts SET
			payment_status = $2,
			payment_reference = $3,
			updated_at = NOW()
		WHERE id = $1
		  AND payment_status = $4
		  AND approval_status = $5
		RETURNING ` + payoutColumns

	p, err := scanPayout(s.db.QueryRow(ctx, query, id, status, paymentReference, types.PayoutPaymentPending, types.PayoutApprovalApproved))
	if err != nil {
		return nil, s.disambiguate(ctx, id, err)
	}
	return p, nil
}

// disambiguate resolves a zero-row conditional update into ErrNotFound or
// ErrNotEligible.
func (s *PayoutStore) disambiguate(ctx context.Context, id int64, err error) error {
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if _, getErr := s.GetPayout(ctx, id); getErr == nil {
		return store.ErrNotEligible
	}
	return store.ErrNotFound
}
