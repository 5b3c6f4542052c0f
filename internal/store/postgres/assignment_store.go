package postgres

import (
	"context"
	"time"

	"github.com/fleetdesk/fleetdesk-backend/types"
)

// AssignmentStore implements store.AssignmentStore using PostgreSQL.
type AssignmentStore struct {
	db DB
}

// NewAssignmentStore creates a new AssignmentStore instance.
func NewAssignmentStore(db DB) *AssignmentStore {
	return &AssignmentStore{db: db}
}

const assignmentColumns = `id, driver_id, vehicle_id, start_date, end_date,
		status, assigned_by, notes, created_at, updated_at`

func scanAssignment(row interface{ Scan(dest ...any) error }) (*types.Assignment, error) {
	a := &types.Assignment{}
	err := row.Scan(
		&a.ID,
		&a.DriverID,
		&a.VehicleID,
		&a.StartDate,
		&a.EndDate,
		&a.Status,
		&a.AssignedBy,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

// CreateAssignment links a driver to a vehicle.
func (s *AssignmentStore) CreateAssignment(ctx context.Context, create *types.AssignmentCreate, assignedBy string) (*types.Assignment, error) {
	query := `
		INSERT INTO assignments (driver_id, vehicle_id, start_date, status, assigned_by, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + assignmentColumns

	row := s.db.QueryRow(ctx, query,
		create.DriverID,
		create.VehicleID,
		create.StartDate,
		types.AssignmentStatusActive,
		assignedBy,
		create.Notes,
	)
	return scanAssignment(row)
}

// GetAssignment retrieves an assignment by ID.
func (s *AssignmentStore) GetAssignment(ctx context.Context, id int64) (*types.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = $1`
	return scanAssignment(s.db.QueryRow(ctx, query, id))
}

// ListAssignments returns all assignments, most recent first.
func (s *AssignmentStore) ListAssignments(ctx context.Context) ([]*types.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var assignments []*types.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// EndAssignment closes an assignment as of endDate.
func (s *AssignmentStore) EndAssignment(ctx context.Context, id int64, endDate time.Time) (*types.Assignment, error) {
	query := `
		UPDATE assignments SET
			end_date = $2,
			status = $3,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + assignmentColumns

	row := s.db.QueryRow(ctx, query, id, endDate, types.AssignmentStatusEnded)
	return scanAssignment(row)
}
