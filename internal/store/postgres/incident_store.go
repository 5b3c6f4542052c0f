package postgres

import (
	"context"

	"github.com/fleetdesk/fleetdesk-backend/types"
)

// IncidentStore implements store.IncidentStore using PostgreSQL.
type IncidentStore struct {
	db DB
}

// NewIncidentStore creates a new IncidentStore instance.
func NewIncidentStore(db DB) *IncidentStore {
	return &IncidentStore{db: db}
}

const incidentColumns = `id, driver_id, vehicle_id, incident_date, location,
		incident_type, severity, description, is_negligence, estimated_cost,
		status, reported_by, created_at, updated_at`

func scanIncident(row interface{ Scan(dest ...any) error }) (*types.Incident, error) {
	i := &types.Incident{}
	err := row.Scan(
		&i.ID,
		&i.DriverID,
		&i.VehicleID,
		&i.IncidentDate,
		&i.Location,
		&i.IncidentType,
		&i.Severity,
		&i.Description,
		&i.IsNegligence,
		&i.EstimatedCost,
		&i.Status,
		&i.ReportedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return i, nil
}

// CreateIncident records a new incident in reported state.
func (s *IncidentStore) CreateIncident(ctx context.Context, create *types.IncidentCreate, reportedBy string) (*types.Incident, error) {
	query := `
		INSERT INTO incidents (driver_id, vehicle_id, incident_date, location,
			incident_type, severity, description, is_negligence, estimated_cost,
			status, reported_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + incidentColumns

	row := s.db.QueryRow(ctx, query,
		create.DriverID,
		create.VehicleID,
		create.IncidentDate,
		create.Location,
		create.IncidentType,
		create.Severity,
		create.Description,
		create.IsNegligence,
		create.EstimatedCost,
		types.IncidentStatusReported,
		reportedBy,
	)
	return scanIncident(row)
}

// GetIncident retrieves an incident by ID.
func (s *IncidentStore) GetIncident(ctx context.Context, id int64) (*types.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1`
	return scanIncident(s.db.QueryRow(ctx, query, id))
}

// ListIncidents returns all incidents, most recent first.
func (s *IncidentStore) ListIncidents(ctx context.Context) ([]*types.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents ORDER BY incident_date DESC`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var incidents []*types.Incident
	for rows.Next() {
		i, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		incidents = append(incidents, i)
	}
	return incidents, rows.Err()
}

// UpdateIncidentStatus moves an incident to a new status.
func (s *IncidentStore) UpdateIncidentStatus(ctx context.Context, id int64, status types.IncidentStatus) (*types.Incident, error) {
	query := `
		UPDATE incidents SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + incidentColumns

	return scanIncident(s.db.QueryRow(ctx, query, id, status))
}
