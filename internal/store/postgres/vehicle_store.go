package postgres

import (
	"context"

	"github.com/fleetdesk/fleetdesk-backend/internal/store"
	"github.com/fleetdesk/fleetdesk-backend/types"
)

// VehicleStore implements store.VehicleStore using PostgreSQL.
type VehicleStore struct {
	db DB
}

// NewVehicleStore creates a new VehicleStore instance.
func NewVehicleStore(db DB) *VehicleStore {
	return &VehicleStore{db: db}
}

const vehicleColumns = `id, registration_number, model, brand, year, color,
		insurance_number, insurance_expiry, status, created_at, updated_at`

func scanVehicle(row interface{ Scan(dest ...any) error }) (*types.Vehicle, error) {
	v := &types.Vehicle{}
	err := row.Scan(
		&v.ID,
		&v.RegistrationNumber,
		&v.Model,
		&v.Brand,
		&v.Year,
		&v.Color,
		&v.InsuranceNumber,
		&v.InsuranceExpiry,
		&v.Status,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return v, nil
}

// CreateVehicle inserts a new vehicle with status active.
func (s *VehicleStore) CreateVehicle(ctx context.Context, create *types.VehicleCreate) (*types.Vehicle, error) {
	query := `
		INSERT INTO vehicles (registration_number, model, brand, year, color,
			insurance_number, insurance_expiry, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + vehicleColumns

	row := s.db.QueryRow(ctx, query,
		create.RegistrationNumber,
		create.Model,
		create.Brand,
		create.Year,
		create.Color,
		create.InsuranceNumber,
		create.InsuranceExpiry,
		types.VehicleStatusActive,
	)
	return scanVehicle(row)
}

// GetVehicle retrieves a vehicle by ID.
func (s *VehicleStore) GetVehicle(ctx context.Context, id string) (*types.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	return scanVehicle(s.db.QueryRow(ctx, query, id))
}

// ListVehicles returns all vehicles ordered by registration number.
func (s *VehicleStore) ListVehicles(ctx context.Context) ([]*types.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles ORDER BY registration_number`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var vehicles []*types.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// UpdateVehicle applies a partial update; nil fields keep their current value.
func (s *VehicleStore) UpdateVehicle(ctx context.Context, id string, update *types.VehicleUpdate) (*types.Vehicle, error) {
	query := `
		UPDATE vehicles SET
			model = COALESCE($2, model),
			brand = COALESCE($3, brand),
			year = COALESCE($4, year),
			color = COALESCE($5, color),
			insurance_number = COALESCE($6, insurance_number),
			insurance_expiry = COALESCE($7, insurance_expiry),
			status = COALESCE($8, status),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + vehicleColumns

	row := s.db.QueryRow(ctx, query,
		id,
		update.Model,
		update.Brand,
		update.Year,
		update.Color,
		update.InsuranceNumber,
		update.InsuranceExpiry,
		update.Status,
	)
	return scanVehicle(row)
}

// DeleteVehicle removes a vehicle record.
func (s *VehicleStore) DeleteVehicle(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
