package postgres

import (
	"context"

	"github.com/fleetdesk/fleetdesk-backend/internal/store"
	"github.com/fleetdesk/fleetdesk-backend/types"
)

// DriverStore implements store.DriverStore using PostgreSQL.
type DriverStore struct {
	db DB
}

// NewDriverStore creates a new DriverStore instance.
func NewDriverStore(db DB) *DriverStore {
	return &DriverStore{db: db}
}

const driverColumns = `id, name, phone, email, license_number, license_expiry,
		address, join_date, status, emergency_contact, user_id, created_at, updated_at`

func scanDriver(row interface{ Scan(dest ...any) error }) (*types.Driver, error) {
	d := &types.Driver{}
	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Phone,
		&d.Email,
		&d.LicenseNumber,
		&d.LicenseExpiry,
		&d.Address,
		&d.JoinDate,
		&d.Status,
		&d.EmergencyContact,
		&d.UserID,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return d, nil
}

// CreateDriver inserts a new driver profile with status active.
func (s *DriverStore) CreateDriver(ctx context.Context, create *types.DriverCreate) (*types.Driver, error) {
	query := `
		INSERT INTO drivers (name, phone, email, license_number, license_expiry,
			address, join_date, status, emergency_contact)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + driverColumns

	row := s.db.QueryRow(ctx, query,
		create.Name,
		create.Phone,
		create.Email,
		create.LicenseNumber,
		create.LicenseExpiry,
		create.Address,
		create.JoinDate,
		types.DriverStatusActive,
		create.EmergencyContact,
	)
	return scanDriver(row)
}

// GetDriver retrieves a driver by ID.
func (s *DriverStore) GetDriver(ctx context.Context, id string) (*types.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`
	return scanDriver(s.db.QueryRow(ctx, query, id))
}

// GetDriverByUserID resolves the driver profile linked to an auth user.
func (s *DriverStore) GetDriverByUserID(ctx context.Context, userID string) (*types.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE user_id = $1`
	return scanDriver(s.db.QueryRow(ctx, query, userID))
}

// ListDrivers returns all drivers ordered by name.
func (s *DriverStore) ListDrivers(ctx context.Context) ([]*types.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers ORDER BY name`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var drivers []*types.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

// UpdateDriver applies a partial update; nil fields keep their current value.
func (s *DriverStore) UpdateDriver(ctx context.Context, id string, update *types.DriverUpdate) (*types.Driver, error) {
	query := `
		UPDATE drivers SET
			name = COALESCE($2, name),
			phone = COALESCE($3, phone),
			email = COALESCE($4, email),
			license_number = COALESCE($5, license_number),
			license_expiry = COALESCE($6, license_expiry),
			address = COALESCE($7, address),
			status = COALESCE($8, status),
			emergency_contact = COALESCE($9, emergency_contact),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + driverColumns

	row := s.db.QueryRow(ctx, query,
		id,
		update.Name,
		update.Phone,
		update.Email,
		update.LicenseNumber,
		update.LicenseExpiry,
		update.Address,
		update.Status,
		update.EmergencyContact,
	)
	return scanDriver(row)
}

// DeleteDriver removes a driver profile.
func (s *DriverStore) DeleteDriver(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM drivers WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
