// Package service implements fleet administration: driver profiles,
// vehicles, and driver-vehicle assignments.
package service

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/fleetdesk/fleetdesk-backend/errors"
	istore "github.com/fleetdesk/fleetdesk-backend/internal/store"
	"github.com/fleetdesk/fleetdesk-backend/logger"
	"github.com/fleetdesk/fleetdesk-backend/types"
)

// FleetService manages drivers, vehicles and their assignments.
type FleetService struct {
	drivers     istore.DriverStore
	vehicles    istore.VehicleStore
	assignments istore.AssignmentStore
}

// NewFleetService creates a new fleet service.
func NewFleetService(drivers istore.DriverStore, vehicles istore.VehicleStore, assignments istore.AssignmentStore) *FleetService {
	return &FleetService{
		drivers:     drivers,
		vehicles:    vehicles,
		assignments: assignments,
	}
}

// RegisterDriver creates a driver profile. New drivers start active.
func (s *FleetService) RegisterDriver(ctx context.Context, create *types.DriverCreate) (*types.Driver, error) {
	driver, err := s.drivers.CreateDriver(ctx, create)
	if err != nil {
		if errors.Is(err, istore.ErrDuplicate) {
			return nil, apperrors.NewConflictError("driver_exists", "a driver with this license number already exists")
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	logger.GetLogger().Infow("Driver registered", "driverID", driver.ID, "name", driver.Name)
	return driver, nil
}

// GetDriver retrieves a driver profile by ID.
func (s *FleetService) GetDriver(ctx context.Context, id string) (*types.Driver, error) {
	driver, err := s.drivers.GetDriver(ctx, id)
	if err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.DriverNotFound(id)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return driver, nil
}

// ListDrivers lists all driver profiles.
func (s *FleetService) ListDrivers(ctx context.Context) ([]*types.Driver, error) {
	drivers, err := s.drivers.ListDrivers(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return drivers, nil
}

// UpdateDriver applies a partial update to a driver profile.
func (s *FleetService) UpdateDriver(ctx context.Context, id string, update *types.DriverUpdate) (*types.Driver, error) {
	if update.Status != nil && !update.Status.IsValid() {
		return nil, apperrors.ValidationFailed("invalid driver status", string(*update.Status))
	}

	driver, err := s.drivers.UpdateDriver(ctx, id, update)
	if err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.DriverNotFound(id)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return driver, nil
}

// DeleteDriver removes a driver profile.
func (s *FleetService) DeleteDriver(ctx context.Context, id string) error {
	if err := s.drivers.DeleteDriver(ctx, id); err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return apperrors.DriverNotFound(id)
		}
		return apperrors.NewDatabaseError(err)
	}

	logger.GetLogger().Infow("Driver deleted", "driverID", id)
	return nil
}

// RegisterVehicle creates a vehicle record.
func (s *FleetService) RegisterVehicle(ctx context.Context, create *types.VehicleCreate) (*types.Vehicle, error) {
	vehicle, err := s.vehicles.CreateVehicle(ctx, create)
	if err != nil {
		if errors.Is(err, istore.ErrDuplicate) {
			return nil, apperrors.NewConflictError("vehicle_exists", "a vehicle with this registration number already exists")
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	logger.GetLogger().Infow("Vehicle registered", "vehicleID", vehicle.ID, "registration", vehicle.RegistrationNumber)
	return vehicle, nil
}

// GetVehicle retrieves a vehicle by ID.
func (s *FleetService) GetVehicle(ctx context.Context, id string) (*types.Vehicle, error) {
	vehicle, err := s.vehicles.GetVehicle(ctx, id)
	if err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.NotFound("Vehicle", id)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return vehicle, nil
}

// ListVehicles lists all vehicles.
func (s *FleetService) ListVehicles(ctx context.Context) ([]*types.Vehicle, error) {
	vehicles, err := s.vehicles.ListVehicles(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return vehicles, nil
}

// UpdateVehicle applies a partial update to a vehicle.
func (s *FleetService) UpdateVehicle(ctx context.Context, id string, update *types.VehicleUpdate) (*types.Vehicle, error) {
	if update.Status != nil && !update.Status.IsValid() {
		return nil, apperrors.ValidationFailed("invalid vehicle status", string(*update.Status))
	}

	vehicle, err := s.vehicles.UpdateVehicle(ctx, id, update)
	if err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.NotFound("Vehicle", id)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return vehicle, nil
}

// DeleteVehicle removes a vehicle record.
func (s *FleetService) DeleteVehicle(ctx context.Context, id string) error {
	if err := s.vehicles.DeleteVehicle(ctx, id); err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return apperrors.NotFound("Vehicle", id)
		}
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// AssignVehicle links a vehicle to a driver. Both must exist.
func (s *FleetService) AssignVehicle(ctx context.Context, create *types.AssignmentCreate, assignedBy string) (*types.Assignment, error) {
	if _, err := s.GetDriver(ctx, create.DriverID); err != nil {
		return nil, err
	}
	if _, err := s.GetVehicle(ctx, create.VehicleID); err != nil {
		return nil, err
	}

	assignment, err := s.assignments.CreateAssignment(ctx, create, assignedBy)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	logger.GetLogger().Infow("Vehicle assigned",
		"assignmentID", assignment.ID,
		"driverID", assignment.DriverID,
		"vehicleID", assignment.VehicleID,
	)
	return assignment, nil
}

// GetAssignment retrieves an assignment by ID.
func (s *FleetService) GetAssignment(ctx context.Context, id int64) (*types.Assignment, error) {
	assignment, err := s.assignments.GetAssignment(ctx, id)
	if err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.NotFound("Assignment", id)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return assignment, nil
}

// ListAssignments lists all assignments.
func (s *FleetService) ListAssignments(ctx context.Context) ([]*types.Assignment, error) {
	assignments, err := s.assignments.ListAssignments(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return assignments, nil
}

// EndAssignment closes an active assignment as of endDate (now if zero).
func (s *FleetService) EndAssignment(ctx context.Context, id int64, endDate time.Time) (*types.Assignment, error) {
	if endDate.IsZero() {
		endDate = time.Now()
	}

	assignment, err := s.assignments.EndAssignment(ctx, id, endDate)
	if err != nil {
		switch {
		case errors.Is(err, istore.ErrNotFound):
			return nil, apperrors.NotFound("Assignment", id)
		case errors.Is(err, istore.ErrNotEligible):
			return nil, apperrors.NewConflictError("assignment_ended", "assignment is already ended")
		default:
			return nil, apperrors.NewDatabaseError(err)
		}
	}
	return assignment, nil
}
