package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/fleetdesk/fleetdesk-backend/errors"
	istore "github.com/fleetdesk/fleetdesk-backend/internal/store"
	"github.com/fleetdesk/fleetdesk-backend/logger"
	"github.com/fleetdesk/fleetdesk-backend/types"
)

func init() {
	logger.IsTest = true
}

const (
	testDriverID  = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	testVehicleID = "9b2d7f10-4c1a-4e8a-9f30-6f9f4a2f51bd"
)

type mockDriverStore struct {
	mock.Mock
}

func (m *mockDriverStore) CreateDriver(ctx context.Context, create *types.DriverCreate) (*types.Driver, error) {
	args := m.Called(ctx, create)
	if d := args.Get(0); d != nil {
		return d.(*types.Driver), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDriverStore) GetDriver(ctx context.Context, id string) (*types.Driver, error) {
	args := m.Called(ctx, id)
	if d := args.Get(0); d != nil {
		return d.(*types.Driver), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDriverStore) ListDrivers(ctx context.Context) ([]*types.Driver, error) {
	args := m.Called(ctx)
	if d := args.Get(0); d != nil {
		return d.([]*types.Driver), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDriverStore) UpdateDriver(ctx context.Context, id string, update *types.DriverUpdate) (*types.Driver, error) {
	args := m.Called(ctx, id, update)
	if d := args.Get(0); d != nil {
		return d.(*types.Driver), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDriverStore) DeleteDriver(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockDriverStore) GetDriverByUserID(ctx context.Context, userID string) (*types.Driver, error) {
	args := m.Called(ctx, userID)
	if d := args.Get(0); d != nil {
		return d.(*types.Driver), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockVehicleStore struct {
	mock.Mock
}

func (m *mockVehicleStore) CreateVehicle(ctx context.Context, create *types.VehicleCreate) (*types.Vehicle, error) {
	args := m.Called(ctx, create)
	if v := args.Get(0); v != nil {
		return v.(*types.Vehicle), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVehicleStore) GetVehicle(ctx context.Context, id string) (*types.Vehicle, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*types.Vehicle), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVehicleStore) ListVehicles(ctx context.Context) ([]*types.Vehicle, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*types.Vehicle), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVehicleStore) UpdateVehicle(ctx context.Context, id string, update *types.VehicleUpdate) (*types.Vehicle, error) {
	args := m.Called(ctx, id, update)
	if v := args.Get(0); v != nil {
		return v.(*types.Vehicle), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVehicleStore) DeleteVehicle(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockAssignmentStore struct {
	mock.Mock
}

func (m *mockAssignmentStore) CreateAssignment(ctx context.Context, create *types.AssignmentCreate, assignedBy string) (*types.Assignment, error) {
	args := m.Called(ctx, create, assignedBy)
	if a := args.Get(0); a != nil {
		return a.(*types.Assignment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAssignmentStore) GetAssignment(ctx context.Context, id int64) (*types.Assignment, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*types.Assignment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAssignmentStore) ListAssignments(ctx context.Context) ([]*types.Assignment, error) {
	args := m.Called(ctx)
	if a := args.Get(0); a != nil {
		return a.([]*types.Assignment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAssignmentStore) EndAssignment(ctx context.Context, id int64, endDate time.Time) (*types.Assignment, error) {
	args := m.Called(ctx, id, endDate)
	if a := args.Get(0); a != nil {
		return a.(*types.Assignment), args.Error(1)
	}
	return nil, args.Error(1)
}

func newFleetService() (*FleetService, *mockDriverStore, *mockVehicleStore, *mockAssignmentStore) {
	drivers := new(mockDriverStore)
	vehicles := new(mockVehicleStore)
	assignments := new(mockAssignmentStore)
	return NewFleetService(drivers, vehicles, assignments), drivers, vehicles, assignments
}

func TestRegisterDriver(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a new driver", func(t *testing.T) {
		svc, drivers, _, _ := newFleetService()
		create := &types.DriverCreate{Name: "Arjun Mehta"}
		drivers.On("CreateDriver", ctx, create).Return(&types.Driver{
			ID:     testDriverID,
			Name:   "Arjun Mehta",
			Status: types.DriverStatusActive,
		}, nil)

		driver, err := svc.RegisterDriver(ctx, create)
		require.NoError(t, err)
		assert.Equal(t, testDriverID, driver.ID)
		assert.Equal(t, types.DriverStatusActive, driver.Status)
		drivers.AssertExpectations(t)
	})

	t.Run("duplicate license number conflicts", func(t *testing.T) {
		svc, drivers, _, _ := newFleetService()
		create := &types.DriverCreate{Name: "Arjun Mehta"}
		drivers.On("CreateDriver", ctx, create).Return(nil, istore.ErrDuplicate)

		_, err := svc.RegisterDriver(ctx, create)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ConflictError, appErr.Type)
	})
}

func TestUpdateDriver(t *testing.T) {
	ctx := context.Background()

	t.Run("suspends a driver", func(t *testing.T) {
		svc, drivers, _, _ := newFleetService()
		status := types.DriverStatusSuspended
		update := &types.DriverUpdate{Status: &status}
		drivers.On("UpdateDriver", ctx, testDriverID, update).Return(&types.Driver{
			ID:     testDriverID,
			Name:   "Arjun Mehta",
			Status: types.DriverStatusSuspended,
		}, nil)

		driver, err := svc.UpdateDriver(ctx, testDriverID, update)
		require.NoError(t, err)
		assert.Equal(t, types.DriverStatusSuspended, driver.Status)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		svc, drivers, _, _ := newFleetService()
		status := types.DriverStatus("on-break")

		_, err := svc.UpdateDriver(ctx, testDriverID, &types.DriverUpdate{Status: &status})
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ValidationError, appErr.Type)
		drivers.AssertNotCalled(t, "UpdateDriver", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown driver", func(t *testing.T) {
		svc, drivers, _, _ := newFleetService()
		drivers.On("UpdateDriver", ctx, testDriverID, mock.Anything).Return(nil, istore.ErrNotFound)

		_, err := svc.UpdateDriver(ctx, testDriverID, &types.DriverUpdate{})
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.NotFoundError, appErr.Type)
	})
}

func TestRegisterVehicle(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a vehicle", func(t *testing.T) {
		svc, _, vehicles, _ := newFleetService()
		create := &types.VehicleCreate{RegistrationNumber: "KA01AB1234"}
		vehicles.On("CreateVehicle", ctx, create).Return(&types.Vehicle{
			ID:                 testVehicleID,
			RegistrationNumber: "KA01AB1234",
			Status:             types.VehicleStatusActive,
		}, nil)

		vehicle, err := svc.RegisterVehicle(ctx, create)
		require.NoError(t, err)
		assert.Equal(t, "KA01AB1234", vehicle.RegistrationNumber)
	})

	t.Run("duplicate registration number conflicts", func(t *testing.T) {
		svc, _, vehicles, _ := newFleetService()
		create := &types.VehicleCreate{RegistrationNumber: "KA01AB1234"}
		vehicles.On("CreateVehicle", ctx, create).Return(nil, istore.ErrDuplicate)

		_, err := svc.RegisterVehicle(ctx, create)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ConflictError, appErr.Type)
	})
}

func TestAssignVehicle(t *testing.T) {
	ctx := context.Background()
	managerID := "manager-1"

	t.Run("assigns a vehicle to a driver", func(t *testing.T) {
		svc, drivers, vehicles, assignments := newFleetService()
		create := &types.AssignmentCreate{DriverID: testDriverID, VehicleID: testVehicleID}
		drivers.On("GetDriver", ctx, testDriverID).Return(&types.Driver{ID: testDriverID}, nil)
		vehicles.On("GetVehicle", ctx, testVehicleID).Return(&types.Vehicle{ID: testVehicleID}, nil)
		assignments.On("CreateAssignment", ctx, create, managerID).Return(&types.Assignment{
			ID:        1,
			DriverID:  testDriverID,
			VehicleID: testVehicleID,
			Status:    types.AssignmentStatusActive,
		}, nil)

		assignment, err := svc.AssignVehicle(ctx, create, managerID)
		require.NoError(t, err)
		assert.Equal(t, types.AssignmentStatusActive, assignment.Status)
		assignments.AssertExpectations(t)
	})

	t.Run("unknown driver blocks assignment", func(t *testing.T) {
		svc, drivers, _, assignments := newFleetService()
		drivers.On("GetDriver", ctx, testDriverID).Return(nil, istore.ErrNotFound)

		_, err := svc.AssignVehicle(ctx, &types.AssignmentCreate{
			DriverID:  testDriverID,
			VehicleID: testVehicleID,
		}, managerID)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.NotFoundError, appErr.Type)
		assignments.AssertNotCalled(t, "CreateAssignment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown vehicle blocks assignment", func(t *testing.T) {
		svc, drivers, vehicles, assignments := newFleetService()
		drivers.On("GetDriver", ctx, testDriverID).Return(&types.Driver{ID: testDriverID}, nil)
		vehicles.On("GetVehicle", ctx, testVehicleID).Return(nil, istore.ErrNotFound)

		_, err := svc.AssignVehicle(ctx, &types.AssignmentCreate{
			DriverID:  testDriverID,
			VehicleID: testVehicleID,
		}, managerID)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.NotFoundError, appErr.Type)
		assignments.AssertNotCalled(t, "CreateAssignment", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestEndAssignment(t *testing.T) {
	ctx := context.Background()

	t.Run("ends an active assignment", func(t *testing.T) {
		svc, _, _, assignments := newFleetService()
		endDate := time.Date(2025, 6, 30, 18, 0, 0, 0, time.UTC)
		ended := endDate
		assignments.On("EndAssignment", ctx, int64(1), endDate).Return(&types.Assignment{
			ID:      1,
			EndDate: &ended,
			Status:  types.AssignmentStatusEnded,
		}, nil)

		assignment, err := svc.EndAssignment(ctx, 1, endDate)
		require.NoError(t, err)
		assert.Equal(t, types.AssignmentStatusEnded, assignment.Status)
		require.NotNil(t, assignment.EndDate)
	})

	t.Run("defaults end date to now", func(t *testing.T) {
		svc, _, _, assignments := newFleetService()
		assignments.On("EndAssignment", ctx, int64(1), mock.MatchedBy(func(end time.Time) bool {
			return time.Since(end) < time.Minute
		})).Return(&types.Assignment{ID: 1, Status: types.AssignmentStatusEnded}, nil)

		_, err := svc.EndAssignment(ctx, 1, time.Time{})
		require.NoError(t, err)
		assignments.AssertExpectations(t)
	})

	t.Run("already ended conflicts", func(t *testing.T) {
		svc, _, _, assignments := newFleetService()
		assignments.On("EndAssignment", ctx, int64(1), mock.Anything).Return(nil, istore.ErrNotEligible)

		_, err := svc.EndAssignment(ctx, 1, time.Now())
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ConflictError, appErr.Type)
	})

	t.Run("store failure surfaces as database error", func(t *testing.T) {
		svc, _, _, assignments := newFleetService()
		assignments.On("EndAssignment", ctx, int64(1), mock.Anything).Return(nil, errors.New("connection reset"))

		_, err := svc.EndAssignment(ctx, 1, time.Now())
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.DatabaseError, appErr.Type)
	})
}
