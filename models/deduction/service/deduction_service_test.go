package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/fleetdesk/fleetdesk-backend/errors"
	"github.com/fleetdesk/fleetdesk-backend/internal/events"
	istore "github.com/fleetdesk/fleetdesk-backend/internal/store"
	"github.com/fleetdesk/fleetdesk-backend/logger"
	"github.com/fleetdesk/fleetdesk-backend/types"
)

func init() {
	logger.IsTest = true
}

type mockDeductionStore struct {
	mock.Mock
}

func (m *mockDeductionStore) CreateDeduction(ctx context.Context, create *types.DeductionCreate) (*types.Deduction, error) {
	args := m.Called(ctx, create)
	if d := args.Get(0); d != nil {
		return d.(*types.Deduction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDeductionStore) GetDeduction(ctx context.Context, id int64) (*types.Deduction, error) {
	args := m.Called(ctx, id)
	if d := args.Get(0); d != nil {
		return d.(*types.Deduction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDeductionStore) ListDriverDeductions(ctx context.Context, driverID string) ([]*types.Deduction, error) {
	args := m.Called(ctx, driverID)
	if d := args.Get(0); d != nil {
		return d.([]*types.Deduction), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDeductionStore) ReviewDeduction(ctx context.Context, id int64, status types.DeductionStatus, reviewerID string, reviewedAt time.Time) (*types.Deduction, error) {
	args := m.Called(ctx, id, status, reviewerID, reviewedAt)
	if d := args.Get(0); d != nil {
		return d.(*types.Deduction), args.Error(1)
	}
	return nil, args.Error(1)
}

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

const testDriverID = "5f0e8b7a-4c3d-4f2e-9a1b-8c7d6e5f4a3b"

func TestCreateDeduction(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending deduction", func(t *testing.T) {
		deductions := new(mockDeductionStore)
		drivers := new(mockDriverStore)
		svc := NewDeductionService(deductions, drivers, events.NewMockPublisher())

		drivers.On("GetDriver", ctx, testDriverID).Return(&types.Driver{ID: testDriverID}, nil)
		deductions.On("CreateDeduction", ctx, mock.Anything).Return(&types.Deduction{
			ID:       11,
			DriverID: testDriverID,
			Amount:   decimal.NewFromInt(200),
			Status:   types.DeductionStatusPending,
		}, nil)

		deduction, err := svc.CreateDeduction(ctx, &types.DeductionCreate{
			DriverID: testDriverID,
			Amount:   decimal.NewFromInt(200),
		})
		require.NoError(t, err)
		assert.Equal(t, types.DeductionStatusPending, deduction.Status)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		svc := NewDeductionService(new(mockDeductionStore), new(mockDriverStore), events.NewMockPublisher())

		_, err := svc.CreateDeduction(ctx, &types.DeductionCreate{
			DriverID: testDriverID,
			Amount:   decimal.NewFromInt(-5),
		})
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.InvalidAmountError, appErr.Type)
	})

	t.Run("unknown driver", func(t *testing.T) {
		deductions := new(mockDeductionStore)
		drivers := new(mockDriverStore)
		svc := NewDeductionService(deductions, drivers, events.NewMockPublisher())

		drivers.On("GetDriver", ctx, testDriverID).Return(nil, istore.ErrNotFound)

		_, err := svc.CreateDeduction(ctx, &types.DeductionCreate{
			DriverID: testDriverID,
			Amount:   decimal.NewFromInt(100),
		})
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.NotFoundError, appErr.Type)
	})
}

func TestReviewDeduction(t *testing.T) {
	ctx := context.Background()
	reviewerID := "manager-1"

	t.Run("approves pending deduction", func(t *testing.T) {
		deductions := new(mockDeductionStore)
		pub := events.NewMockPublisher()
		svc := NewDeductionService(deductions, new(mockDriverStore), pub)

		approved := &types.Deduction{
			ID:       11,
			DriverID: testDriverID,
			Amount:   decimal.NewFromInt(200),
			Status:   types.DeductionStatusApproved,
		}
		deductions.On("ReviewDeduction", ctx, int64(11), types.DeductionStatusApproved, reviewerID, mock.AnythingOfType("time.Time")).
			Return(approved, nil)

		deduction, err := svc.ReviewDeduction(ctx, 11, types.ApprovalActionApprove, reviewerID)
		require.NoError(t, err)
		assert.Equal(t, types.DeductionStatusApproved, deduction.Status)

		published := pub.Published()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventDeductionReviewed, published[0].Type)
	})

	t.Run("already reviewed deduction", func(t *testing.T) {
		deductions := new(mockDeductionStore)
		svc := NewDeductionService(deductions, new(mockDriverStore), events.NewMockPublisher())

		deductions.On("ReviewDeduction", ctx, int64(11), types.DeductionStatusRejected, reviewerID, mock.AnythingOfType("time.Time")).
			Return(nil, istore.ErrNotEligible)
		deductions.On("GetDeduction", ctx, int64(11)).
			Return(&types.Deduction{ID: 11, Status: types.DeductionStatusApproved}, nil)

		_, err := svc.ReviewDeduction(ctx, 11, types.ApprovalActionReject, reviewerID)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.InvalidStatusTransitionError, appErr.Type)
		assert.Contains(t, appErr.Detail, "approved")
	})

	t.Run("invalid action", func(t *testing.T) {
		svc := NewDeductionService(new(mockDeductionStore), new(mockDriverStore), events.NewMockPublisher())

		_, err := svc.ReviewDeduction(ctx, 11, types.ApprovalAction("defer"), reviewerID)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ValidationError, appErr.Type)
	})
}
