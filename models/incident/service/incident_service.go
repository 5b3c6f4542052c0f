// Package service implements incident reporting and resolution. Resolving
// a negligence incident can raise a pending deduction against the driver.
package service

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/fleetdesk/fleetdesk-backend/errors"
	"github.com/fleetdesk/fleetdesk-backend/internal/events"
	istore "github.com/fleetdesk/fleetdesk-backend/internal/store"
	"github.com/fleetdesk/fleetdesk-backend/logger"
	"github.com/fleetdesk/fleetdesk-backend/types"
)

// IncidentService manages the incident workflow.
type IncidentService struct {
	incidents  istore.IncidentStore
	deductions istore.DeductionStore
	publisher  events.Publisher
}

// NewIncidentService creates a new incident service.
func NewIncidentService(incidents istore.IncidentStore, deductions istore.DeductionStore, publisher events.Publisher) *IncidentService {
	return &IncidentService{
		incidents:  incidents,
		deductions: deductions,
		publisher:  publisher,
	}
}

// ReportIncident records a new incident in reported state.
func (s *IncidentService) ReportIncident(ctx context.Context, create *types.IncidentCreate, reportedBy string) (*types.Incident, error) {
	if !create.Severity.IsValid() {
		return nil, apperrors.ValidationFailed("invalid severity", string(create.Severity))
	}
	if create.EstimatedCost.IsNegative() {
		return nil, apperrors.InvalidAmount("invalid estimated cost", "estimated cost cannot be negative")
	}
	if create.DriverID == nil && create.VehicleID == nil {
		return nil, apperrors.ValidationFailed("missing subject", "an incident needs a driver or a vehicle")
	}

	incident, err := s.incidents.CreateIncident(ctx, create, reportedBy)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	logger.GetLogger().Infow("Incident reported",
		"incidentID", incident.ID,
		"severity", incident.Severity,
		"isNegligence", incident.IsNegligence,
	)
	return incident, nil
}

// GetIncident retrieves an incident by ID.
func (s *IncidentService) GetIncident(ctx context.Context, id int64) (*types.Incident, error) {
	incident, err := s.incidents.GetIncident(ctx, id)
	if err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.NotFound("Incident", id)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return incident, nil
}

// ListIncidents lists all incidents.
func (s *IncidentService) ListIncidents(ctx context.Context) ([]*types.Incident, error) {
	incidents, err := s.incidents.ListIncidents(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return incidents, nil
}

// ResolveIncident moves an incident to a resolution status. When the
// incident is negligence and a deduction amount is given, a pending
// deduction is raised against the driver for later review.
func (s *IncidentService) ResolveIncident(ctx context.Context, id int64, req *types.IncidentResolve, actorID string) (*types.Incident, error) {
	if req.Status != types.IncidentStatusResolved && req.Status != types.IncidentStatusClosed && req.Status != types.IncidentStatusInvestigating {
		return nil, apperrors.ValidationFailed(
			"invalid resolution status",
			fmt.Sprintf("status must be %q, %q or %q", types.IncidentStatusInvestigating, types.IncidentStatusResolved, types.IncidentStatusClosed),
		)
	}

	incident, err := s.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DeductionAmount != nil {
		if req.DeductionAmount.IsNegative() {
			return nil, apperrors.InvalidAmount("invalid deduction amount", "deduction amount cannot be negative")
		}
		if !incident.IsNegligence {
			return nil, apperrors.ValidationFailed("deduction not allowed", "only negligence incidents can raise a deduction")
		}
		if incident.DriverID == nil {
			return nil, apperrors.ValidationFailed("deduction not allowed", "the incident has no driver to charge")
		}
	}

	updated, err := s.incidents.UpdateIncidentStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, istore.ErrNotFound) {
			return nil, apperrors.NotFound("Incident", id)
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	if req.DeductionAmount != nil && req.DeductionAmount.IsPositive() {
		incidentType := incident.IncidentType
		deduction, err := s.deductions.CreateDeduction(ctx, &types.DeductionCreate{
			DriverID:      *incident.DriverID,
			IncidentID:    &incident.ID,
			DeductionType: &incidentType,
			Amount:        *req.DeductionAmount,
			Reason:        req.Reason,
		})
		if err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}

		logger.GetLogger().Infow("Deduction raised from incident",
			"incidentID", incident.ID,
			"deductionID", deduction.ID,
			"amount", deduction.Amount,
		)
	}

	s.publishResolved(ctx, updated, actorID)
	return updated, nil
}

func (s *IncidentService) publishResolved(ctx context.Context, incident *types.Incident, actorID string) {
	if s.publisher == nil || incident.DriverID == nil {
		return
	}

	event, err := events.NewEvent(events.EventIncidentResolved, *incident.DriverID, actorID, map[string]any{
		"incidentId": incident.ID,
		"status":     incident.Status,
	})
	if err == nil {
		err = s.publisher.Publish(ctx, *incident.DriverID, event)
	}
	if err != nil {
		logger.GetLogger().Warnw("Failed to publish incident event", "error", err, "incidentID", incident.ID)
	}
}
