package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type IncidentStatus string

const (
	IncidentStatusReported      IncidentStatus = "reported"
	IncidentStatusInvestigating IncidentStatus = "investigating"
	IncidentStatusResolved      IncidentStatus = "resolved"
	IncidentStatusClosed        IncidentStatus = "closed"
)

// IsValid checks if the incident status is a known value.
func (s IncidentStatus) IsValid() bool {
	switch s {
	case IncidentStatusReported, IncidentStatusInvestigating, IncidentStatusResolved, IncidentStatusClosed:
		return true
	}
	return false
}

type IncidentSeverity string

const (
	IncidentSeverityMinor    IncidentSeverity = "minor"
	IncidentSeverityModerate IncidentSeverity = "moderate"
	IncidentSeverityMajor    IncidentSeverity = "major"
)

// IsValid checks if the incident severity is a known value.
func (s IncidentSeverity) IsValid() bool {
	switch s {
	case IncidentSeverityMinor, IncidentSeverityModerate, IncidentSeverityMajor:
		return true
	}
	return false
}

// Incident records damage, accidents or violations involving a driver or
// vehicle. Resolving a negligence incident raises a pending deduction.
type Incident struct {
	ID            int64            `json:"id"`
	DriverID      *string          `json:"driverId,omitempty"`
	VehicleID     *string          `json:"vehicleId,omitempty"`
	IncidentDate  time.Time        `json:"incidentDate"`
	Location      *string          `json:"location,omitempty"`
	IncidentType  string           `json:"incidentType"`
	Severity      IncidentSeverity `json:"severity"`
	Description   *string          `json:"description,omitempty"`
	IsNegligence  bool             `json:"isNegligence"`
	EstimatedCost decimal.Decimal  `json:"estimatedCost"`
	Status        IncidentStatus   `json:"status"`
	ReportedBy    *string          `json:"reportedBy,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// IncidentCreate is the request body for reporting an incident.
type IncidentCreate struct {
	DriverID      *string          `json:"driverId,omitempty" binding:"omitempty,uuid"`
	VehicleID     *string          `json:"vehicleId,omitempty" binding:"omitempty,uuid"`
	IncidentDate  time.Time        `json:"incidentDate" binding:"required"`
	Location      *string          `json:"location,omitempty"`
	IncidentType  string           `json:"incidentType" binding:"required,max=64"`
	Severity      IncidentSeverity `json:"severity" binding:"required"`
	Description   *string          `json:"description,omitempty"`
	IsNegligence  bool             `json:"isNegligence"`
	EstimatedCost decimal.Decimal  `json:"estimatedCost"`
}

// IncidentResolve is the request body for closing out an incident.
type IncidentResolve struct {
	Status IncidentStatus `json:"status" binding:"required"`
	// DeductionAmount, when set on a negligence incident, raises a pending
	// deduction against the driver for that amount.
	DeductionAmount *decimal.Decimal `json:"deductionAmount,omitempty"`
	Reason          *string          `json:"reason,omitempty"`
}
