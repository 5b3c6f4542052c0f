package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type DeductionStatus string

const (
	DeductionStatusPending  DeductionStatus = "pending"
	DeductionStatusApproved DeductionStatus = "approved"
	DeductionStatusRejected DeductionStatus = "rejected"
)

// IsValid checks if the deduction status is a known value.
func (s DeductionStatus) IsValid() bool {
	switch s {
	case DeductionStatusPending, DeductionStatusApproved, DeductionStatusRejected:
		return true
	}
	return false
}

// Deduction is a charge against a driver's future payout, usually raised
// from an incident. Once AppliedToPayoutID is set the deduction is consumed
// and must never be selected for another payout.
type Deduction struct {
	ID               int64           `json:"id"`
	DriverID         string          `json:"driverId"`
	IncidentID       *int64          `json:"incidentId,omitempty"`
	DeductionType    *string         `json:"deductionType,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	Reason           *string         `json:"reason,omitempty"`
	Status           DeductionStatus `json:"status"`
	ApprovedBy       *string         `json:"approvedBy,omitempty"`
	ApprovedAt       *time.Time      `json:"approvedAt,omitempty"`
	AppliedToPayoutID *int64         `json:"appliedToPayoutId,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// DeductionCreate is the request body for raising a deduction directly.
type DeductionCreate struct {
	DriverID      string          `json:"driverId" binding:"required,uuid"`
	IncidentID    *int64          `json:"incidentId,omitempty"`
	DeductionType *string         `json:"deductionType,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        *string         `json:"reason,omitempty"`
}

// DeductionReview is the request body for approving or rejecting a deduction.
type DeductionReview struct {
	Action ApprovalAction `json:"action" binding:"required"`
}
