package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type PayoutApprovalStatus string

const (
	PayoutApprovalPending  PayoutApprovalStatus = "pending"
	PayoutApprovalApproved PayoutApprovalStatus = "approved"
	PayoutApprovalRejected PayoutApprovalStatus = "rejected"
)

// IsValid checks if the approval status is a known value.
func (s PayoutApprovalStatus) IsValid() bool {
	switch s {
	case PayoutApprovalPending, PayoutApprovalApproved, PayoutApprovalRejected:
		return true
	}
	return false
}

type PayoutPaymentStatus string

const (
	PayoutPaymentPending PayoutPaymentStatus = "pending"
	PayoutPaymentPaid    PayoutPaymentStatus = "paid"
	PayoutPaymentFailed  PayoutPaymentStatus = "failed"
)

// IsValid checks if the payment status is a known value.
func (s PayoutPaymentStatus) IsValid() bool {
	switch s {
	case PayoutPaymentPending, PayoutPaymentPaid, PayoutPaymentFailed:
		return true
	}
	return false
}

type ApprovalAction string

const (
	ApprovalActionApprove ApprovalAction = "approve"
	ApprovalActionReject  ApprovalAction = "reject"
)

// IsValid checks if the approval action is a known value.
func (a ApprovalAction) IsValid() bool {
	return a == ApprovalActionApprove || a == ApprovalActionReject
}

// ResultStatus maps the action to the approval status it produces.
func (a ApprovalAction) ResultStatus() PayoutApprovalStatus {
	if a == ApprovalActionApprove {
		return PayoutApprovalApproved
	}
	return PayoutApprovalRejected
}

// Payout is the computed settlement for one driver for one date.
// Invariant: NetPayout = max(computed payout - DeductionAmount, 0).
type Payout struct {
	ID               int64                `json:"id"`
	DriverID         string               `json:"driverId"`
	PayoutDate       time.Time            `json:"payoutDate"`
	RevenueAmount    decimal.Decimal      `json:"revenueAmount"`
	CommissionAmount decimal.Decimal      `json:"commissionAmount"`
	IncentiveAmount  decimal.Decimal      `json:"incentiveAmount"`
	DeductionAmount  decimal.Decimal      `json:"deductionAmount"`
	NetPayout        decimal.Decimal      `json:"netPayout"`
	ApprovalStatus   PayoutApprovalStatus `json:"approvalStatus"`
	ApprovedBy       *string              `json:"approvedBy,omitempty"`
	ApprovedAt       *time.Time           `json:"approvedAt,omitempty"`
	PaymentStatus    PayoutPaymentStatus  `json:"paymentStatus"`
	PaymentReference *string              `json:"paymentReference,omitempty"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

// CanReview reports whether an approve/reject decision may still be taken.
// Approval states are terminal once left.
func (p *Payout) CanReview() bool {
	return p.ApprovalStatus == PayoutApprovalPending
}

// CanRecordPayment reports whether a paid/failed outcome may be recorded.
// Payment requires prior approval and a still-pending payment state.
func (p *Payout) CanRecordPayment() bool {
	return p.ApprovalStatus == PayoutApprovalApproved && p.PaymentStatus == PayoutPaymentPending
}

// PayoutGenerate is the request body for generating a payout.
type PayoutGenerate struct {
	DriverID string `json:"driverId" binding:"required,uuid"`
	// PayoutDate is the calendar date in YYYY-MM-DD form.
	PayoutDate string `json:"payoutDate" binding:"required"`
}

// PayoutApprovalRequest is the request body for the approval endpoint.
type PayoutApprovalRequest struct {
	Action ApprovalAction `json:"action" binding:"required"`
}

// PayoutPaymentRequest is the request body for the payment endpoint.
type PayoutPaymentRequest struct {
	Status           PayoutPaymentStatus `json:"status" binding:"required"`
	PaymentReference *string             `json:"paymentReference,omitempty"`
}
