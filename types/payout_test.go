package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayoutStatusValidity(t *testing.T) {
	assert.True(t, PayoutApprovalPending.IsValid())
	assert.True(t, PayoutApprovalApproved.IsValid())
	assert.True(t, PayoutApprovalRejected.IsValid())
	assert.False(t, PayoutApprovalStatus("settled").IsValid())

	assert.True(t, PayoutPaymentPending.IsValid())
	assert.True(t, PayoutPaymentPaid.IsValid())
	assert.True(t, PayoutPaymentFailed.IsValid())
	assert.False(t, PayoutPaymentStatus("reversed").IsValid())
}

func TestApprovalAction(t *testing.T) {
	assert.True(t, ApprovalActionApprove.IsValid())
	assert.True(t, ApprovalActionReject.IsValid())
	assert.False(t, ApprovalAction("escalate").IsValid())

	assert.Equal(t, PayoutApprovalApproved, ApprovalActionApprove.ResultStatus())
	assert.Equal(t, PayoutApprovalRejected, ApprovalActionReject.ResultStatus())
}

func TestPayoutCanReview(t *testing.T) {
	p := &Payout{ApprovalStatus: PayoutApprovalPending}
	assert.True(t, p.CanReview())

	p.ApprovalStatus = PayoutApprovalApproved
	assert.False(t, p.CanReview())

	p.ApprovalStatus = PayoutApprovalRejected
	assert.False(t, p.CanReview())
}

func TestPayoutCanRecordPayment(t *testing.T) {
	tests := []struct {
		name     string
		approval PayoutApprovalStatus
		payment  PayoutPaymentStatus
		want     bool
	}{
		{"approved and pending", PayoutApprovalApproved, PayoutPaymentPending, true},
		{"pending approval", PayoutApprovalPending, PayoutPaymentPending, false},
		{"rejected", PayoutApprovalRejected, PayoutPaymentPending, false},
		{"already paid", PayoutApprovalApproved, PayoutPaymentPaid, false},
		{"already failed", PayoutApprovalApproved, PayoutPaymentFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Payout{ApprovalStatus: tt.approval, PaymentStatus: tt.payment}
			assert.Equal(t, tt.want, p.CanRecordPayment())
		})
	}
}

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, RoleAdmin.CanApprovePayouts())
	assert.True(t, RoleManager.CanApprovePayouts())
	assert.False(t, RoleDriver.CanApprovePayouts())

	assert.True(t, RoleAdmin.CanRecordPayments())
	assert.False(t, RoleManager.CanRecordPayments())
	assert.False(t, RoleDriver.CanRecordPayments())

	assert.True(t, RoleManager.CanGeneratePayouts())
	assert.False(t, RoleDriver.CanGeneratePayouts())

	assert.False(t, Role("superuser").IsValid())
}
