// Package commission implements the tiered driver commission schedule.
//
// The business formula: the driver earns the base rate on revenue up to and
// including the daily target, and the incentive rate on revenue strictly
// above it.
//
//	payout = min(revenue, target)*baseRate + max(revenue-target, 0)*incentiveRate
package commission

import (
	"fmt"

	apperrors "github.com/fleetdesk/fleetdesk-backend/errors"
	"github.com/shopspring/decimal"
)

// Default schedule values.
var (
	DefaultTargetAmount  = decimal.NewFromInt(2250)
	DefaultBaseRate      = decimal.RequireFromString("0.30")
	DefaultIncentiveRate = decimal.RequireFromString("0.70")
)

// Schedule is a two-tier progressive commission schedule.
type Schedule struct {
	TargetAmount  decimal.Decimal
	BaseRate      decimal.Decimal
	IncentiveRate decimal.Decimal
}

// DefaultSchedule returns the standard schedule.
func DefaultSchedule() Schedule {
	return Schedule{
		TargetAmount:  DefaultTargetAmount,
		BaseRate:      DefaultBaseRate,
		IncentiveRate: DefaultIncentiveRate,
	}
}

// NewSchedule validates and builds a schedule.
func NewSchedule(target, baseRate, incentiveRate decimal.Decimal) (Schedule, error) {
	if target.IsNegative() {
		return Schedule{}, apperrors.InvalidAmount("invalid target amount", "target cannot be negative")
	}
	one := decimal.NewFromInt(1)
	for name, rate := range map[string]decimal.Decimal{
		"base rate":      baseRate,
		"incentive rate": incentiveRate,
	} {
		if rate.IsNegative() || rate.GreaterThan(one) {
			return Schedule{}, apperrors.InvalidAmount(
				fmt.Sprintf("invalid %s", name),
				"rate must be between 0 and 1",
			)
		}
	}
	return Schedule{TargetAmount: target, BaseRate: baseRate, IncentiveRate: incentiveRate}, nil
}

// Breakdown is the full commission decomposition for reporting callers.
// BaseAmount + IncentiveAmount always equals TotalPayout exactly.
type Breakdown struct {
	BaseRevenue         decimal.Decimal `json:"baseRevenue"`
	IncentiveRevenue    decimal.Decimal `json:"incentiveRevenue"`
	BaseAmount          decimal.Decimal `json:"baseAmount"`
	IncentiveAmount     decimal.Decimal `json:"incentiveAmount"`
	TotalPayout         decimal.Decimal `json:"totalPayout"`
	TargetAmount        decimal.Decimal `json:"targetAmount"`
	BaseCommissionRate  decimal.Decimal `json:"baseCommissionRate"`
	IncentiveCommission decimal.Decimal `json:"incentiveCommissionRate"`
}

// Calculate maps a gross revenue amount to the driver's payout.
// Negative revenue is rejected with an invalid-amount error.
func (s Schedule) Calculate(revenue decimal.Decimal) (decimal.Decimal, error) {
	b, err := s.ComputeBreakdown(revenue)
	if err != nil {
		return decimal.Zero, err
	}
	return b.TotalPayout, nil
}

// ComputeBreakdown maps a gross revenue amount to the full tier decomposition.
func (s Schedule) ComputeBreakdown(revenue decimal.Decimal) (Breakdown, error) {
	if revenue.IsNegative() {
		return Breakdown{}, apperrors.InvalidAmount(
			"invalid revenue",
			fmt.Sprintf("revenue cannot be negative: %s", revenue),
		)
	}

	baseRevenue := decimal.Min(revenue, s.TargetAmount)
	incentiveRevenue := decimal.Max(revenue.Sub(s.TargetAmount), decimal.Zero)

	baseAmount := baseRevenue.Mul(s.BaseRate)
	incentiveAmount := incentiveRevenue.Mul(s.IncentiveRate)

	return Breakdown{
		BaseRevenue:         baseRevenue,
		IncentiveRevenue:    incentiveRevenue,
		BaseAmount:          baseAmount,
		IncentiveAmount:     incentiveAmount,
		TotalPayout:         baseAmount.Add(incentiveAmount),
		TargetAmount:        s.TargetAmount,
		BaseCommissionRate:  s.BaseRate,
		IncentiveCommission: s.IncentiveRate,
	}, nil
}

// NetPayout applies deductions to a computed payout, clamping at zero.
func NetPayout(grossPayout, deductions decimal.Decimal) decimal.Decimal {
	return decimal.Max(grossPayout.Sub(deductions), decimal.Zero)
}
