package services

import (
	"github.com/shopspring/decimal"
)

// StatusTier is the four-tier budget status exposed by the status and
// alert-listing endpoints.
type StatusTier string

const (
	StatusSafe     StatusTier = "safe"
	StatusWarning  StatusTier = "warning"
	StatusDanger   StatusTier = "danger"
	StatusExceeded StatusTier = "exceeded"
)

// Fixed alert thresholds in percent. These map to the three-tier severity
// vocabulary used only in notification text and priority; the status
// endpoints use the four-tier StatusTier naming instead.
const (
	ThresholdWarning  = 80
	ThresholdDanger   = 90
	ThresholdExceeded = 100
)

// BudgetStatus is the derived spent/remaining/percentage/status tuple for
// one budget window. Remaining is not floored at zero: a negative value
// signals overshoot.
type BudgetStatus struct {
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage float64         `json:"percentage"`
	Status     StatusTier      `json:"status"`
}

var oneHundred = decimal.NewFromInt(100)

// crossesThreshold reports whether spent/amount*100 >= threshold, computed
// without division so the comparison is exact at the boundary.
func crossesThreshold(amount, spent decimal.Decimal, threshold int) bool {
	if !amount.IsPositive() {
		return false
	}
	return spent.Mul(oneHundred).GreaterThanOrEqual(amount.Mul(decimal.NewFromInt(int64(threshold))))
}

// ComputeBudgetStatus derives the status tuple from an allocation ceiling
// and a spent total. A non-positive amount yields percentage 0 and status
// safe — never a division error.
func ComputeBudgetStatus(amount, spent decimal.Decimal) BudgetStatus {
	status := BudgetStatus{
		Spent:     spent,
		Remaining: amount.Sub(spent),
		Status:    StatusSafe,
	}

	if !amount.IsPositive() {
		return status
	}

	status.Percentage, _ = spent.Div(amount).Mul(oneHundred).Float64()

	switch {
	case crossesThreshold(amount, spent, ThresholdExceeded):
		status.Status = StatusExceeded
	case crossesThreshold(amount, spent, ThresholdDanger):
		status.Status = StatusDanger
	case crossesThreshold(amount, spent, ThresholdWarning):
		status.Status = StatusWarning
	}

	return status
}
