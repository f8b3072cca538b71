package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoalType classifies what a financial goal is saving toward.
type GoalType string

const (
	GoalTypeSavings       GoalType = "SAVINGS"
	GoalTypeDebtPayment   GoalType = "DEBT_PAYMENT"
	GoalTypePurchase      GoalType = "PURCHASE"
	GoalTypeEmergencyFund GoalType = "EMERGENCY_FUND"
	GoalTypeInvestment    GoalType = "INVESTMENT"
	GoalTypeOther         GoalType = "OTHER"
)

// GoalStatus is the lifecycle state of a goal.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "ACTIVE"
	GoalStatusCompleted GoalStatus = "COMPLETED"
	GoalStatusPaused    GoalStatus = "PAUSED"
	GoalStatusCancelled GoalStatus = "CANCELLED"
)

// FinancialGoal is a savings target. CurrentAmount is the rolled-up sum of
// contributions; it is updated transactionally with each contribution.
type FinancialGoal struct {
	Base
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	Name          string          `gorm:"not null;size:200" json:"name"`
	Description   string          `json:"description"`
	GoalType      GoalType        `gorm:"not null;default:'SAVINGS'" json:"goal_type"`
	TargetAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"target_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"current_amount"`
	TargetDate    *time.Time      `json:"target_date,omitempty"`
	Status        GoalStatus      `gorm:"not null;default:'ACTIVE'" json:"status"`
	Icon          string          `gorm:"default:'target'" json:"icon"`
	Color         string          `gorm:"default:'#FF4742'" json:"color"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`

	Contributions []GoalContribution `gorm:"foreignKey:GoalID" json:"contributions,omitempty"`
}

// ProgressPercentage returns how far along the goal is, capped at 100.
func (g *FinancialGoal) ProgressPercentage() float64 {
	if !g.TargetAmount.IsPositive() {
		return 0
	}
	pct, _ := g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Float64()
	if pct > 100 {
		return 100
	}
	return pct
}

// RemainingAmount returns the amount still needed, floored at zero.
func (g *FinancialGoal) RemainingAmount() decimal.Decimal {
	remaining := g.TargetAmount.Sub(g.CurrentAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// IsAchieved reports whether the target has been reached.
func (g *FinancialGoal) IsAchieved() bool {
	return g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
}

// GoalContribution is one deposit toward a goal.
type GoalContribution struct {
	Base
	GoalID uint            `gorm:"not null;index" json:"goal_id"`
	Amount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Note   string          `json:"note"`
	Date   time.Time       `gorm:"not null" json:"date"`
}
