package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPeriod represents the period type for a budget. The period is
// informational; the explicit start/end window drives all computation.
type BudgetPeriod string

const (
	BudgetPeriodMonthly BudgetPeriod = "MONTHLY"
	BudgetPeriodYearly  BudgetPeriod = "YEARLY"
	BudgetPeriodCustom  BudgetPeriod = "CUSTOM"
)

// Budget represents a spending allocation measured over an inclusive
// [StartDate, EndDate] window. When CategoryID is set only expense
// transactions in that category count against the budget; otherwise all of
// the user's expense transactions in the window do. Expiration is not
// auto-enforced — callers filter on IsActive and the window explicitly.
type Budget struct {
	Base
	UserID     uint            `gorm:"not null;index" json:"user_id"`
	CategoryID *uint           `json:"category_id,omitempty"`
	Name       string          `gorm:"not null" json:"name"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Period     BudgetPeriod    `gorm:"not null" json:"period"`
	StartDate  time.Time       `gorm:"not null" json:"start_date"`
	EndDate    time.Time       `gorm:"not null" json:"end_date"`
	IsActive   bool            `gorm:"default:true" json:"is_active"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
