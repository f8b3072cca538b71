package models

import "github.com/shopspring/decimal"

// AccountType represents the type of account
type AccountType string

const (
	AccountTypeCash       AccountType = "CASH"
	AccountTypeBank       AccountType = "BANK"
	AccountTypeCreditCard AccountType = "CREDIT_CARD"
)

// Account represents a financial account in the system
type Account struct {
	Base
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	Name        string          `gorm:"not null" json:"name"`
	Type        AccountType     `gorm:"not null" json:"type"`
	Description string          `json:"description"`
	Balance     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"balance"`
	Currency    string          `gorm:"not null;default:'CZK'" json:"currency"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`

	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"transactions,omitempty"`
}
