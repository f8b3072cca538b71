package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeExpense  TransactionType = "EXPENSE"
	TransactionTypeIncome   TransactionType = "INCOME"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// Transaction represents a financial fact in the ledger. Amount is always
// non-negative; the type determines its direction. Date carries no
// time-of-day and is normalized to midnight UTC on write.
type Transaction struct {
	Base
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	AccountID   *uint           `json:"account_id,omitempty"`
	CategoryID  *uint           `json:"category_id,omitempty"`
	Type        TransactionType `gorm:"not null" json:"type"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `gorm:"not null;index" json:"date"`

	// For transfers
	ToAccountID *uint `json:"to_account_id,omitempty"`

	Account   *Account  `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	ToAccount *Account  `gorm:"foreignKey:ToAccountID" json:"to_account,omitempty"`
	Category  *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
