package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeExpense CategoryType = "EXPENSE"
	CategoryTypeIncome  CategoryType = "INCOME"
	CategoryTypeBoth    CategoryType = "BOTH"
)

// Category represents a transaction category. Categories are owned by a
// user; the name is unique per user. Deleting a category never deletes its
// transactions — their category reference is set to null instead, so
// history survives.
type Category struct {
	Base
	UserID      uint         `gorm:"not null;index" json:"user_id"`
	Name        string       `gorm:"not null" json:"name"`
	Type        CategoryType `gorm:"not null" json:"category_type"`
	Description string       `json:"description"`
	Icon        string       `json:"icon"`
	Color       string       `json:"color"`

	Transactions []Transaction `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
	Budgets      []Budget      `gorm:"foreignKey:CategoryID" json:"budgets,omitempty"`
}
