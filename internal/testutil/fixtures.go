package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"plutoa/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Amount builds a decimal from a string literal, failing the test on a typo.
func Amount(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("invalid decimal literal %q: %v", value, err)
	}
	return d
}

// Date builds a midnight-UTC date for fixtures.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAccount creates a bank account with the given balance.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID uint, balance decimal.Decimal) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Account %d", nextID()),
		Type:     models.AccountTypeBank,
		Balance:  balance,
		Currency: "CZK",
		IsActive: true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID uint, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestExpense records an expense transaction on the given date with
// no account attached.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID uint, categoryID *uint, amount decimal.Decimal, date time.Time) *models.Transaction {
	t.Helper()

	transaction := &models.Transaction{
		UserID:     userID,
		CategoryID: categoryID,
		Type:       models.TransactionTypeExpense,
		Amount:     amount,
		Date:       date,
	}
	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return transaction
}

// CreateTestIncome records an income transaction on the given date.
func CreateTestIncome(t *testing.T, db *gorm.DB, userID uint, amount decimal.Decimal, date time.Time) *models.Transaction {
	t.Helper()

	transaction := &models.Transaction{
		UserID: userID,
		Type:   models.TransactionTypeIncome,
		Amount: amount,
		Date:   date,
	}
	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test income: %v", err)
	}
	return transaction
}

// CreateTestBudget creates an active budget over the given window.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID uint, categoryID *uint, amount decimal.Decimal, start, end time.Time) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Name:       fmt.Sprintf("Test Budget %d", nextID()),
		Amount:     amount,
		Period:     models.BudgetPeriodMonthly,
		StartDate:  start,
		EndDate:    end,
		IsActive:   true,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestGoal creates an active savings goal.
func CreateTestGoal(t *testing.T, db *gorm.DB, userID uint, targetAmount decimal.Decimal) *models.FinancialGoal {
	t.Helper()

	goal := &models.FinancialGoal{
		UserID:        userID,
		Name:          fmt.Sprintf("Test Goal %d", nextID()),
		GoalType:      models.GoalTypeSavings,
		TargetAmount:  targetAmount,
		CurrentAmount: decimal.Zero,
		Status:        models.GoalStatusActive,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}

// CreateTestNotification creates a plain unread notification.
func CreateTestNotification(t *testing.T, db *gorm.DB, userID uint) *models.Notification {
	t.Helper()

	notification := &models.Notification{
		UserID:   userID,
		Type:     models.NotificationTypeMonthlySummary,
		Title:    fmt.Sprintf("Test Notification %d", nextID()),
		Message:  "test message",
		Priority: models.PriorityNormal,
	}
	if err := db.Create(notification).Error; err != nil {
		t.Fatalf("failed to create test notification: %v", err)
	}
	return notification
}
