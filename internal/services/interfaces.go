package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"plutoa/internal/models"
	"plutoa/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(userID uint, name, description, currency string, accountType models.AccountType, initialBalance decimal.Decimal) (*models.Account, error)
	GetUserAccounts(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(userID, accountID uint) (*models.Account, error)
	ApplyToBalance(tx *gorm.DB, account *models.Account, transactionType models.TransactionType, amount decimal.Decimal) error
	ReverseFromBalance(tx *gorm.DB, account *models.Account, transactionType models.TransactionType, amount decimal.Decimal) error
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID uint, name string, categoryType models.CategoryType, description, icon, color string) (*models.Category, error)
	GetUserCategories(userID uint, page pagination.PageRequest, categoryType *models.CategoryType) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID uint) (*models.Category, error)
	UpdateCategory(userID, categoryID uint, name, description, icon, color string) (*models.Category, error)
	DeleteCategory(userID, categoryID uint) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *uint
	AccountID  *uint
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
}

// TransactionServicer defines the contract for transaction-related business logic.
// Creating or updating an expense transaction triggers the budget alert
// check synchronously after the write is persisted.
type TransactionServicer interface {
	CreateTransaction(userID uint, accountID, categoryID *uint, transactionType models.TransactionType, amount decimal.Decimal, description string, date time.Time) (*models.Transaction, error)
	CreateTransfer(userID, fromAccountID, toAccountID uint, amount decimal.Decimal, description string, date time.Time) (*models.Transaction, error)
	GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID uint, amount *decimal.Decimal, categoryID *uint, description *string, date *time.Time) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) error
}

// DateWindow is an inclusive calendar-date range.
type DateWindow struct {
	From time.Time
	To   time.Time
}

// LedgerServicer is the read-only aggregation layer over the transaction
// ledger. It has no side effects and never caches.
type LedgerServicer interface {
	// SumAmount returns the exact decimal sum of matching transaction
	// amounts. Both date bounds are inclusive. A nil categoryID or
	// accountID means "no filter". Returns zero when nothing matches.
	SumAmount(userID uint, transactionType models.TransactionType, window DateWindow, categoryID, accountID *uint) (decimal.Decimal, error)
	// SumAmountByCategory groups matching transactions by category,
	// ordered by descending total. Transactions without a category are
	// reported under a nil CategoryID.
	SumAmountByCategory(userID uint, transactionType models.TransactionType, window DateWindow) ([]CategoryTotal, error)
}

// CategoryTotal is one row of a per-category aggregation.
type CategoryTotal struct {
	CategoryID   *uint           `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Total        decimal.Decimal `json:"total"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID uint, categoryID *uint, name string, amount decimal.Decimal, period models.BudgetPeriod, startDate, endDate time.Time) (*models.Budget, error)
	GetUserBudgets(userID uint, page pagination.PageRequest, isActive *bool, period *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID uint) (*models.Budget, error)
	UpdateBudget(userID, budgetID uint, update BudgetUpdate) (*models.Budget, error)
	DeleteBudget(userID, budgetID uint) error
	// GetSpentAmount computes the budget's expense total over its own
	// window, or over the caller-supplied window when one is given.
	GetSpentAmount(userID, budgetID uint, window *DateWindow) (decimal.Decimal, error)
}

// BudgetUpdate holds the optional fields of a budget update; nil fields are
// left unchanged.
type BudgetUpdate struct {
	Name       string
	Amount     *decimal.Decimal
	Period     *models.BudgetPeriod
	StartDate  *time.Time
	EndDate    *time.Time
	IsActive   *bool
	CategoryID *uint
}

// BudgetAlert pairs an active budget with its computed status; used by the
// alerts-listing endpoint for budgets at warning or worse.
type BudgetAlert struct {
	Budget models.Budget `json:"budget"`
	Status BudgetStatus  `json:"status"`
}

// AlertServicer converts budget threshold crossings into at-most-one
// notification per (budget, threshold) pair.
type AlertServicer interface {
	CheckBudgetAlerts(userID uint) ([]models.Notification, error)
	GetBudgetStatus(userID, budgetID uint) (*BudgetStatus, error)
	GetBudgetAlerts(userID uint) ([]BudgetAlert, error)
	ClearBudgetNotifications(userID, budgetID uint) error
}

// NotificationServicer defines the contract for the notification store.
type NotificationServicer interface {
	Create(notification *models.Notification) error
	GetUserNotifications(userID uint, page pagination.PageRequest, unreadOnly bool) (*pagination.PageResponse[models.Notification], error)
	MarkAsRead(userID, notificationID uint) (*models.Notification, error)
	MarkAllAsRead(userID uint) (int64, error)
	UnreadCount(userID uint) (int64, error)
	DeleteNotification(userID, notificationID uint) error
}

// GoalSummary aggregates a user's goals for the summary endpoint.
type GoalSummary struct {
	TotalGoals        int64           `json:"total_goals"`
	ActiveGoals       int64           `json:"active_goals"`
	CompletedGoals    int64           `json:"completed_goals"`
	TotalTargetAmount decimal.Decimal `json:"total_target_amount"`
	TotalSavedAmount  decimal.Decimal `json:"total_saved_amount"`
	OverallProgress   float64         `json:"overall_progress"`
}

// GoalServicer defines the contract for financial goal business logic.
type GoalServicer interface {
	CreateGoal(userID uint, name, description string, goalType models.GoalType, targetAmount decimal.Decimal, targetDate *time.Time, icon, color string) (*models.FinancialGoal, error)
	GetUserGoals(userID uint, page pagination.PageRequest, status *models.GoalStatus) (*pagination.PageResponse[models.FinancialGoal], error)
	GetGoalByID(userID, goalID uint) (*models.FinancialGoal, error)
	UpdateGoal(userID, goalID uint, name, description string, targetAmount *decimal.Decimal, targetDate *time.Time, status *models.GoalStatus) (*models.FinancialGoal, error)
	DeleteGoal(userID, goalID uint) error
	AddContribution(userID, goalID uint, amount decimal.Decimal, note string) (*models.FinancialGoal, *models.GoalContribution, error)
	GetSummary(userID uint) (*GoalSummary, error)
}

// MonthlySummary is one bucket of the analytics time series.
type MonthlySummary struct {
	Month    string          `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Savings  decimal.Decimal `json:"savings"`
}

// DashboardStats holds the headline figures for the dashboard endpoint.
type DashboardStats struct {
	TotalIncome        decimal.Decimal      `json:"total_income"`
	TotalExpenses      decimal.Decimal      `json:"total_expenses"`
	Balance            decimal.Decimal      `json:"balance"`
	RecentTransactions []models.Transaction `json:"recent_transactions"`
}

// AnalyticsReport holds aggregated figures over a requested time range.
type AnalyticsReport struct {
	TotalIncome   decimal.Decimal  `json:"total_income"`
	TotalExpenses decimal.Decimal  `json:"total_expenses"`
	TotalSavings  decimal.Decimal  `json:"total_savings"`
	CategoryData  []CategoryTotal  `json:"category_data"`
	MonthlyData   []MonthlySummary `json:"monthly_data"`
}

// ReportServicer defines the contract for dashboard and analytics reads.
type ReportServicer interface {
	GetDashboardStats(userID uint) (*DashboardStats, error)
	GetAnalytics(userID uint, timeRange string) (*AnalyticsReport, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
}
