package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "plutoa/internal/errors"
	"plutoa/internal/models"
	"plutoa/internal/pagination"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db     *gorm.DB
	ledger LedgerServicer
	alerts AlertServicer
}

// NewBudgetService creates a new BudgetServicer. The alert service is used
// to clear stale dedupe markers when a budget is deleted.
func NewBudgetService(db *gorm.DB, ledger LedgerServicer, alerts AlertServicer) BudgetServicer {
	return &budgetService{db: db, ledger: ledger, alerts: alerts}
}

// CreateBudget creates a new budget. A nil categoryID means the budget
// tracks all of the user's expenses in its window.
func (s *budgetService) CreateBudget(
	userID uint,
	categoryID *uint,
	name string,
	amount decimal.Decimal,
	period models.BudgetPeriod,
	startDate, endDate time.Time,
) (*models.Budget, error) {
	if amount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget amount must not be negative")
	}

	startDate = dateOf(startDate)
	endDate = dateOf(endDate)
	if startDate.After(endDate) {
		return nil, apperrors.ErrInvalidBudgetRange
	}

	if categoryID != nil {
		if err := s.verifyCategory(userID, *categoryID); err != nil {
			return nil, err
		}
	}

	budget := &models.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Name:       name,
		Amount:     amount,
		Period:     period,
		StartDate:  startDate,
		EndDate:    endDate,
		IsActive:   true,
	}

	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget, nil
}

// GetUserBudgets returns a paginated list of budgets for the user with optional filters.
func (s *budgetService) GetUserBudgets(
	userID uint,
	page pagination.PageRequest,
	isActive *bool,
	period *models.BudgetPeriod,
) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	if isActive != nil {
		base = base.Where("is_active = ?", *isActive)
	}
	if period != nil {
		base = base.Where("period = ?", *period)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Preload("Category").Scopes(pagination.Paginate(page)).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Preload("Category").Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget updates an existing budget's fields; nil fields stay unchanged.
func (s *budgetService) UpdateBudget(userID, budgetID uint, update BudgetUpdate) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if update.Name != "" {
		updates["name"] = update.Name
	}
	if update.Amount != nil {
		if update.Amount.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget amount must not be negative")
		}
		updates["amount"] = *update.Amount
	}
	if update.Period != nil {
		updates["period"] = *update.Period
	}
	if update.IsActive != nil {
		updates["is_active"] = *update.IsActive
	}
	if update.CategoryID != nil {
		if err := s.verifyCategory(userID, *update.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *update.CategoryID
	}

	startDate := budget.StartDate
	endDate := budget.EndDate
	if update.StartDate != nil {
		startDate = dateOf(*update.StartDate)
		updates["start_date"] = startDate
	}
	if update.EndDate != nil {
		endDate = dateOf(*update.EndDate)
		updates["end_date"] = endDate
	}
	if startDate.After(endDate) {
		return nil, apperrors.ErrInvalidBudgetRange
	}

	if len(updates) > 0 {
		if err := s.db.Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return budget, nil
}

// DeleteBudget soft-deletes a budget and clears its alert notifications so
// a future budget reusing the allocation can alert again.
func (s *budgetService) DeleteBudget(userID, budgetID uint) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.alerts.ClearBudgetNotifications(userID, budgetID)
}

// GetSpentAmount computes the expense total against the budget: its own
// [StartDate, EndDate] window unless an override window is supplied, and
// its category filter when one is set.
func (s *budgetService) GetSpentAmount(userID, budgetID uint, window *DateWindow) (decimal.Decimal, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return decimal.Zero, err
	}

	w := DateWindow{From: budget.StartDate, To: budget.EndDate}
	if window != nil {
		w = DateWindow{From: dateOf(window.From), To: dateOf(window.To)}
	}

	return s.ledger.SumAmount(userID, models.TransactionTypeExpense, w, budget.CategoryID, nil)
}

func (s *budgetService) verifyCategory(userID, categoryID uint) error {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
