package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "plutoa/internal/errors"
	"plutoa/internal/logger"
	"plutoa/internal/models"
)

// alertThreshold pairs a fixed percentage marker with the severity
// vocabulary used in notification text and priority.
type alertThreshold struct {
	Percentage int
	Severity   string
	Priority   models.NotificationPriority
}

// alertThresholds are checked in ascending order and independently: a
// single spending jump can cross several of them in one invocation and
// produces one notification per crossed threshold.
var alertThresholds = []alertThreshold{
	{Percentage: ThresholdWarning, Severity: "warning", Priority: models.PriorityWarning},
	{Percentage: ThresholdDanger, Severity: "high", Priority: models.PriorityHigh},
	{Percentage: ThresholdExceeded, Severity: "critical", Priority: models.PriorityCritical},
}

// alertService checks active budgets and emits threshold-crossing
// notifications, at most one per (budget, threshold) pair.
type alertService struct {
	db     *gorm.DB
	ledger LedgerServicer
}

// NewAlertService creates a new AlertServicer.
func NewAlertService(db *gorm.DB, ledger LedgerServicer) AlertServicer {
	return &alertService{db: db, ledger: ledger}
}

// CheckBudgetAlerts recomputes every active budget of the user and creates
// a notification for each newly crossed threshold. Repeated invocations
// with no new spending create nothing: the (user, budget, threshold)
// dedupe state lives in the notification table itself, backed by a unique
// index so concurrent checks cannot double-fire. Returns only the
// notifications created by this call.
func (s *alertService) CheckBudgetAlerts(userID uint) ([]models.Notification, error) {
	var budgets []models.Budget
	err := s.db.Preload("Category").
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&budgets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	created := make([]models.Notification, 0)
	for i := range budgets {
		budget := &budgets[i]

		// A zero-amount budget can never alert.
		if !budget.Amount.IsPositive() {
			continue
		}

		window := DateWindow{From: budget.StartDate, To: budget.EndDate}
		spent, err := s.ledger.SumAmount(userID, models.TransactionTypeExpense, window, budget.CategoryID, nil)
		if err != nil {
			return created, err
		}

		for _, threshold := range alertThresholds {
			if !crossesThreshold(budget.Amount, spent, threshold.Percentage) {
				continue
			}

			notification, err := s.createOnce(userID, budget, spent, threshold)
			if err != nil {
				// Earlier notifications stay created; re-invocation is
				// idempotent, so the caller can simply retry.
				return created, err
			}
			if notification != nil {
				created = append(created, *notification)
			}
		}
	}

	return created, nil
}

// createOnce creates the notification for one (budget, threshold) pair
// unless it already exists. The existence check and the insert run in a
// single database transaction; the unique index on
// (user_id, type, related_id, threshold) closes the remaining race.
func (s *alertService) createOnce(
	userID uint,
	budget *models.Budget,
	spent decimal.Decimal,
	threshold alertThreshold,
) (*models.Notification, error) {
	var created *models.Notification
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.Notification{}).
			Where("user_id = ? AND type = ? AND related_id = ? AND threshold = ?",
				userID, models.NotificationTypeBudgetAlert, budget.ID, threshold.Percentage).
			Count(&count).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return nil
		}

		notification := s.buildNotification(userID, budget, spent, threshold)
		if err := tx.Create(notification).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		created = notification
		return nil
	})
	if err != nil {
		return nil, err
	}
	if created != nil {
		logger.Get().Infow("budget alert created",
			"user_id", userID,
			"budget_id", budget.ID,
			"threshold", threshold.Percentage,
			"severity", threshold.Severity,
		)
	}
	return created, nil
}

// buildNotification renders the severity-specific message. The message
// embeds the literal threshold percentage and the spent/amount figures
// with two decimals.
func (s *alertService) buildNotification(
	userID uint,
	budget *models.Budget,
	spent decimal.Decimal,
	threshold alertThreshold,
) *models.Notification {
	var message string
	switch threshold.Severity {
	case "warning":
		message = fmt.Sprintf("Budget '%s' has reached %d%% of its limit", budget.Name, threshold.Percentage)
	case "high":
		message = fmt.Sprintf("Attention: budget '%s' is almost exhausted (%d%%)", budget.Name, threshold.Percentage)
	default:
		message = fmt.Sprintf("Budget '%s' has been exceeded (%d%%)", budget.Name, threshold.Percentage)
	}

	details := fmt.Sprintf("Spent: %s of %s", spent.StringFixed(2), budget.Amount.StringFixed(2))
	if budget.Category != nil {
		details += fmt.Sprintf(" (Category: %s)", budget.Category.Name)
	}

	budgetID := budget.ID
	thresholdPct := threshold.Percentage
	return &models.Notification{
		UserID:    userID,
		Type:      models.NotificationTypeBudgetAlert,
		Title:     "Budget alert",
		Message:   message + "\n" + details,
		Priority:  threshold.Priority,
		RelatedID: &budgetID,
		Threshold: &thresholdPct,
	}
}

// GetBudgetStatus is the read-only status computation: it never creates
// notifications and always reflects the current ledger truth.
func (s *alertService) GetBudgetStatus(userID, budgetID uint) (*BudgetStatus, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	window := DateWindow{From: budget.StartDate, To: budget.EndDate}
	spent, err := s.ledger.SumAmount(userID, models.TransactionTypeExpense, window, budget.CategoryID, nil)
	if err != nil {
		return nil, err
	}

	status := ComputeBudgetStatus(budget.Amount, spent)
	return &status, nil
}

// GetBudgetAlerts returns every active budget whose status is warning or
// worse, with its computed status attached.
func (s *alertService) GetBudgetAlerts(userID uint) ([]BudgetAlert, error) {
	var budgets []models.Budget
	err := s.db.Preload("Category").
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&budgets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	alerts := make([]BudgetAlert, 0)
	for i := range budgets {
		budget := budgets[i]
		window := DateWindow{From: budget.StartDate, To: budget.EndDate}
		spent, err := s.ledger.SumAmount(userID, models.TransactionTypeExpense, window, budget.CategoryID, nil)
		if err != nil {
			return nil, err
		}

		status := ComputeBudgetStatus(budget.Amount, spent)
		if status.Status == StatusSafe {
			continue
		}
		alerts = append(alerts, BudgetAlert{Budget: budget, Status: status})
	}

	return alerts, nil
}

// ClearBudgetNotifications hard-deletes all budget alert notifications for
// the budget. Rows are removed outright, not soft-deleted: a lingering
// row would keep holding the dedupe slot and block re-alerting on a
// reused allocation.
func (s *alertService) ClearBudgetNotifications(userID, budgetID uint) error {
	err := s.db.Unscoped().
		Where("user_id = ? AND type = ? AND related_id = ?",
			userID, models.NotificationTypeBudgetAlert, budgetID).
		Delete(&models.Notification{}).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
