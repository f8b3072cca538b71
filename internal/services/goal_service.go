package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "plutoa/internal/errors"
	"plutoa/internal/logger"
	"plutoa/internal/models"
	"plutoa/internal/pagination"
)

// progressMilestone is the percentage at which a halfway notification is
// sent for a goal.
const progressMilestone = 50

// goalService handles financial goal business logic.
type goalService struct {
	db            *gorm.DB
	notifications NotificationServicer
}

// NewGoalService creates a new GoalServicer.
func NewGoalService(db *gorm.DB, notifications NotificationServicer) GoalServicer {
	return &goalService{db: db, notifications: notifications}
}

// CreateGoal creates a new financial goal.
func (s *goalService) CreateGoal(
	userID uint,
	name, description string,
	goalType models.GoalType,
	targetAmount decimal.Decimal,
	targetDate *time.Time,
	icon, color string,
) (*models.FinancialGoal, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal name is required")
	}
	if !targetAmount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be positive")
	}

	goal := &models.FinancialGoal{
		UserID:        userID,
		Name:          name,
		Description:   description,
		GoalType:      goalType,
		TargetAmount:  targetAmount,
		CurrentAmount: decimal.Zero,
		Status:        models.GoalStatusActive,
	}
	if targetDate != nil {
		d := dateOf(*targetDate)
		goal.TargetDate = &d
	}
	if icon != "" {
		goal.Icon = icon
	}
	if color != "" {
		goal.Color = color
	}

	if err := s.db.Create(goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return goal, nil
}

// GetUserGoals returns a paginated list of the user's goals, optionally
// filtered by status.
func (s *goalService) GetUserGoals(
	userID uint,
	page pagination.PageRequest,
	status *models.GoalStatus,
) (*pagination.PageResponse[models.FinancialGoal], error) {
	page.Defaults()

	base := s.db.Model(&models.FinancialGoal{}).Where("user_id = ?", userID)
	if status != nil {
		base = base.Where("status = ?", *status)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var goals []models.FinancialGoal
	if err := base.Scopes(pagination.Paginate(page)).Order("created_at DESC").Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(goals, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetGoalByID returns a goal with its contributions if it belongs to the user.
func (s *goalService) GetGoalByID(userID, goalID uint) (*models.FinancialGoal, error) {
	var goal models.FinancialGoal
	err := s.db.Preload("Contributions").
		Where("id = ? AND user_id = ?", goalID, userID).
		First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &goal, nil
}

// UpdateGoal updates mutable goal fields; nil or empty fields stay unchanged.
func (s *goalService) UpdateGoal(
	userID, goalID uint,
	name, description string,
	targetAmount *decimal.Decimal,
	targetDate *time.Time,
	status *models.GoalStatus,
) (*models.FinancialGoal, error) {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if description != "" {
		updates["description"] = description
	}
	if targetAmount != nil {
		if !targetAmount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be positive")
		}
		updates["target_amount"] = *targetAmount
	}
	if targetDate != nil {
		updates["target_date"] = dateOf(*targetDate)
	}
	if status != nil {
		updates["status"] = *status
		if *status == models.GoalStatusCompleted && goal.CompletedAt == nil {
			updates["completed_at"] = time.Now().UTC()
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(goal).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return goal, nil
}

// DeleteGoal soft-deletes a goal and its contributions.
func (s *goalService) DeleteGoal(userID, goalID uint) error {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("goal_id = ?", goalID).Delete(&models.GoalContribution{}).Error; err != nil {
			return err
		}
		return tx.Delete(goal).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AddContribution records a deposit toward an active goal and rolls it into
// CurrentAmount in one database transaction. Reaching the target completes
// the goal and emits a GOAL_ACHIEVED notification; crossing the halfway
// milestone emits GOAL_PROGRESS once.
func (s *goalService) AddContribution(
	userID, goalID uint,
	amount decimal.Decimal,
	note string,
) (*models.FinancialGoal, *models.GoalContribution, error) {
	if !amount.IsPositive() {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "contribution amount must be positive")
	}

	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return nil, nil, err
	}
	if goal.Status != models.GoalStatusActive {
		return nil, nil, apperrors.ErrGoalNotActive
	}

	before := goal.CurrentAmount
	after := before.Add(amount)

	contribution := &models.GoalContribution{
		GoalID: goalID,
		Amount: amount,
		Note:   note,
		Date:   dateOf(time.Now().UTC()),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(contribution).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		updates := map[string]interface{}{"current_amount": after}
		if after.GreaterThanOrEqual(goal.TargetAmount) {
			updates["status"] = models.GoalStatusCompleted
			updates["completed_at"] = time.Now().UTC()
		}
		if err := tx.Model(goal).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	goal.CurrentAmount = after

	if err := s.notifyMilestones(userID, goal, before, after); err != nil {
		return nil, nil, err
	}

	return goal, contribution, nil
}

// notifyMilestones emits achievement and halfway notifications after a
// contribution. Milestones fire on crossing only, so repeated small
// contributions past the line stay silent.
func (s *goalService) notifyMilestones(userID uint, goal *models.FinancialGoal, before, after decimal.Decimal) error {
	goalID := goal.ID

	if after.GreaterThanOrEqual(goal.TargetAmount) && before.LessThan(goal.TargetAmount) {
		logger.Get().Infow("goal achieved", "user_id", userID, "goal_id", goalID)
		return s.notifications.Create(&models.Notification{
			UserID:    userID,
			Type:      models.NotificationTypeGoalAchieved,
			Title:     "Goal achieved",
			Message:   fmt.Sprintf("Congratulations! You have reached your goal '%s' (%s)", goal.Name, goal.TargetAmount.StringFixed(2)),
			Priority:  models.PriorityHigh,
			RelatedID: &goalID,
		})
	}

	milestone := goal.TargetAmount.Mul(decimal.NewFromInt(progressMilestone)).Div(oneHundred)
	if after.GreaterThanOrEqual(milestone) && before.LessThan(milestone) {
		return s.notifications.Create(&models.Notification{
			UserID:    userID,
			Type:      models.NotificationTypeGoalProgress,
			Title:     "Goal progress",
			Message:   fmt.Sprintf("You are halfway to your goal '%s': %s of %s saved", goal.Name, after.StringFixed(2), goal.TargetAmount.StringFixed(2)),
			Priority:  models.PriorityNormal,
			RelatedID: &goalID,
		})
	}

	return nil
}

// GetSummary aggregates the user's goals for the summary endpoint.
func (s *goalService) GetSummary(userID uint) (*GoalSummary, error) {
	var goals []models.FinancialGoal
	if err := s.db.Where("user_id = ?", userID).Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &GoalSummary{
		TotalTargetAmount: decimal.Zero,
		TotalSavedAmount:  decimal.Zero,
	}
	for i := range goals {
		goal := &goals[i]
		summary.TotalGoals++
		switch goal.Status {
		case models.GoalStatusActive:
			summary.ActiveGoals++
		case models.GoalStatusCompleted:
			summary.CompletedGoals++
		}
		summary.TotalTargetAmount = summary.TotalTargetAmount.Add(goal.TargetAmount)
		summary.TotalSavedAmount = summary.TotalSavedAmount.Add(goal.CurrentAmount)
	}

	if summary.TotalTargetAmount.IsPositive() {
		summary.OverallProgress, _ = summary.TotalSavedAmount.
			Div(summary.TotalTargetAmount).Mul(oneHundred).Float64()
		if summary.OverallProgress > 100 {
			summary.OverallProgress = 100
		}
	}

	return summary, nil
}
