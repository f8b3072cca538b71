package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "plutoa/internal/errors"
	"plutoa/internal/models"
	"plutoa/internal/pagination"
	"plutoa/internal/services"
)

// GoalHandler handles financial goal requests.
type GoalHandler struct {
	goalService services.GoalServicer
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goalService services.GoalServicer) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

// CreateGoalRequest represents the request payload for creating a goal.
type CreateGoalRequest struct {
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	Description  string          `json:"description" binding:"max=500"`
	GoalType     models.GoalType `json:"goal_type" binding:"omitempty,goal_type"`
	TargetAmount decimal.Decimal `json:"target_amount" binding:"required"`
	TargetDate   *time.Time      `json:"target_date"`
	Icon         string          `json:"icon" binding:"max=50"`
	Color        string          `json:"color" binding:"omitempty,hex_color"`
}

// UpdateGoalRequest represents the request payload for updating a goal.
type UpdateGoalRequest struct {
	Name         string             `json:"name" binding:"omitempty,min=1,max=200"`
	Description  string             `json:"description" binding:"max=500"`
	TargetAmount *decimal.Decimal   `json:"target_amount"`
	TargetDate   *time.Time         `json:"target_date"`
	Status       *models.GoalStatus `json:"status" binding:"omitempty,goal_status"`
}

// AddContributionRequest represents the request payload for a contribution.
type AddContributionRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Note   string          `json:"note" binding:"max=500"`
}

// CreateGoal handles the creation of a new goal.
// @Summary     Create a goal
// @Description Create a new financial goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateGoalRequest true "Goal details"
// @Success     201 {object} models.FinancialGoal "Goal created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals [post]
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	goalType := req.GoalType
	if goalType == "" {
		goalType = models.GoalTypeSavings
	}

	goal, err := h.goalService.CreateGoal(userID, req.Name, req.Description, goalType, req.TargetAmount, req.TargetDate, req.Icon, req.Color)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

// GetGoals handles listing goals for the authenticated user.
// @Summary     Get goals
// @Description Get a paginated list of goals, optionally filtered by status
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       status    query string false "Filter by status (ACTIVE/COMPLETED/PAUSED/CANCELLED)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.FinancialGoal] "Paginated goals"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals [get]
func (h *GoalHandler) GetGoals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var status *models.GoalStatus
	if v := c.Query("status"); v != "" {
		s := models.GoalStatus(v)
		switch s {
		case models.GoalStatusActive, models.GoalStatusCompleted, models.GoalStatusPaused, models.GoalStatusCancelled:
			status = &s
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid goal status"))
			return
		}
	}

	result, err := h.goalService.GetUserGoals(userID, page, status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetGoalSummary aggregates the user's goals.
// @Summary     Get goal summary
// @Description Get aggregate totals and overall progress across all goals
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.GoalSummary "Goal summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/summary [get]
func (h *GoalHandler) GetGoalSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.goalService.GetSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetGoal handles retrieving a specific goal.
// @Summary     Get goal by ID
// @Description Get a specific goal with its contributions
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Goal ID"
// @Success     200 {object} models.FinancialGoal "Goal details"
// @Failure     400 {object} ErrorResponse "Invalid goal ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id} [get]
func (h *GoalHandler) GetGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.GetGoalByID(userID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// UpdateGoal handles updating an existing goal.
// @Summary     Update goal
// @Description Update an existing goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int               true "Goal ID"
// @Param       request body UpdateGoalRequest true "Updated goal details"
// @Success     200 {object} models.FinancialGoal "Updated goal"
// @Failure     400 {object} ErrorResponse "Invalid input or goal ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id} [put]
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	goal, err := h.goalService.UpdateGoal(userID, goalID, req.Name, req.Description, req.TargetAmount, req.TargetDate, req.Status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// DeleteGoal handles deleting a goal.
// @Summary     Delete goal
// @Description Delete a goal and its contributions
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Goal ID"
// @Success     204 "Goal deleted"
// @Failure     400 {object} ErrorResponse "Invalid goal ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id} [delete]
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.goalService.DeleteGoal(userID, goalID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddContribution records a deposit toward a goal.
// @Summary     Add contribution
// @Description Record a contribution toward an active goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                    true "Goal ID"
// @Param       request body AddContributionRequest true "Contribution details"
// @Success     201 {object} models.GoalContribution "Contribution recorded"
// @Failure     400 {object} ErrorResponse "Invalid input or inactive goal"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals/{id}/contributions [post]
func (h *GoalHandler) AddContribution(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	goal, contribution, err := h.goalService.AddContribution(userID, goalID, req.Amount, req.Note)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"goal": goal, "contribution": contribution})
}
