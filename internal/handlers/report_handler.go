package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "plutoa/internal/errors"
	"plutoa/internal/services"
)

// ReportHandler handles dashboard and analytics requests.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GetDashboard returns headline figures for the current month.
// @Summary     Get dashboard
// @Description Get current-month income, expenses, balance and recent transactions
// @Tags        reports
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.DashboardStats "Dashboard figures"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/dashboard [get]
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	stats, err := h.reportService.GetDashboardStats(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetAnalytics returns aggregated figures over a requested range.
// @Summary     Get analytics
// @Description Get income/expense totals, category breakdown and a monthly time series
// @Tags        reports
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       time_range query string false "Range: 1m, 3m or 6m (default 1m)"
// @Success     200 {object} services.AnalyticsReport "Analytics report"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/analytics [get]
func (h *ReportHandler) GetAnalytics(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	timeRange := c.DefaultQuery("time_range", "1m")
	switch timeRange {
	case "1m", "3m", "6m":
	default:
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "time_range must be '1m', '3m' or '6m'"))
		return
	}

	report, err := h.reportService.GetAnalytics(userID, timeRange)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
