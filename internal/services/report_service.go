package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "plutoa/internal/errors"
	"plutoa/internal/models"
)

// reportService builds dashboard and analytics views on top of the ledger
// aggregation layer. It is read-only.
type reportService struct {
	db     *gorm.DB
	ledger LedgerServicer
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB, ledger LedgerServicer) ReportServicer {
	return &reportService{db: db, ledger: ledger}
}

// GetDashboardStats returns the current-month headline figures plus the
// five most recent transactions.
func (s *reportService) GetDashboardStats(userID uint) (*DashboardStats, error) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	window := DateWindow{From: monthStart, To: dateOf(now)}

	income, err := s.ledger.SumAmount(userID, models.TransactionTypeIncome, window, nil, nil)
	if err != nil {
		return nil, err
	}
	expenses, err := s.ledger.SumAmount(userID, models.TransactionTypeExpense, window, nil, nil)
	if err != nil {
		return nil, err
	}

	var recent []models.Transaction
	err = s.db.Preload("Category").Preload("Account").
		Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Limit(5).
		Find(&recent).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &DashboardStats{
		TotalIncome:        income,
		TotalExpenses:      expenses,
		Balance:            income.Sub(expenses),
		RecentTransactions: recent,
	}, nil
}

// rangeDays maps the analytics time_range parameter to a day count.
func rangeDays(timeRange string) int {
	switch timeRange {
	case "3m":
		return 90
	case "6m":
		return 180
	default: // "1m"
		return 30
	}
}

// GetAnalytics aggregates income, expenses and category breakdown over the
// requested range, plus a six-bucket time series of 30-day periods.
func (s *reportService) GetAnalytics(userID uint, timeRange string) (*AnalyticsReport, error) {
	today := dateOf(time.Now().UTC())
	from := today.AddDate(0, 0, -rangeDays(timeRange)+1)
	window := DateWindow{From: from, To: today}

	income, err := s.ledger.SumAmount(userID, models.TransactionTypeIncome, window, nil, nil)
	if err != nil {
		return nil, err
	}
	expenses, err := s.ledger.SumAmount(userID, models.TransactionTypeExpense, window, nil, nil)
	if err != nil {
		return nil, err
	}
	categoryData, err := s.ledger.SumAmountByCategory(userID, models.TransactionTypeExpense, window)
	if err != nil {
		return nil, err
	}

	monthly, err := s.monthlySeries(userID, today)
	if err != nil {
		return nil, err
	}

	return &AnalyticsReport{
		TotalIncome:   income,
		TotalExpenses: expenses,
		TotalSavings:  income.Sub(expenses),
		CategoryData:  categoryData,
		MonthlyData:   monthly,
	}, nil
}

// monthlySeries builds six consecutive 30-day buckets ending today, oldest
// first. Bucket labels carry the bucket's end date.
func (s *reportService) monthlySeries(userID uint, today time.Time) ([]MonthlySummary, error) {
	series := make([]MonthlySummary, 0, 6)

	for i := 5; i >= 0; i-- {
		end := today.AddDate(0, 0, -30*i)
		start := end.AddDate(0, 0, -29)
		window := DateWindow{From: start, To: end}

		income, err := s.ledger.SumAmount(userID, models.TransactionTypeIncome, window, nil, nil)
		if err != nil {
			return nil, err
		}
		expenses, err := s.ledger.SumAmount(userID, models.TransactionTypeExpense, window, nil, nil)
		if err != nil {
			return nil, err
		}

		series = append(series, MonthlySummary{
			Month:    end.Format("2006-01-02"),
			Income:   income,
			Expenses: expenses,
			Savings:  income.Sub(expenses),
		})
	}

	return series, nil
}
