package services

import (
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "plutoa/internal/errors"
	"plutoa/internal/models"
)

// ledgerService is the read-only aggregation layer over transactions.
// Sums are folded in Go with decimal arithmetic so results stay exact
// regardless of how the driver coerces numeric columns.
type ledgerService struct {
	db *gorm.DB
}

// NewLedgerService creates a new LedgerServicer.
func NewLedgerService(db *gorm.DB) LedgerServicer {
	return &ledgerService{db: db}
}

// SumAmount returns the total of matching transaction amounts, zero when
// nothing matches. Both window bounds are inclusive; category and account
// filters are exact matches applied only when non-nil.
func (s *ledgerService) SumAmount(
	userID uint,
	transactionType models.TransactionType,
	window DateWindow,
	categoryID, accountID *uint,
) (decimal.Decimal, error) {
	q := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ?", userID, transactionType).
		Where("date >= ? AND date <= ?", window.From, window.To)
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}
	if accountID != nil {
		q = q.Where("account_id = ?", *accountID)
	}

	var amounts []decimal.Decimal
	if err := q.Pluck("amount", &amounts).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total := decimal.Zero
	for _, amount := range amounts {
		total = total.Add(amount)
	}
	return total, nil
}

// SumAmountByCategory groups matching transactions by category, largest
// total first. Uncategorized transactions are reported as a single row
// with a nil CategoryID.
func (s *ledgerService) SumAmountByCategory(
	userID uint,
	transactionType models.TransactionType,
	window DateWindow,
) ([]CategoryTotal, error) {
	var transactions []models.Transaction
	err := s.db.Preload("Category").
		Where("user_id = ? AND type = ?", userID, transactionType).
		Where("date >= ? AND date <= ?", window.From, window.To).
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	type bucket struct {
		categoryID *uint
		name       string
		total      decimal.Decimal
	}
	buckets := make(map[uint]*bucket)
	uncategorized := &bucket{name: "Uncategorized", total: decimal.Zero}

	for i := range transactions {
		t := &transactions[i]
		if t.CategoryID == nil {
			uncategorized.total = uncategorized.total.Add(t.Amount)
			continue
		}
		b, ok := buckets[*t.CategoryID]
		if !ok {
			b = &bucket{categoryID: t.CategoryID, total: decimal.Zero}
			if t.Category != nil {
				b.name = t.Category.Name
			}
			buckets[*t.CategoryID] = b
		}
		b.total = b.total.Add(t.Amount)
	}

	totals := make([]CategoryTotal, 0, len(buckets)+1)
	for _, b := range buckets {
		totals = append(totals, CategoryTotal{CategoryID: b.categoryID, CategoryName: b.name, Total: b.total})
	}
	if !uncategorized.total.IsZero() {
		totals = append(totals, CategoryTotal{CategoryName: uncategorized.name, Total: uncategorized.total})
	}

	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Total.GreaterThan(totals[j].Total)
	})
	return totals, nil
}
