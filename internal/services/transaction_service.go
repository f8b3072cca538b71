package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "plutoa/internal/errors"
	"plutoa/internal/logger"
	"plutoa/internal/models"
	"plutoa/internal/pagination"
)

// transactionService handles transaction-related business logic. Expense
// writes run the budget alert check after the row is committed, so every
// recorded expense is immediately reflected in alert state.
type transactionService struct {
	db       *gorm.DB
	accounts AccountServicer
	alerts   AlertServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, accounts AccountServicer, alerts AlertServicer) TransactionServicer {
	return &transactionService{db: db, accounts: accounts, alerts: alerts}
}

// CreateTransaction records an expense or income. Transfers go through
// CreateTransfer. A nil accountID records a ledger-only transaction with
// no balance effect.
func (s *transactionService) CreateTransaction(
	userID uint,
	accountID, categoryID *uint,
	transactionType models.TransactionType,
	amount decimal.Decimal,
	description string,
	date time.Time,
) (*models.Transaction, error) {
	if transactionType != models.TransactionTypeExpense && transactionType != models.TransactionTypeIncome {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if amount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}

	var account *models.Account
	if accountID != nil {
		var err error
		account, err = s.accounts.GetAccountByID(userID, *accountID)
		if err != nil {
			return nil, err
		}
	}
	if categoryID != nil {
		if err := s.verifyCategory(userID, *categoryID, transactionType); err != nil {
			return nil, err
		}
	}

	transaction := &models.Transaction{
		UserID:      userID,
		AccountID:   accountID,
		CategoryID:  categoryID,
		Type:        transactionType,
		Amount:      amount,
		Description: description,
		Date:        dateOf(date),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if account != nil {
			return s.accounts.ApplyToBalance(tx, account, transactionType, amount)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.checkAlerts(userID, transactionType); err != nil {
		return nil, err
	}

	return transaction, nil
}

// CreateTransfer moves money between two of the user's accounts as a single
// TRANSFER transaction. Transfers never count against budgets.
func (s *transactionService) CreateTransfer(
	userID, fromAccountID, toAccountID uint,
	amount decimal.Decimal,
	description string,
	date time.Time,
) (*models.Transaction, error) {
	if fromAccountID == toAccountID {
		return nil, apperrors.ErrSameAccountTransfer
	}
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transfer amount must be positive")
	}

	fromAccount, err := s.accounts.GetAccountByID(userID, fromAccountID)
	if err != nil {
		return nil, err
	}
	toAccount, err := s.accounts.GetAccountByID(userID, toAccountID)
	if err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:      userID,
		AccountID:   &fromAccountID,
		ToAccountID: &toAccountID,
		Type:        models.TransactionTypeTransfer,
		Amount:      amount,
		Description: description,
		Date:        dateOf(date),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.accounts.ApplyToBalance(tx, fromAccount, models.TransactionTypeExpense, amount); err != nil {
			return err
		}
		return s.accounts.ApplyToBalance(tx, toAccount, models.TransactionTypeIncome, amount)
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}

// GetUserTransactions returns a paginated, filtered list of the user's
// transactions, newest first.
func (s *transactionService) GetUserTransactions(
	userID uint,
	page pagination.PageRequest,
	filter TransactionFilter,
) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	if filter.FromDate != nil {
		base = base.Where("date >= ?", dateOf(*filter.FromDate))
	}
	if filter.ToDate != nil {
		base = base.Where("date <= ?", dateOf(*filter.ToDate))
	}
	if filter.Type != nil {
		base = base.Where("type = ?", *filter.Type)
	}
	if filter.CategoryID != nil {
		base = base.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.AccountID != nil {
		base = base.Where("account_id = ?", *filter.AccountID)
	}
	if filter.MinAmount != nil {
		base = base.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		base = base.Where("amount <= ?", *filter.MaxAmount)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	err := base.Preload("Category").Preload("Account").
		Scopes(pagination.Paginate(page)).
		Order("date DESC, id DESC").
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetTransactionByID returns a transaction by ID if it belongs to the user.
func (s *transactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	err := s.db.Preload("Category").Preload("Account").
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction edits an expense or income transaction; nil fields are
// left unchanged. Transfers cannot be edited, only deleted and re-created.
// An amount change reverses the old balance effect and applies the new one
// atomically with the row update.
func (s *transactionService) UpdateTransaction(
	userID, transactionID uint,
	amount *decimal.Decimal,
	categoryID *uint,
	description *string,
	date *time.Time,
) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.Type == models.TransactionTypeTransfer {
		return nil, apperrors.ErrTransactionNotEditable
	}

	updates := make(map[string]interface{})
	if categoryID != nil {
		if err := s.verifyCategory(userID, *categoryID, transaction.Type); err != nil {
			return nil, err
		}
		updates["category_id"] = *categoryID
	}
	if description != nil {
		updates["description"] = *description
	}
	if date != nil {
		updates["date"] = dateOf(*date)
	}
	if amount != nil {
		if amount.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
		}
		updates["amount"] = *amount
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if amount != nil && transaction.AccountID != nil && !amount.Equal(transaction.Amount) {
			account, err := s.accounts.GetAccountByID(userID, *transaction.AccountID)
			if err != nil {
				return err
			}
			if err := s.accounts.ReverseFromBalance(tx, account, transaction.Type, transaction.Amount); err != nil {
				return err
			}
			if err := s.accounts.ApplyToBalance(tx, account, transaction.Type, *amount); err != nil {
				return err
			}
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(transaction).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.checkAlerts(userID, transaction.Type); err != nil {
		return nil, err
	}

	return transaction, nil
}

// DeleteTransaction soft-deletes a transaction and reverses its balance
// effect. Alert notifications already issued stay issued: alerts never
// de-escalate when spending is removed.
func (s *transactionService) DeleteTransaction(userID, transactionID uint) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		switch transaction.Type {
		case models.TransactionTypeTransfer:
			fromAccount, err := s.accounts.GetAccountByID(userID, *transaction.AccountID)
			if err != nil {
				return err
			}
			toAccount, err := s.accounts.GetAccountByID(userID, *transaction.ToAccountID)
			if err != nil {
				return err
			}
			if err := s.accounts.ReverseFromBalance(tx, fromAccount, models.TransactionTypeExpense, transaction.Amount); err != nil {
				return err
			}
			return s.accounts.ReverseFromBalance(tx, toAccount, models.TransactionTypeIncome, transaction.Amount)
		default:
			if transaction.AccountID == nil {
				return nil
			}
			account, err := s.accounts.GetAccountByID(userID, *transaction.AccountID)
			if err != nil {
				return err
			}
			return s.accounts.ReverseFromBalance(tx, account, transaction.Type, transaction.Amount)
		}
	})
}

// checkAlerts runs the budget alert check after an expense write. The
// ledger row is already committed, so a failure here leaves the system
// consistent: the next expense write or explicit check retries.
func (s *transactionService) checkAlerts(userID uint, transactionType models.TransactionType) error {
	if transactionType != models.TransactionTypeExpense {
		return nil
	}
	created, err := s.alerts.CheckBudgetAlerts(userID)
	if err != nil {
		return err
	}
	if len(created) > 0 {
		logger.Get().Infow("expense triggered budget alerts", "user_id", userID, "count", len(created))
	}
	return nil
}

// verifyCategory checks ownership and that the category type admits the
// transaction type.
func (s *transactionService) verifyCategory(userID, categoryID uint, transactionType models.TransactionType) error {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if category.Type == models.CategoryTypeBoth {
		return nil
	}
	if transactionType == models.TransactionTypeExpense && category.Type != models.CategoryTypeExpense {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category does not accept expense transactions")
	}
	if transactionType == models.TransactionTypeIncome && category.Type != models.CategoryTypeIncome {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category does not accept income transactions")
	}
	return nil
}
