package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "plutoa/internal/errors"
	"plutoa/internal/models"
	"plutoa/internal/pagination"
)

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateAccount creates a new account for the user.
func (s *accountService) CreateAccount(
	userID uint,
	name, description, currency string,
	accountType models.AccountType,
	initialBalance decimal.Decimal,
) (*models.Account, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if currency == "" {
		currency = "CZK"
	}

	account := &models.Account{
		UserID:      userID,
		Name:        name,
		Type:        accountType,
		Description: description,
		Balance:     initialBalance,
		Currency:    currency,
		IsActive:    true,
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return account, nil
}

// GetUserAccounts returns a paginated list of the user's accounts.
func (s *accountService) GetUserAccounts(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	base := s.db.Model(&models.Account{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Scopes(pagination.Paginate(page)).Order("created_at").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountByID returns an account by ID if it belongs to the user.
func (s *accountService) GetAccountByID(userID, accountID uint) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// ApplyToBalance adjusts the account balance for a newly recorded
// transaction. It runs inside the caller's transaction so the balance and
// the ledger row commit together.
func (s *accountService) ApplyToBalance(
	tx *gorm.DB,
	account *models.Account,
	transactionType models.TransactionType,
	amount decimal.Decimal,
) error {
	delta := amount
	if transactionType == models.TransactionTypeExpense {
		delta = amount.Neg()
	}

	newBalance := account.Balance.Add(delta)
	if err := tx.Model(account).Update("balance", newBalance).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	account.Balance = newBalance
	return nil
}

// ReverseFromBalance undoes a previously applied transaction's effect on
// the account balance, e.g. when the transaction is deleted or re-amounted.
func (s *accountService) ReverseFromBalance(
	tx *gorm.DB,
	account *models.Account,
	transactionType models.TransactionType,
	amount decimal.Decimal,
) error {
	delta := amount.Neg()
	if transactionType == models.TransactionTypeExpense {
		delta = amount
	}

	newBalance := account.Balance.Add(delta)
	if err := tx.Model(account).Update("balance", newBalance).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	account.Balance = newBalance
	return nil
}
