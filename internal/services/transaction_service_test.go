package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"plutoa/internal/models"
	"plutoa/internal/testutil"
)

func newTransactionTestService(db *gorm.DB) TransactionServicer {
	accounts := NewAccountService(db)
	alerts := NewAlertService(db, NewLedgerService(db))
	return NewTransactionService(db, accounts, alerts)
}

func TestCreateTransaction(t *testing.T) {
	t.Run("expense_reduces_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionTestService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID, testutil.Amount(t, "1000.00"))

		transaction, err := svc.CreateTransaction(
			user.ID, &account.ID, nil,
			models.TransactionTypeExpense, testutil.Amount(t, "150.50"),
			"lunch", testutil.Date(2026, time.February, 10),
		)
		testutil.AssertNoError(t, err)
		if transaction.ID == 0 {
			t.Fatal("expected non-zero transaction ID")
		}

		var reloaded models.Account
		db.First(&reloaded, account.ID)
		testutil.AssertDecimalEqual(t, "849.50", reloaded.Balance)
	})

	t.Run("income_increases_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionTestService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID, testutil.Amount(t, "100.00"))

		_, err := svc.CreateTransaction(
			user.ID, &account.ID, nil,
			models.TransactionTypeIncome, testutil.Amount(t, "2500.00"),
			"salary", testutil.Date(2026, time.February, 1),
		)
		testutil.AssertNoError(t, err)

		var reloaded models.Account
		db.First(&reloaded, account.ID)
		testutil.AssertDecimalEqual(t, "2600.00", reloaded.Balance)
	})

	t.Run("expense_triggers_budget_alerts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionTestService(db)
		user := testutil.CreateTestUser(t, db)
		start, end := testutil.Date(2026, time.February, 1), testutil.Date(2026, time.February, 28)
		budget := testutil.CreateTestBudget(t, db, user.ID, nil, testutil.Amount(t, "1000.00"), start, end)

		_, err := svc.CreateTransaction(
			user.ID, nil, nil,
			models.TransactionTypeExpense, testutil.Amount(t, "850.00"),
			"", start,
		)
		testutil.AssertNoError(t, err)

		var count int64
		db.Model(&models.Notification{}).
			Where("user_id = ? AND type = ? AND related_id = ?", user.ID, models.NotificationTypeBudgetAlert, budget.ID).
			Count(&count)
		if count != 1 {
			t.Errorf("expected 1 budget alert after 85%% expense, got %d", count)
		}
	})

	t.Run("income_does_not_trigger_alerts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionTestService(db)
		user := testutil.CreateTestUser(t, db)
		start, end := testutil.Date(2026, time.February, 1), testutil.Date(2026, time.February, 28)
		testutil.CreateTestBudget(t, db, user.ID, nil, testutil.Amount(t, "1000.00"), start, end)

		_, err := svc.CreateTransaction(
			user.ID, nil, nil,
			models.TransactionTypeIncome, testutil.Amount(t, "5000.00"),
			"", start,
		)
		testutil.AssertNoError(t, err)

		var count int64
		db.Model(&models.Notification{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 0 {
			t.Errorf("expected no notifications after income, got %d", count)
		}
	})

	t.Run("rejects_transfer_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionTestService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateTransaction(
			user.ID, nil, nil,
			models.TransactionTypeTransfer, testutil.Amount(t, "10.00"),
			"", testutil.Date(2026, time.February, 1),
		)
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
	})

	t.Run("category_type_must_match", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionTestService(db)
		user := testutil.CreateTestUser(t, db)
		incomeCat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)

		_, err := svc.CreateTransaction(
			user.ID, nil, &incomeCat.ID,
			models.TransactionTypeExpense, testutil.Amount(t, "10.00"),
			"", testutil.Date(2026, time.February, 1),
		)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("date_is_normalized_to_midnight_utc", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionTestService(db)
		user := testutil.CreateTestUser(t, db)

		noon := time.Date(2026, time.February, 10, 12, 34, 56, 0, time.UTC)
		transaction, err := svc.CreateTransaction(
			user.ID, nil, nil,
			models.TransactionTypeExpense, testutil.Amount(t, "10.00"),
			"", noon,
		)
		testutil.AssertNoError(t, err)
		if !transaction.Date.Equal(testutil.Date(2026, time.February, 10)) {
			t.Errorf("expected midnight UTC date, got %s", transaction.Date)
		}
	})
}

func TestCreateTransfer(t *testing.T) {
	t.Run("moves_money_between_accounts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionTestService(db)
		user := testutil.CreateTestUser(t, db)
		from := testutil.CreateTestAccount(t, db, user.ID, testutil.Amount(t, "500.00"))
		to := testutil.CreateTestAccount(t, db, user.ID, testutil.Amount(t, "0"))

		transaction, err := svc.CreateTransfer(user.ID, from.ID, to.ID, testutil.Amount(t, "200.00"), "move", testutil.Date(2026, time.February, 5))
		testutil.AssertNoError(t, err)
		if transaction.Type != models.TransactionTypeTransfer {
			t.Errorf("expected TRANSFER, got %s", transaction.Type)
		}

		var fromReloaded, toReloaded models.Account
		db.First(&fromReloaded, from.ID)
		db.First(&toReloaded, to.ID)
		testutil.AssertDecimalEqual(t, "300.00", fromReloaded.Balance)
		testutil.AssertDecimalEqual(t, "200.00", toReloaded.Balance)
	})

	t.Run("same_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionTestService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID, testutil.Amount(t, "500.00"))

		_, err := svc.CreateTransfer(user.ID, account.ID, account.ID, testutil.Amount(t, "10.00"), "", testutil.Date(2026, time.February, 5))
		testutil.AssertAppError(t, err, "SAME_ACCOUNT_TRANSFER")
	})

	t.Run("transfer_never_counts_against_budgets", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionTestService(db)
		user := testutil.CreateTestUser(t, db)
		from := testutil.CreateTestAccount(t, db, user.ID, testutil.Amount(t, "5000.00"))
		to := testutil.CreateTestAccount(t, db, user.ID, testutil.Amount(t, "0"))
		start, end := testutil.Date(2026, time.February, 1), testutil.Date(2026, time.February, 28)
		testutil.CreateTestBudget(t, db, user.ID, nil, testutil.Amount(t, "1000.00"), start, end)

		_, err := svc.CreateTransfer(user.ID, from.ID, to.ID, testutil.Amount(t, "4000.00"), "", start)
		testutil.AssertNoError(t, err)

		var count int64
		db.Model(&models.Notification{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 0 {
			t.Errorf("expected no alerts from a transfer, got %d", count)
		}
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("amount_change_adjusts_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionTestService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID, testutil.Amount(t, "1000.00"))

		transaction, err := svc.CreateTransaction(
			user.ID, &account.ID, nil,
			models.TransactionTypeExpense, testutil.Amount(t, "100.00"),
			"", testutil.Date(2026, time.February, 10),
		)
		testutil.AssertNoError(t, err)

		newAmount := testutil.Amount(t, "250.00")
		_, err = svc.UpdateTransaction(user.ID, transaction.ID, &newAmount, nil, nil, nil)
		testutil.AssertNoError(t, err)

		var reloaded models.Account
		db.First(&reloaded, account.ID)
		testutil.AssertDecimalEqual(t, "750.00", reloaded.Balance)
	})

	t.Run("raising_expense_can_trigger_alerts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionTestService(db)
		user := testutil.CreateTestUser(t, db)
		start, end := testutil.Date(2026, time.February, 1), testutil.Date(2026, time.February, 28)
		testutil.CreateTestBudget(t, db, user.ID, nil, testutil.Amount(t, "1000.00"), start, end)

		transaction, err := svc.CreateTransaction(
			user.ID, nil, nil,
			models.TransactionTypeExpense, testutil.Amount(t, "100.00"),
			"", start,
		)
		testutil.AssertNoError(t, err)

		newAmount := testutil.Amount(t, "950.00")
		_, err = svc.UpdateTransaction(user.ID, transaction.ID, &newAmount, nil, nil, nil)
		testutil.AssertNoError(t, err)

		var count int64
		db.Model(&models.Notification{}).
			Where("user_id = ? AND type = ?", user.ID, models.NotificationTypeBudgetAlert).
			Count(&count)
		if count != 2 {
			t.Errorf("expected 80%% and 90%% alerts after the raise, got %d", count)
		}
	})

	t.Run("transfers_are_not_editable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionTestService(db)
		user := testutil.CreateTestUser(t, db)
		from := testutil.CreateTestAccount(t, db, user.ID, testutil.Amount(t, "500.00"))
		to := testutil.CreateTestAccount(t, db, user.ID, testutil.Amount(t, "0"))

		transfer, err := svc.CreateTransfer(user.ID, from.ID, to.ID, testutil.Amount(t, "100.00"), "", testutil.Date(2026, time.February, 5))
		testutil.AssertNoError(t, err)

		newAmount := testutil.Amount(t, "200.00")
		_, err = svc.UpdateTransaction(user.ID, transfer.ID, &newAmount, nil, nil, nil)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_EDITABLE")
	})
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("reverses_balance_but_keeps_alerts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionTestService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID, testutil.Amount(t, "1000.00"))
		start, end := testutil.Date(2026, time.February, 1), testutil.Date(2026, time.February, 28)
		testutil.CreateTestBudget(t, db, user.ID, nil, testutil.Amount(t, "100.00"), start, end)

		transaction, err := svc.CreateTransaction(
			user.ID, &account.ID, nil,
			models.TransactionTypeExpense, testutil.Amount(t, "120.00"),
			"", start,
		)
		testutil.AssertNoError(t, err)

		var alerts int64
		db.Model(&models.Notification{}).Where("user_id = ?", user.ID).Count(&alerts)
		if alerts != 3 {
			t.Fatalf("expected 3 alerts before delete, got %d", alerts)
		}

		testutil.AssertNoError(t, svc.DeleteTransaction(user.ID, transaction.ID))

		var reloaded models.Account
		db.First(&reloaded, account.ID)
		testutil.AssertDecimalEqual(t, "1000.00", reloaded.Balance)

		// No de-escalation: issued alerts survive the removal of spending.
		db.Model(&models.Notification{}).Where("user_id = ?", user.ID).Count(&alerts)
		if alerts != 3 {
			t.Errorf("expected alerts to survive the delete, got %d", alerts)
		}
	})

	t.Run("transfer_delete_restores_both_accounts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTransactionTestService(db)
		user := testutil.CreateTestUser(t, db)
		from := testutil.CreateTestAccount(t, db, user.ID, testutil.Amount(t, "500.00"))
		to := testutil.CreateTestAccount(t, db, user.ID, testutil.Amount(t, "100.00"))

		transfer, err := svc.CreateTransfer(user.ID, from.ID, to.ID, testutil.Amount(t, "300.00"), "", testutil.Date(2026, time.February, 5))
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.DeleteTransaction(user.ID, transfer.ID))

		var fromReloaded, toReloaded models.Account
		db.First(&fromReloaded, from.ID)
		db.First(&toReloaded, to.ID)
		testutil.AssertDecimalEqual(t, "500.00", fromReloaded.Balance)
		testutil.AssertDecimalEqual(t, "100.00", toReloaded.Balance)
	})
}
