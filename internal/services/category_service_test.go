package services

import (
	"testing"
	"time"

	"plutoa/internal/models"
	"plutoa/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		category, err := svc.CreateCategory(user.ID, "Groceries", models.CategoryTypeExpense, "food", "cart", "#00FF00")
		testutil.AssertNoError(t, err)
		if category.ID == 0 {
			t.Fatal("expected non-zero category ID")
		}
		if category.Type != models.CategoryTypeExpense {
			t.Errorf("expected EXPENSE, got %s", category.Type)
		}
	})

	t.Run("duplicate_name_per_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "Rent", models.CategoryTypeExpense, "", "", "")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(user.ID, "Rent", models.CategoryTypeExpense, "", "", "")
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")

		// Same name for a different user is fine.
		_, err = svc.CreateCategory(other.ID, "Rent", models.CategoryTypeExpense, "", "", "")
		testutil.AssertNoError(t, err)
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("nulls_references_instead_of_cascading", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		day := testutil.Date(2026, time.February, 10)
		transaction := testutil.CreateTestExpense(t, db, user.ID, &category.ID, testutil.Amount(t, "50.00"), day)
		budget := testutil.CreateTestBudget(t, db, user.ID, &category.ID, testutil.Amount(t, "500.00"),
			testutil.Date(2026, time.February, 1), testutil.Date(2026, time.February, 28))

		testutil.AssertNoError(t, svc.DeleteCategory(user.ID, category.ID))

		var reloadedTransaction models.Transaction
		db.First(&reloadedTransaction, transaction.ID)
		if reloadedTransaction.CategoryID != nil {
			t.Error("expected transaction category to be nulled")
		}

		var reloadedBudget models.Budget
		db.First(&reloadedBudget, budget.ID)
		if reloadedBudget.CategoryID != nil {
			t.Error("expected budget category to be nulled")
		}

		_, err := svc.GetCategoryByID(user.ID, category.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		err := svc.DeleteCategory(other.ID, category.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestUpdateCategory(t *testing.T) {
	t.Run("rename_collision", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "Food", models.CategoryTypeExpense, "", "", "")
		testutil.AssertNoError(t, err)
		second, err := svc.CreateCategory(user.ID, "Travel", models.CategoryTypeExpense, "", "", "")
		testutil.AssertNoError(t, err)

		_, err = svc.UpdateCategory(user.ID, second.ID, "Food", "", "", "")
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})
}
