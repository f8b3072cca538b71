package integration

import (
	"fmt"
	"net/http"
	"testing"
)

const (
	testWindowStart = "2026-02-01T00:00:00Z"
	testWindowEnd   = "2026-02-28T00:00:00Z"
	testSpendDate   = "2026-02-10T00:00:00Z"
)

// createBudget creates a category-scoped monthly budget and returns its ID.
func createBudget(t *testing.T, app *testApp, token string, categoryID float64, amount string) float64 {
	t.Helper()
	rec := app.request("POST", "/api/v1/budgets",
		fmt.Sprintf(`{"category_id":%.0f,"name":"Groceries","amount":%q,"period":"MONTHLY","start_date":%q,"end_date":%q}`,
			categoryID, amount, testWindowStart, testWindowEnd), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create budget failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["budget"].(map[string]interface{})["id"].(float64)
}

// spend records an expense in the test window against the given category.
func spend(t *testing.T, app *testApp, token string, accountID, categoryID float64, amount string) {
	t.Helper()
	rec := app.request("POST", "/api/v1/transactions",
		fmt.Sprintf(`{"account_id":%.0f,"category_id":%.0f,"type":"EXPENSE","amount":%q,"date":%q}`,
			accountID, categoryID, amount, testSpendDate), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense failed: %d %s", rec.Code, rec.Body.String())
	}
}

func listNotifications(t *testing.T, app *testApp, token string) []interface{} {
	t.Helper()
	rec := app.request("GET", "/api/v1/notifications", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list notifications failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["data"].([]interface{})
}

func TestBudgetAlertFlow_GradualEscalation(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "escalation@test.com", "password123")
	catID := app.createCategory(t, token, "Groceries")
	acctID := app.createAccount(t, token, "Checking", "5000.00")
	budgetID := createBudget(t, app, token, catID, "1000.00")

	// No spending yet: status safe, no notifications.
	rec := app.request("GET", fmt.Sprintf("/api/v1/budgets/%.0f/status", budgetID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	status := parseJSON(t, rec)["status"].(map[string]interface{})
	if status["status"] != "safe" {
		t.Errorf("expected status safe, got %v", status["status"])
	}

	// Spend to 85%: the 80 threshold fires as part of the expense write.
	spend(t, app, token, acctID, catID, "850.00")

	notifications := listNotifications(t, app, token)
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification after 85%%, got %d", len(notifications))
	}
	first := notifications[0].(map[string]interface{})
	if first["type"] != "BUDGET_ALERT" {
		t.Errorf("expected BUDGET_ALERT, got %v", first["type"])
	}
	if first["priority"] != "WARNING" {
		t.Errorf("expected WARNING priority, got %v", first["priority"])
	}
	if first["threshold"].(float64) != 80 {
		t.Errorf("expected threshold 80, got %v", first["threshold"])
	}

	// Running the check again creates nothing new.
	rec = app.request("POST", "/api/v1/budgets/check-alerts", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if created := parseJSON(t, rec)["created"].([]interface{}); len(created) != 0 {
		t.Errorf("expected no new notifications on recheck, got %d", len(created))
	}

	// Spend to 95%: only the 90 threshold fires.
	spend(t, app, token, acctID, catID, "100.00")
	if n := len(listNotifications(t, app, token)); n != 2 {
		t.Fatalf("expected 2 notifications after 95%%, got %d", n)
	}

	// Spend to 105%: only the 100 threshold fires.
	spend(t, app, token, acctID, catID, "100.00")
	notifications = listNotifications(t, app, token)
	if len(notifications) != 3 {
		t.Fatalf("expected 3 notifications after 105%%, got %d", len(notifications))
	}

	// Status reflects the overshoot.
	rec = app.request("GET", fmt.Sprintf("/api/v1/budgets/%.0f/status", budgetID), "", token)
	status = parseJSON(t, rec)["status"].(map[string]interface{})
	if status["status"] != "exceeded" {
		t.Errorf("expected status exceeded, got %v", status["status"])
	}
	assertAmount(t, status["spent"], "1050.00")
	assertAmount(t, status["remaining"], "-50.00")

	// The alerts listing now includes the budget.
	rec = app.request("GET", "/api/v1/budgets/alerts", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	alerts := parseJSON(t, rec)["alerts"].([]interface{})
	if len(alerts) != 1 {
		t.Fatalf("expected 1 budget in alert state, got %d", len(alerts))
	}
}

func TestBudgetAlertFlow_BurstFiresAllThresholds(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "burst@test.com", "password123")
	catID := app.createCategory(t, token, "Dining")
	acctID := app.createAccount(t, token, "Wallet", "5000.00")
	createBudget(t, app, token, catID, "1000.00")

	// A single expense jumps 0% -> 150%: all three thresholds fire at once.
	spend(t, app, token, acctID, catID, "1500.00")

	notifications := listNotifications(t, app, token)
	if len(notifications) != 3 {
		t.Fatalf("expected 3 notifications after the burst, got %d", len(notifications))
	}

	seen := map[float64]bool{}
	for _, n := range notifications {
		seen[n.(map[string]interface{})["threshold"].(float64)] = true
	}
	for _, want := range []float64{80, 90, 100} {
		if !seen[want] {
			t.Errorf("expected a notification for threshold %.0f", want)
		}
	}

	// Unread count matches.
	rec := app.request("GET", "/api/v1/notifications/unread-count", "", token)
	if count := parseJSON(t, rec)["unread_count"].(float64); count != 3 {
		t.Errorf("expected unread count 3, got %.0f", count)
	}
}

func TestBudgetAlertFlow_ClearRearmsThresholds(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "rearm@test.com", "password123")
	catID := app.createCategory(t, token, "Transport")
	acctID := app.createAccount(t, token, "Card", "5000.00")
	budgetID := createBudget(t, app, token, catID, "1000.00")

	spend(t, app, token, acctID, catID, "1200.00")
	if n := len(listNotifications(t, app, token)); n != 3 {
		t.Fatalf("expected 3 notifications, got %d", n)
	}

	// Clearing deletes the notifications outright.
	rec := app.request("DELETE", fmt.Sprintf("/api/v1/budgets/%.0f/alerts", budgetID), "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if n := len(listNotifications(t, app, token)); n != 0 {
		t.Fatalf("expected 0 notifications after clearing, got %d", n)
	}

	// The dedupe slots are free again, so the next check re-fires everything.
	rec = app.request("POST", "/api/v1/budgets/check-alerts", "", token)
	if created := parseJSON(t, rec)["created"].([]interface{}); len(created) != 3 {
		t.Errorf("expected 3 re-created notifications, got %d", len(created))
	}
}

func TestBudgetAlertFlow_DeleteBudgetRemovesAlerts(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "bdelete@test.com", "password123")
	catID := app.createCategory(t, token, "Hobby")
	acctID := app.createAccount(t, token, "Cash", "5000.00")
	budgetID := createBudget(t, app, token, catID, "100.00")

	spend(t, app, token, acctID, catID, "150.00")
	if n := len(listNotifications(t, app, token)); n != 3 {
		t.Fatalf("expected 3 notifications, got %d", n)
	}

	rec := app.request("DELETE", fmt.Sprintf("/api/v1/budgets/%.0f", budgetID), "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	if n := len(listNotifications(t, app, token)); n != 0 {
		t.Errorf("expected notifications removed with the budget, got %d", n)
	}
}

func TestBudgetAlertFlow_DeletingSpendingDoesNotRetract(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "noretract@test.com", "password123")
	catID := app.createCategory(t, token, "Shopping")
	acctID := app.createAccount(t, token, "Debit", "5000.00")
	budgetID := createBudget(t, app, token, catID, "1000.00")

	spend(t, app, token, acctID, catID, "850.00")
	if n := len(listNotifications(t, app, token)); n != 1 {
		t.Fatalf("expected 1 notification, got %d", n)
	}

	// Find and delete the expense; spending drops back below the threshold.
	rec := app.request("GET", "/api/v1/transactions", "", token)
	txID := parseJSON(t, rec)["data"].([]interface{})[0].(map[string]interface{})["id"].(float64)
	rec = app.request("DELETE", fmt.Sprintf("/api/v1/transactions/%.0f", txID), "", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	// Status de-escalates but the notification stays.
	rec = app.request("GET", fmt.Sprintf("/api/v1/budgets/%.0f/status", budgetID), "", token)
	status := parseJSON(t, rec)["status"].(map[string]interface{})
	if status["status"] != "safe" {
		t.Errorf("expected status safe after deleting the expense, got %v", status["status"])
	}
	if n := len(listNotifications(t, app, token)); n != 1 {
		t.Errorf("expected the alert to remain, got %d notifications", n)
	}
}
