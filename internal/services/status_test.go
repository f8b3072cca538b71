package services

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("invalid decimal literal %q: %v", value, err)
	}
	return d
}

func TestComputeBudgetStatus(t *testing.T) {
	cases := []struct {
		name       string
		amount     string
		spent      string
		status     StatusTier
		percentage float64
		remaining  string
	}{
		{"zero_spent", "1000.00", "0.00", StatusSafe, 0, "1000.00"},
		{"below_warning", "1000.00", "799.99", StatusSafe, 79.999, "200.01"},
		{"warning_boundary", "1000.00", "800.00", StatusWarning, 80, "200.00"},
		{"mid_warning", "1000.00", "850.00", StatusWarning, 85, "150.00"},
		{"danger_boundary", "1000.00", "900.00", StatusDanger, 90, "100.00"},
		{"just_below_exceeded", "1000.00", "999.99", StatusDanger, 99.999, "0.01"},
		{"exceeded_boundary", "1000.00", "1000.00", StatusExceeded, 100, "0.00"},
		{"over_budget", "1000.00", "1050.00", StatusExceeded, 105, "-50.00"},
		{"awkward_amount", "333.33", "266.67", StatusWarning, 80.001, "66.66"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status := ComputeBudgetStatus(dec(t, tc.amount), dec(t, tc.spent))

			if status.Status != tc.status {
				t.Errorf("expected status %s, got %s", tc.status, status.Status)
			}
			if !status.Remaining.Equal(dec(t, tc.remaining)) {
				t.Errorf("expected remaining %s, got %s", tc.remaining, status.Remaining)
			}
			if diff := status.Percentage - tc.percentage; diff > 0.01 || diff < -0.01 {
				t.Errorf("expected percentage %.3f, got %.3f", tc.percentage, status.Percentage)
			}
		})
	}

	t.Run("zero_amount_budget", func(t *testing.T) {
		status := ComputeBudgetStatus(decimal.Zero, dec(t, "500.00"))

		if status.Status != StatusSafe {
			t.Errorf("expected status safe, got %s", status.Status)
		}
		if status.Percentage != 0 {
			t.Errorf("expected percentage 0, got %f", status.Percentage)
		}
		if !status.Remaining.Equal(dec(t, "-500.00")) {
			t.Errorf("expected remaining -500.00, got %s", status.Remaining)
		}
	})
}

func TestCrossesThreshold(t *testing.T) {
	t.Run("exact_boundaries", func(t *testing.T) {
		amount := dec(t, "1000.00")

		for _, tc := range []struct {
			spent     string
			threshold int
			want      bool
		}{
			{"799.99", 80, false},
			{"800.00", 80, true},
			{"899.99", 90, false},
			{"900.00", 90, true},
			{"999.99", 100, false},
			{"1000.00", 100, true},
			{"1000.01", 100, true},
		} {
			if got := crossesThreshold(amount, dec(t, tc.spent), tc.threshold); got != tc.want {
				t.Errorf("crossesThreshold(1000, %s, %d) = %v, want %v", tc.spent, tc.threshold, got, tc.want)
			}
		}
	})

	t.Run("non_decade_amount", func(t *testing.T) {
		// 80% of 333.33 is 266.664: 266.66 is below, 266.67 crosses.
		amount := dec(t, "333.33")
		if crossesThreshold(amount, dec(t, "266.66"), 80) {
			t.Error("266.66 of 333.33 should not cross 80%")
		}
		if !crossesThreshold(amount, dec(t, "266.67"), 80) {
			t.Error("266.67 of 333.33 should cross 80%")
		}
	})

	t.Run("zero_amount_never_crosses", func(t *testing.T) {
		if crossesThreshold(decimal.Zero, dec(t, "100.00"), 80) {
			t.Error("zero amount should never cross a threshold")
		}
	})
}
