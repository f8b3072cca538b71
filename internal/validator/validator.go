// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("hex_color", validateHexColor)
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("category_type", validateCategoryType)
		_ = v.RegisterValidation("account_type", validateAccountType)
		_ = v.RegisterValidation("budget_period", validateBudgetPeriod)
		_ = v.RegisterValidation("goal_type", validateGoalType)
		_ = v.RegisterValidation("goal_status", validateGoalStatus)
	}
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "EXPENSE", "INCOME", "TRANSFER":
		return true
	}
	return false
}

func validateCategoryType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "EXPENSE", "INCOME", "BOTH":
		return true
	}
	return false
}

func validateAccountType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "CASH", "BANK", "CREDIT_CARD":
		return true
	}
	return false
}

func validateBudgetPeriod(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "MONTHLY", "YEARLY", "CUSTOM":
		return true
	}
	return false
}

func validateGoalType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "SAVINGS", "DEBT_PAYMENT", "PURCHASE", "EMERGENCY_FUND", "INVESTMENT", "OTHER":
		return true
	}
	return false
}

func validateGoalStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "ACTIVE", "COMPLETED", "PAUSED", "CANCELLED":
		return true
	}
	return false
}
