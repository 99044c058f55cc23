package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"fintrack/internal/models"
	"fintrack/internal/money"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestAccount creates an active account whose opening and current
// balance are both balance (in cents).
func CreateTestAccount(t *testing.T, db *gorm.DB, balance money.Amount) *models.Account {
	t.Helper()

	account := &models.Account{
		Name:           fmt.Sprintf("Test Account %d", nextID()),
		OpeningBalance: balance,
		Balance:        balance,
		IsActive:       true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		Name: fmt.Sprintf("Test Category %d", nextID()),
		Type: categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestOperation stores op as-is. Balances are not touched, which makes
// it useful for building drifted state.
func CreateTestOperation(t *testing.T, db *gorm.DB, op *models.Operation) *models.Operation {
	t.Helper()

	if op.Date == "" {
		op.Date = "2024-03-15"
	}
	if err := db.Create(op).Error; err != nil {
		t.Fatalf("failed to create test operation: %v", err)
	}
	return op
}

// CreateTestBudget creates a budget for the given category and month.
func CreateTestBudget(t *testing.T, db *gorm.DB, categoryID, month string, limit money.Amount) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		CategoryID: categoryID,
		Month:      month,
		Limit:      limit,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}
