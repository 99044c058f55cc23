package models

import "fintrack/internal/money"

// Budget is a spending limit for one category in one calendar month.
// At most one budget exists per (CategoryID, Month).
type Budget struct {
	Base
	CategoryID string       `gorm:"type:uuid;not null;index:idx_budgets_category_month" json:"category_id"`
	Month      string       `gorm:"type:char(7);not null;index:idx_budgets_category_month" json:"month"`
	Limit      money.Amount `gorm:"column:limit_amount;type:bigint;not null" json:"limit"`
}

// BudgetProgress is the derived spend-vs-limit view of a budget for its month.
// It is recomputed on demand and never persisted.
type BudgetProgress struct {
	Budget     Budget       `json:"budget"`
	Category   Category     `json:"category"`
	Spent      money.Amount `json:"spent"`
	Remaining  money.Amount `json:"remaining"`
	Percentage float64      `json:"percentage"`
}
