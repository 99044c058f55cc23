package models

import "fintrack/internal/money"

// Account is a place money is kept. Balance is derived state: it always equals
// OpeningBalance plus the effect of every stored operation that references the
// account, and is written only by the ledger engine.
type Account struct {
	Base
	Name           string       `gorm:"not null" json:"name"`
	OpeningBalance money.Amount `gorm:"type:bigint;not null;default:0" json:"opening_balance"`
	Balance        money.Amount `gorm:"type:bigint;not null;default:0" json:"balance"`
	IsActive       bool         `gorm:"not null" json:"is_active"`
}
