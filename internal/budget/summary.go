package budget

import (
	"fintrack/internal/models"
	"fintrack/internal/money"
)

// Summary is the month overview shown next to budget progress.
type Summary struct {
	Month          string       `json:"month"`
	TotalBalance   money.Amount `json:"total_balance"`
	ActiveAccounts int          `json:"active_accounts"`
	Income         money.Amount `json:"income"`
	Expenses       money.Amount `json:"expenses"`
	Net            money.Amount `json:"net"`
}

// Summarize totals active balances and the month's income and expenses.
// Transfers move money between accounts and count as neither.
func Summarize(month string, accounts []models.Account, ops []models.Operation) Summary {
	s := Summary{Month: month}
	for _, a := range accounts {
		if !a.IsActive {
			continue
		}
		s.ActiveAccounts++
		s.TotalBalance += a.Balance
	}

	for i := range ops {
		op := &ops[i]
		if !op.InMonth(month) {
			continue
		}
		switch op.Type {
		case models.OperationTypeIncome:
			s.Income += op.Amount
		case models.OperationTypeExpense:
			s.Expenses += op.Amount
		}
	}
	s.Net = s.Income - s.Expenses
	return s
}
