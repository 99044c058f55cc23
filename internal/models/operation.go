package models

import "fintrack/internal/money"

// OperationType is the kind of financial event an operation records.
type OperationType string

const (
	OperationTypeIncome   OperationType = "income"
	OperationTypeExpense  OperationType = "expense"
	OperationTypeTransfer OperationType = "transfer"
)

// Valid reports whether t is a known operation type.
func (t OperationType) Valid() bool {
	switch t {
	case OperationTypeIncome, OperationTypeExpense, OperationTypeTransfer:
		return true
	}
	return false
}

// CategoryType returns the category type an operation of this type is filed under.
func (t OperationType) CategoryType() CategoryType {
	switch t {
	case OperationTypeIncome:
		return CategoryTypeIncome
	case OperationTypeTransfer:
		return CategoryTypeSavings
	default:
		return CategoryTypeExpense
	}
}

// Operation is a single recorded income, expense or transfer.
//
// Amount is always a positive magnitude; the direction of the balance change
// follows from Type and the account's role (source or destination).
type Operation struct {
	Base
	Type        OperationType `gorm:"not null;index" json:"type"`
	Amount      money.Amount  `gorm:"type:bigint;not null" json:"amount"`
	AccountID   string        `gorm:"type:uuid;not null;index" json:"account_id"`
	CategoryID  *string       `gorm:"type:uuid;index" json:"category_id,omitempty"`
	ToAccountID *string       `gorm:"type:uuid;index" json:"to_account_id,omitempty"`
	Date        string        `gorm:"type:char(10);not null;index" json:"date"`
	Note        string        `json:"note,omitempty"`
}

// Month returns the YYYY-MM prefix of the operation date.
func (o *Operation) Month() string {
	if len(o.Date) < 7 {
		return ""
	}
	return o.Date[:7]
}

// InMonth reports whether the operation date falls in month (YYYY-MM).
func (o *Operation) InMonth(month string) bool {
	return month != "" && o.Month() == month
}

// HasCategory reports whether the operation is filed under categoryID.
func (o *Operation) HasCategory(categoryID string) bool {
	return o.CategoryID != nil && *o.CategoryID == categoryID
}

// References returns the ids of the accounts whose balance the operation affects.
func (o *Operation) References() []string {
	if o.Type == OperationTypeTransfer && o.ToAccountID != nil && *o.ToAccountID != o.AccountID {
		return []string{o.AccountID, *o.ToAccountID}
	}
	return []string{o.AccountID}
}
