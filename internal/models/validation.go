package models

import (
	"errors"
	"strings"
	"time"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// Validation errors for the shared data model.
var (
	ErrEmptyName             = errors.New("name is required")
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrInvalidLimit          = errors.New("limit must be greater than zero")
	ErrInvalidOperationType  = errors.New("operation type must be income, expense or transfer")
	ErrInvalidCategoryType   = errors.New("category type must be income, expense or savings")
	ErrMissingAccount        = errors.New("account is required")
	ErrMissingCategory       = errors.New("category is required for income and expense operations")
	ErrMissingDestination    = errors.New("destination account is required for transfers")
	ErrUnexpectedDestination = errors.New("destination account is only allowed for transfers")
	ErrSameAccountTransfer   = errors.New("cannot transfer to the same account")
	ErrInvalidDate           = errors.New("date must be a calendar day in YYYY-MM-DD form")
	ErrInvalidMonth          = errors.New("month must be in YYYY-MM form")
)

var validationErrors = []error{
	ErrEmptyName, ErrInvalidAmount, ErrInvalidLimit, ErrInvalidOperationType,
	ErrInvalidCategoryType, ErrMissingAccount, ErrMissingCategory, ErrMissingDestination,
	ErrUnexpectedDestination, ErrSameAccountTransfer, ErrInvalidDate, ErrInvalidMonth,
}

// IsValidationError reports whether err is one of the validation errors above.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ParseDay parses an ISO calendar day (YYYY-MM-DD).
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ParseMonth parses an ISO month (YYYY-MM).
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidMonth
	}
	return t, nil
}

// Day formats t as an ISO calendar day.
func Day(t time.Time) string { return t.Format(dayLayout) }

// MonthOf formats t as an ISO month.
func MonthOf(t time.Time) string { return t.Format(monthLayout) }

// Validate checks an account before it is stored.
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Validate checks a category before it is stored.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return ErrInvalidCategoryType
	}
	return nil
}

// Validate checks the structural invariants of an operation. It does not
// resolve references; that is up to the caller holding the collections.
func (o *Operation) Validate() error {
	if !o.Type.Valid() {
		return ErrInvalidOperationType
	}
	if !o.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if o.AccountID == "" {
		return ErrMissingAccount
	}
	if _, err := ParseDay(o.Date); err != nil {
		return err
	}

	if o.Type == OperationTypeTransfer {
		if o.ToAccountID == nil || *o.ToAccountID == "" {
			return ErrMissingDestination
		}
		if *o.ToAccountID == o.AccountID {
			return ErrSameAccountTransfer
		}
		return nil
	}

	if o.ToAccountID != nil {
		return ErrUnexpectedDestination
	}
	if o.CategoryID == nil || *o.CategoryID == "" {
		return ErrMissingCategory
	}
	return nil
}

// Validate checks a budget before it is stored.
func (b *Budget) Validate() error {
	if b.CategoryID == "" {
		return ErrMissingCategory
	}
	if _, err := ParseMonth(b.Month); err != nil {
		return err
	}
	if !b.Limit.IsPositive() {
		return ErrInvalidLimit
	}
	return nil
}
