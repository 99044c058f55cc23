package models

// CategoryType classifies a category.
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
	CategoryTypeSavings CategoryType = "savings"
)

// Valid reports whether t is a known category type.
func (t CategoryType) Valid() bool {
	switch t {
	case CategoryTypeIncome, CategoryTypeExpense, CategoryTypeSavings:
		return true
	}
	return false
}

// Category is a pure classification label for operations and budgets.
type Category struct {
	Base
	Name string       `gorm:"not null" json:"name"`
	Type CategoryType `gorm:"not null;index" json:"type"`
}
