package services

import (
	"context"
	"time"

	"fintrack/internal/budget"
	"fintrack/internal/exchange"
	"fintrack/internal/ledger"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/pagination"
)

// AccountUpdate holds the mutable account fields. Balances are never set
// directly; they follow from operations.
type AccountUpdate struct {
	Name     *string
	IsActive *bool
}

// ReconcileReport lists the accounts whose stored balance disagreed with
// their opening balance plus the operation history.
type ReconcileReport struct {
	Checked int            `json:"checked"`
	Drifts  []ledger.Drift `json:"drifts"`
	Fixed   bool           `json:"fixed"`
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(ctx context.Context, name string, openingBalance money.Amount) (*models.Account, error)
	ListAccounts(ctx context.Context, includeInactive bool, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	UpdateAccount(ctx context.Context, id string, update AccountUpdate) (*models.Account, error)
	DeleteAccount(ctx context.Context, id string) error
	Reconcile(ctx context.Context, fix bool) (*ReconcileReport, error)
}

// CategoryUpdate holds the mutable category fields.
type CategoryUpdate struct {
	Name *string
	Type *models.CategoryType
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(ctx context.Context, name string, categoryType models.CategoryType) (*models.Category, error)
	ListCategories(ctx context.Context, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	UpdateCategory(ctx context.Context, id string, update CategoryUpdate) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// OperationInput carries the caller-supplied fields of an operation.
type OperationInput struct {
	Type        models.OperationType
	Amount      money.Amount
	AccountID   string
	CategoryID  *string
	ToAccountID *string
	Date        string
	Note        string
}

// OperationFilter holds optional filter parameters for listing operations.
type OperationFilter struct {
	Month      string
	FromDate   string
	ToDate     string
	Type       *models.OperationType
	AccountID  *string
	CategoryID *string
}

// OperationServicer defines the contract for operation-related business logic.
// Every mutation keeps account balances in step through the ledger engine.
type OperationServicer interface {
	CreateOperation(ctx context.Context, in OperationInput) (*models.Operation, error)
	GetOperation(ctx context.Context, id string) (*models.Operation, error)
	ListOperations(ctx context.Context, filter OperationFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Operation], error)
	UpdateOperation(ctx context.Context, id string, in OperationInput) (*models.Operation, error)
	DeleteOperation(ctx context.Context, id string) error
}

// BudgetUpdate holds the mutable budget fields.
type BudgetUpdate struct {
	CategoryID *string
	Month      *string
	Limit      *money.Amount
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(ctx context.Context, categoryID, month string, limit money.Amount) (*models.Budget, error)
	GetBudget(ctx context.Context, id string) (*models.Budget, error)
	ListBudgets(ctx context.Context, month string, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	UpdateBudget(ctx context.Context, id string, update BudgetUpdate) (*models.Budget, error)
	DeleteBudget(ctx context.Context, id string) error
	GetProgress(ctx context.Context, month string) ([]models.BudgetProgress, error)
	GetSummary(ctx context.Context, month string) (*budget.Summary, error)
}

// ImportResult reports what an import stored.
type ImportResult struct {
	Accounts   int            `json:"accounts"`
	Categories int            `json:"categories"`
	Operations int            `json:"operations"`
	Budgets    int            `json:"budgets"`
	Restated   []ledger.Drift `json:"restated"`
}

// ExchangeServicer defines the contract for exporting and importing the ledger.
type ExchangeServicer interface {
	Export(ctx context.Context) (*exchange.Document, error)
	Import(ctx context.Context, doc *exchange.Document) (*ImportResult, error)
	SeedDefaults(ctx context.Context) (bool, error)
}

// AuthServicer defines the contract for owner authentication.
type AuthServicer interface {
	Login(username, password string) (token string, expiresAt time.Time, err error)
	ValidateToken(token string) (subject string, err error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(actor, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
