// Package errors provides the application error type for the fintrack API.
// Service-layer errors are AppErrors so that handlers can render consistent
// responses without leaking internal details to clients.
package errors

import "net/http"

// AppError is an error with a stable machine-readable code and the HTTP
// status it maps to. Internal carries the underlying cause for logs only.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Internal }

// Is matches on Code, so errors.Is(err, ErrAccountNotFound) holds for any
// copy made by Wrap or WithMessage.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func derive(sentinel *AppError, message string, internal error) *AppError {
	return &AppError{Code: sentinel.Code, Message: message, StatusCode: sentinel.StatusCode, Internal: internal}
}

// Wrap attaches an internal cause to a copy of sentinel.
func Wrap(sentinel *AppError, internal error) *AppError {
	return derive(sentinel, sentinel.Message, internal)
}

// WithMessage copies sentinel with a client-facing message of its own.
func WithMessage(sentinel *AppError, message string) *AppError {
	return derive(sentinel, message, sentinel.Internal)
}

// Authentication errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid username or password", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Account errors.
var (
	ErrAccountNotFound = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
	ErrAccountInUse    = &AppError{Code: "ACCOUNT_IN_USE", Message: "Account is referenced by existing operations", StatusCode: http.StatusConflict}
)

// Category errors.
var (
	ErrCategoryNotFound     = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrCategoryTypeMismatch = &AppError{Code: "CATEGORY_TYPE_MISMATCH", Message: "Category type does not match the operation type", StatusCode: http.StatusBadRequest}
)

// Operation errors.
var (
	ErrOperationNotFound = &AppError{Code: "OPERATION_NOT_FOUND", Message: "Operation not found", StatusCode: http.StatusNotFound}
	ErrReference         = &AppError{Code: "REFERENCE_ERROR", Message: "Operation references an account that does not exist", StatusCode: http.StatusUnprocessableEntity}
)

// Budget errors.
var (
	ErrBudgetNotFound  = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
	ErrDuplicateBudget = &AppError{Code: "DUPLICATE_BUDGET", Message: "A budget for this category and month already exists", StatusCode: http.StatusConflict}
)

// Import errors.
var (
	ErrInvalidImport = &AppError{Code: "INVALID_IMPORT", Message: "Import document is invalid", StatusCode: http.StatusBadRequest}
)
