// Package ledger keeps account balances consistent with the operations on record.
//
// Every stored operation contributes a signed effect to the accounts it
// references. The Engine folds that effect into balances when an operation is
// created (Apply), removes it when an operation is deleted (Reverse) and swaps
// one effect for another when an operation is edited (Replace). Balances are
// never assigned directly by any other code path.
//
// The engine holds no locks. Callers must serialise mutations touching
// overlapping accounts.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/models"
	"fintrack/internal/money"
)

// ErrAccountNotFound is returned by Accounts implementations for unknown ids.
var ErrAccountNotFound = errors.New("account not found")

// ErrBalanceOverflow is returned when an effect would push a balance outside
// the range of money.Amount.
var ErrBalanceOverflow = errors.New("balance out of range")

// ReferenceError reports an operation whose account reference does not resolve.
type ReferenceError struct {
	OperationID string
	Field       string
	AccountID   string
	Err         error
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("operation %q: %s %q does not resolve to an account", e.OperationID, e.Field, e.AccountID)
}

func (e *ReferenceError) Unwrap() error { return e.Err }

// Accounts is the narrow repository the engine reads balances from and
// writes them back to.
type Accounts interface {
	// Account returns the account with the given id or ErrAccountNotFound.
	Account(ctx context.Context, id string) (*models.Account, error)
	// UpdateBalances stores the given balances in one unit.
	UpdateBalances(ctx context.Context, balances map[string]money.Amount) error
}

// Effect returns the signed balance delta op contributes to accountID.
func Effect(op *models.Operation, accountID string) money.Amount {
	var delta money.Amount
	switch op.Type {
	case models.OperationTypeIncome:
		if op.AccountID == accountID {
			delta += op.Amount
		}
	case models.OperationTypeExpense:
		if op.AccountID == accountID {
			delta -= op.Amount
		}
	case models.OperationTypeTransfer:
		if op.AccountID == accountID {
			delta -= op.Amount
		}
		if op.ToAccountID != nil && *op.ToAccountID == accountID {
			delta += op.Amount
		}
	}
	return delta
}

// Engine applies and reverses operation effects against an account set.
type Engine struct {
	accounts Accounts
}

// New creates an Engine over the given accounts.
func New(accounts Accounts) *Engine {
	return &Engine{accounts: accounts}
}

// step is one signed application of an operation's effect.
type step struct {
	op   *models.Operation
	sign money.Amount
}

// Apply folds op's effect into the balances of the accounts it references.
func (e *Engine) Apply(ctx context.Context, op *models.Operation) error {
	return e.commit(ctx, step{op: op, sign: 1})
}

// Reverse removes op's effect from the balances of the accounts it references.
func (e *Engine) Reverse(ctx context.Context, op *models.Operation) error {
	return e.commit(ctx, step{op: op, sign: -1})
}

// Replace reverses oldOp and applies newOp as one unit. All references of
// both operations are resolved before anything is written, so a dangling
// reference in newOp leaves every balance untouched.
func (e *Engine) Replace(ctx context.Context, oldOp, newOp *models.Operation) error {
	return e.commit(ctx, step{op: oldOp, sign: -1}, step{op: newOp, sign: 1})
}

func (e *Engine) commit(ctx context.Context, steps ...step) error {
	balances := make(map[string]money.Amount)

	for _, s := range steps {
		if err := s.op.Validate(); err != nil {
			return fmt.Errorf("operation %q: %w", s.op.ID, err)
		}
		if err := e.resolve(ctx, s.op, balances); err != nil {
			return err
		}
	}

	for _, s := range steps {
		for _, id := range s.op.References() {
			next, ok := balances[id].Add(s.sign * Effect(s.op, id))
			if !ok {
				return fmt.Errorf("account %q: %w", id, ErrBalanceOverflow)
			}
			balances[id] = next
		}
	}

	return e.accounts.UpdateBalances(ctx, balances)
}

// resolve loads the current balance of every account op references into
// balances, skipping ids already loaded.
func (e *Engine) resolve(ctx context.Context, op *models.Operation, balances map[string]money.Amount) error {
	refs := []struct{ field, id string }{{"account_id", op.AccountID}}
	if op.Type == models.OperationTypeTransfer && op.ToAccountID != nil {
		refs = append(refs, struct{ field, id string }{"to_account_id", *op.ToAccountID})
	}

	for _, ref := range refs {
		if _, ok := balances[ref.id]; ok {
			continue
		}
		account, err := e.accounts.Account(ctx, ref.id)
		if err != nil {
			if errors.Is(err, ErrAccountNotFound) {
				return &ReferenceError{OperationID: op.ID, Field: ref.field, AccountID: ref.id, Err: err}
			}
			return err
		}
		balances[ref.id] = account.Balance
	}
	return nil
}
