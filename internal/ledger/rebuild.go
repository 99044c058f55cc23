package ledger

import (
	"context"
	"sort"

	"fintrack/internal/models"
	"fintrack/internal/money"
)

// Drift describes an account whose stored balance disagrees with the
// balance implied by its opening balance and the operation log.
type Drift struct {
	AccountID string       `json:"account_id"`
	Name      string       `json:"name"`
	Stored    money.Amount `json:"stored"`
	Expected  money.Amount `json:"expected"`
}

// Delta is the correction that turns Stored into Expected.
func (d Drift) Delta() money.Amount { return d.Expected - d.Stored }

// Net sums the effect of ops per referenced account. No reference is resolved.
func Net(ops []models.Operation) map[string]money.Amount {
	net := make(map[string]money.Amount)
	for i := range ops {
		op := &ops[i]
		for _, id := range op.References() {
			net[id] += Effect(op, id)
		}
	}
	return net
}

// Rebuild replays ops over the opening balances of accounts and returns the
// resulting balance of every account. A dangling account reference fails
// with a *ReferenceError.
func Rebuild(ctx context.Context, accounts []models.Account, ops []models.Operation) (map[string]money.Amount, error) {
	opened := make([]models.Account, len(accounts))
	for i, a := range accounts {
		a.Balance = a.OpeningBalance
		opened[i] = a
	}

	book := NewBook(opened...)
	engine := New(book)
	for i := range ops {
		if err := engine.Apply(ctx, &ops[i]); err != nil {
			return nil, err
		}
	}
	return book.Balances(), nil
}

// Verify compares stored balances with rebuilt ones and returns every
// account that drifted, ordered by account id.
func Verify(ctx context.Context, accounts []models.Account, ops []models.Operation) ([]Drift, error) {
	expected, err := Rebuild(ctx, accounts, ops)
	if err != nil {
		return nil, err
	}

	var drifts []Drift
	for _, a := range accounts {
		if want := expected[a.ID]; want != a.Balance {
			drifts = append(drifts, Drift{AccountID: a.ID, Name: a.Name, Stored: a.Balance, Expected: want})
		}
	}
	sort.Slice(drifts, func(i, j int) bool { return drifts[i].AccountID < drifts[j].AccountID })
	return drifts, nil
}

// Restate verifies accounts against ops and writes the expected balance of
// every drifted account back through the engine's store.
func (e *Engine) Restate(ctx context.Context, accounts []models.Account, ops []models.Operation) ([]Drift, error) {
	drifts, err := Verify(ctx, accounts, ops)
	if err != nil || len(drifts) == 0 {
		return drifts, err
	}

	balances := make(map[string]money.Amount, len(drifts))
	for _, d := range drifts {
		balances[d.AccountID] = d.Expected
	}
	if err := e.accounts.UpdateBalances(ctx, balances); err != nil {
		return nil, err
	}
	return drifts, nil
}
