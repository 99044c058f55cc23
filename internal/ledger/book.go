package ledger

import (
	"context"
	"sort"

	"fintrack/internal/models"
	"fintrack/internal/money"
)

// Book is an in-memory Accounts implementation. It is not safe for
// concurrent use.
type Book struct {
	accounts map[string]models.Account
}

// NewBook creates a Book holding copies of the given accounts.
func NewBook(accounts ...models.Account) *Book {
	b := &Book{accounts: make(map[string]models.Account, len(accounts))}
	for _, a := range accounts {
		b.accounts[a.ID] = a
	}
	return b
}

// Account implements Accounts.
func (b *Book) Account(_ context.Context, id string) (*models.Account, error) {
	a, ok := b.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &a, nil
}

// UpdateBalances implements Accounts. Either every balance is written or none.
func (b *Book) UpdateBalances(_ context.Context, balances map[string]money.Amount) error {
	for id := range balances {
		if _, ok := b.accounts[id]; !ok {
			return ErrAccountNotFound
		}
	}
	for id, balance := range balances {
		a := b.accounts[id]
		a.Balance = balance
		b.accounts[id] = a
	}
	return nil
}

// Balance returns the balance of id, or zero for unknown accounts.
func (b *Book) Balance(id string) money.Amount {
	return b.accounts[id].Balance
}

// Balances returns a copy of every balance keyed by account id.
func (b *Book) Balances() map[string]money.Amount {
	out := make(map[string]money.Amount, len(b.accounts))
	for id, a := range b.accounts {
		out[id] = a.Balance
	}
	return out
}

// Total returns the sum of all balances.
func (b *Book) Total() money.Amount {
	var total money.Amount
	for _, a := range b.accounts {
		total += a.Balance
	}
	return total
}

// Accounts returns copies of the held accounts ordered by id.
func (b *Book) Accounts() []models.Account {
	out := make([]models.Account, 0, len(b.accounts))
	for _, a := range b.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
