// Package exchange converts the ledger to and from its portable JSON document.
//
// The document mirrors the browser storage format the data originally lived
// in: four collections (accounts, categories, operations, budgets) of
// camelCase records with amounts in major units. Collections are written as
// id-keyed objects and read from either objects or arrays.
package exchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"fintrack/internal/models"
	"fintrack/internal/money"
)

// Version is written into every exported document.
const Version = 1

type keyed interface {
	Key() string
}

// Collection is a set of records keyed by id.
type Collection[T keyed] map[string]T

// UnmarshalJSON accepts an id-keyed object or an array of records.
func (c *Collection[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = Collection[T]{}
		return nil
	}

	if len(data) > 0 && data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		out := make(Collection[T], len(items))
		for _, item := range items {
			if item.Key() == "" {
				return fmt.Errorf("record without id")
			}
			if _, dup := out[item.Key()]; dup {
				return fmt.Errorf("duplicate id %q", item.Key())
			}
			out[item.Key()] = item
		}
		*c = out
		return nil
	}

	var m map[string]T
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(Collection[T], len(m))
	for key, item := range m {
		if item.Key() != "" && item.Key() != key {
			return fmt.Errorf("record %q stored under key %q", item.Key(), key)
		}
		out[key] = item
	}
	*c = out
	return nil
}

// Keys returns the ids in c in ascending order.
func (c Collection[T]) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Account is the portable form of models.Account.
type Account struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Balance        money.Amount  `json:"balance"`
	OpeningBalance *money.Amount `json:"openingBalance,omitempty"`
	IsActive       bool          `json:"isActive"`
	CreatedAt      string        `json:"createdAt"`
}

func (a Account) Key() string { return a.ID }

// Category is the portable form of models.Category.
type Category struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Type      models.CategoryType `json:"type"`
	CreatedAt string              `json:"createdAt"`
}

func (c Category) Key() string { return c.ID }

// Operation is the portable form of models.Operation.
type Operation struct {
	ID          string               `json:"id"`
	Type        models.OperationType `json:"type"`
	Amount      money.Amount         `json:"amount"`
	AccountID   string               `json:"accountId"`
	CategoryID  *string              `json:"categoryId,omitempty"`
	ToAccountID *string              `json:"toAccountId,omitempty"`
	Date        string               `json:"date"`
	Note        string               `json:"note,omitempty"`
	CreatedAt   string               `json:"createdAt"`
}

func (o Operation) Key() string { return o.ID }

// Budget is the portable form of models.Budget.
type Budget struct {
	ID         string       `json:"id"`
	CategoryID string       `json:"categoryId"`
	Month      string       `json:"month"`
	Limit      money.Amount `json:"limit"`
	CreatedAt  string       `json:"createdAt"`
}

func (b Budget) Key() string { return b.ID }

// Document is the portable ledger.
type Document struct {
	Version    int                   `json:"version,omitempty"`
	ExportedAt string                `json:"exportedAt,omitempty"`
	Accounts   Collection[Account]   `json:"accounts"`
	Categories Collection[Category]  `json:"categories"`
	Operations Collection[Operation] `json:"operations"`
	Budgets    Collection[Budget]    `json:"budgets"`
}

// Decode reads a Document from JSON.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}
