package exchange

import (
	"errors"
	"fmt"
	"time"

	"fintrack/internal/ledger"
	"fintrack/internal/models"
	"fintrack/internal/uuid"
)

// ErrDuplicateBudget is returned when a document holds two budgets for the
// same category and month.
var ErrDuplicateBudget = errors.New("duplicate budget for category and month")

// Set holds the four collections in model form.
type Set struct {
	Accounts   []models.Account
	Categories []models.Category
	Operations []models.Operation
	Budgets    []models.Budget
}

// Export builds a Document from set.
func Export(set *Set, now time.Time) *Document {
	doc := &Document{
		Version:    Version,
		ExportedAt: now.UTC().Format(time.RFC3339),
		Accounts:   make(Collection[Account], len(set.Accounts)),
		Categories: make(Collection[Category], len(set.Categories)),
		Operations: make(Collection[Operation], len(set.Operations)),
		Budgets:    make(Collection[Budget], len(set.Budgets)),
	}

	for _, a := range set.Accounts {
		opening := a.OpeningBalance
		doc.Accounts[a.ID] = Account{
			ID:             a.ID,
			Name:           a.Name,
			Balance:        a.Balance,
			OpeningBalance: &opening,
			IsActive:       a.IsActive,
			CreatedAt:      formatTime(a.CreatedAt),
		}
	}
	for _, c := range set.Categories {
		doc.Categories[c.ID] = Category{ID: c.ID, Name: c.Name, Type: c.Type, CreatedAt: formatTime(c.CreatedAt)}
	}
	for _, o := range set.Operations {
		doc.Operations[o.ID] = Operation{
			ID:          o.ID,
			Type:        o.Type,
			Amount:      o.Amount,
			AccountID:   o.AccountID,
			CategoryID:  o.CategoryID,
			ToAccountID: o.ToAccountID,
			Date:        o.Date,
			Note:        o.Note,
			CreatedAt:   formatTime(o.CreatedAt),
		}
	}
	for _, b := range set.Budgets {
		doc.Budgets[b.ID] = Budget{
			ID:         b.ID,
			CategoryID: b.CategoryID,
			Month:      b.Month,
			Limit:      b.Limit,
			CreatedAt:  formatTime(b.CreatedAt),
		}
	}
	return doc
}

// Set converts the document to models.
//
// Ids that are not UUIDs (the legacy format used millisecond timestamps) are
// replaced by fresh UUIDs and every reference is rewritten to match. Accounts
// without an explicit opening balance get the one implied by their balance
// and operations. Every operation must reference existing accounts; dangling
// category references are kept.
func (d *Document) Set(now time.Time) (*Set, error) {
	ids := idMap{}
	set := &Set{}
	explicit := make(map[string]bool, len(d.Accounts))

	for _, key := range d.Accounts.Keys() {
		a := d.Accounts[key]
		account := models.Account{
			Base:     base(ids.get(key), a.CreatedAt, now),
			Name:     a.Name,
			Balance:  a.Balance,
			IsActive: a.IsActive,
		}
		if a.OpeningBalance != nil {
			account.OpeningBalance = *a.OpeningBalance
			explicit[account.ID] = true
		}
		if err := account.Validate(); err != nil {
			return nil, fmt.Errorf("account %q: %w", key, err)
		}
		set.Accounts = append(set.Accounts, account)
	}

	for _, key := range d.Categories.Keys() {
		c := d.Categories[key]
		category := models.Category{Base: base(ids.get(key), c.CreatedAt, now), Name: c.Name, Type: c.Type}
		if err := category.Validate(); err != nil {
			return nil, fmt.Errorf("category %q: %w", key, err)
		}
		set.Categories = append(set.Categories, category)
	}

	known := make(map[string]bool, len(set.Accounts))
	for _, a := range set.Accounts {
		known[a.ID] = true
	}

	for _, key := range d.Operations.Keys() {
		o := d.Operations[key]
		op := models.Operation{
			Base:        base(ids.get(key), o.CreatedAt, now),
			Type:        o.Type,
			Amount:      o.Amount,
			AccountID:   ids.get(o.AccountID),
			CategoryID:  ids.ref(o.CategoryID),
			ToAccountID: ids.ref(o.ToAccountID),
			Date:        o.Date,
			Note:        o.Note,
		}
		if op.Type != models.OperationTypeTransfer {
			op.ToAccountID = nil
		}
		if err := op.Validate(); err != nil {
			return nil, fmt.Errorf("operation %q: %w", key, err)
		}
		if !known[op.AccountID] {
			return nil, &ledger.ReferenceError{OperationID: key, Field: "accountId", AccountID: o.AccountID, Err: ledger.ErrAccountNotFound}
		}
		if op.ToAccountID != nil && !known[*op.ToAccountID] {
			return nil, &ledger.ReferenceError{OperationID: key, Field: "toAccountId", AccountID: *o.ToAccountID, Err: ledger.ErrAccountNotFound}
		}
		set.Operations = append(set.Operations, op)
	}

	for _, key := range d.Budgets.Keys() {
		b := d.Budgets[key]
		budget := models.Budget{
			Base:       base(ids.get(key), b.CreatedAt, now),
			CategoryID: ids.get(b.CategoryID),
			Month:      b.Month,
			Limit:      b.Limit,
		}
		if err := budget.Validate(); err != nil {
			return nil, fmt.Errorf("budget %q: %w", key, err)
		}
		set.Budgets = append(set.Budgets, budget)
	}
	if err := uniqueBudgets(set.Budgets); err != nil {
		return nil, err
	}

	net := ledger.Net(set.Operations)
	for i := range set.Accounts {
		a := &set.Accounts[i]
		if !explicit[a.ID] {
			a.OpeningBalance = a.Balance - net[a.ID]
		}
	}

	return set, nil
}

func uniqueBudgets(budgets []models.Budget) error {
	seen := make(map[[2]string]string, len(budgets))
	for _, b := range budgets {
		k := [2]string{b.CategoryID, b.Month}
		if other, ok := seen[k]; ok {
			return fmt.Errorf("budgets %q and %q: %w", other, b.ID, ErrDuplicateBudget)
		}
		seen[k] = b.ID
	}
	return nil
}

// idMap assigns UUIDs to legacy ids, consistently across collections.
type idMap map[string]string

func (m idMap) get(id string) string {
	if id == "" {
		return ""
	}
	if mapped, ok := m[id]; ok {
		return mapped
	}
	mapped, err := uuid.Parse(id)
	if err != nil {
		mapped = uuid.New()
	}
	m[id] = mapped
	return mapped
}

func (m idMap) ref(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	mapped := m.get(*id)
	return &mapped
}

func base(id, createdAt string, now time.Time) models.Base {
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		t = now
	}
	return models.Base{ID: id, CreatedAt: t, UpdatedAt: now}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
