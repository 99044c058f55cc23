// Package budget derives spend-vs-limit progress from the operation history.
//
// Aggregation is a pure read over a snapshot of budgets, categories and
// operations. Nothing here mutates its inputs or touches account balances.
package budget

import (
	"context"

	"fintrack/internal/models"
	"fintrack/internal/money"

	"github.com/shopspring/decimal"
)

// UnknownCategoryName labels progress for budgets whose category no longer exists.
const UnknownCategoryName = "unknown category"

// Progress thresholds, in percent of the limit.
const (
	WarningThreshold = 80
	OverThreshold    = 100
)

// Status buckets a progress percentage.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusOver    Status = "over"
)

// Snapshot is a consistent view of the collections aggregation reads.
type Snapshot struct {
	Budgets    []models.Budget
	Categories []models.Category
	Operations []models.Operation
}

// SnapshotSource loads a consistent Snapshot. Implementations must not let a
// concurrent ledger mutation show through half-applied.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// Aggregator computes progress from snapshots read through a SnapshotSource.
type Aggregator struct {
	source SnapshotSource
}

// NewAggregator creates an Aggregator over source.
func NewAggregator(source SnapshotSource) *Aggregator {
	return &Aggregator{source: source}
}

// Progress loads a snapshot and aggregates it for month (YYYY-MM).
func (a *Aggregator) Progress(ctx context.Context, month string) ([]models.BudgetProgress, error) {
	if _, err := models.ParseMonth(month); err != nil {
		return nil, err
	}
	snap, err := a.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Aggregate(month, snap), nil
}

// Aggregate returns the progress of every budget of month, in budget order.
func Aggregate(month string, snap *Snapshot) []models.BudgetProgress {
	categories := make(map[string]models.Category, len(snap.Categories))
	for _, c := range snap.Categories {
		categories[c.ID] = c
	}

	result := make([]models.BudgetProgress, 0)
	for _, b := range snap.Budgets {
		if b.Month != month {
			continue
		}

		category, ok := categories[b.CategoryID]
		if !ok {
			result = append(result, models.BudgetProgress{
				Budget:    b,
				Category:  models.Category{Name: UnknownCategoryName, Type: models.CategoryTypeExpense},
				Remaining: b.Limit,
			})
			continue
		}

		spent := Spent(month, category, snap.Operations)
		result = append(result, models.BudgetProgress{
			Budget:     b,
			Category:   category,
			Spent:      spent,
			Remaining:  b.Limit - spent,
			Percentage: Percentage(spent, b.Limit),
		})
	}
	return result
}

// Counts reports whether op counts as spending against category in month.
// Expense operations count against any category they are filed under;
// transfers count only against savings categories. Income never counts.
func Counts(op *models.Operation, month string, category models.Category) bool {
	if !op.InMonth(month) || !op.HasCategory(category.ID) {
		return false
	}
	switch op.Type {
	case models.OperationTypeExpense:
		return true
	case models.OperationTypeTransfer:
		return category.Type == models.CategoryTypeSavings
	}
	return false
}

// Spent sums the amounts of ops that count against category in month.
func Spent(month string, category models.Category, ops []models.Operation) money.Amount {
	var spent money.Amount
	for i := range ops {
		if Counts(&ops[i], month, category) {
			spent += ops[i].Amount
		}
	}
	return spent
}

// Percentage returns spent as a percentage of limit, or 0 when limit <= 0.
func Percentage(spent, limit money.Amount) float64 {
	if limit <= 0 {
		return 0
	}
	return decimal.NewFromInt(spent.Cents()).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(limit.Cents())).
		InexactFloat64()
}

// StatusOf buckets p.Percentage against the warning and over thresholds.
func StatusOf(p models.BudgetProgress) Status {
	switch {
	case p.Percentage > OverThreshold:
		return StatusOver
	case p.Percentage > WarningThreshold:
		return StatusWarning
	}
	return StatusOK
}
