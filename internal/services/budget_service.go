package services

import (
	"context"
	"errors"

	"fintrack/internal/budget"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/events"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/pagination"

	"gorm.io/gorm"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	store      *Store
	publisher  events.Publisher
	aggregator *budget.Aggregator
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(store *Store, publisher events.Publisher) BudgetServicer {
	return &budgetService{
		store:      store,
		publisher:  publisher,
		aggregator: budget.NewAggregator(snapshotSource{store: store}),
	}
}

// CreateBudget creates a budget for a category and month.
func (s *budgetService) CreateBudget(ctx context.Context, categoryID, month string, limit money.Amount) (*models.Budget, error) {
	b := &models.Budget{CategoryID: categoryID, Month: month, Limit: limit}
	if err := b.Validate(); err != nil {
		return nil, ledgerError(err)
	}

	err := s.store.Write(ctx, func(tx *gorm.DB) error {
		if err := requireCategory(tx, b.CategoryID); err != nil {
			return err
		}
		if err := checkDuplicateBudget(tx, b); err != nil {
			return err
		}
		if err := tx.Create(b).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.BudgetCreated, b)
	return b, nil
}

// GetBudget retrieves a budget by id.
func (s *budgetService) GetBudget(ctx context.Context, id string) (*models.Budget, error) {
	var b models.Budget
	if err := s.store.DB().WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, notFound(err, apperrors.ErrBudgetNotFound)
	}
	return &b, nil
}

// ListBudgets retrieves a paginated list of budgets, optionally for one month.
func (s *budgetService) ListBudgets(ctx context.Context, month string, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
	base := s.store.DB().WithContext(ctx).Model(&models.Budget{})
	if month != "" {
		if _, err := models.ParseMonth(month); err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		base = base.Where("month = ?", month)
	}

	result, err := pagination.Find[models.Budget](base, page, "month DESC, created_at ASC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// UpdateBudget moves a budget to another category or month or changes its
// limit. The (category, month) pair stays unique.
func (s *budgetService) UpdateBudget(ctx context.Context, id string, update BudgetUpdate) (*models.Budget, error) {
	var b models.Budget
	err := s.store.Write(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&b).Error; err != nil {
			return notFound(err, apperrors.ErrBudgetNotFound)
		}

		if update.CategoryID != nil {
			b.CategoryID = *update.CategoryID
		}
		if update.Month != nil {
			b.Month = *update.Month
		}
		if update.Limit != nil {
			b.Limit = *update.Limit
		}
		if err := b.Validate(); err != nil {
			return ledgerError(err)
		}

		if update.CategoryID != nil {
			if err := requireCategory(tx, b.CategoryID); err != nil {
				return err
			}
		}
		if err := checkDuplicateBudget(tx, &b); err != nil {
			return err
		}

		if err := tx.Model(&b).Updates(map[string]interface{}{
			"category_id":  b.CategoryID,
			"month":        b.Month,
			"limit_amount": b.Limit,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.BudgetUpdated, &b)
	return &b, nil
}

// DeleteBudget removes a budget.
func (s *budgetService) DeleteBudget(ctx context.Context, id string) error {
	var b models.Budget
	err := s.store.Write(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&b).Error; err != nil {
			return notFound(err, apperrors.ErrBudgetNotFound)
		}
		if err := tx.Delete(&b).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.BudgetDeleted, &b)
	return nil
}

// GetProgress returns the progress of every budget of month.
func (s *budgetService) GetProgress(ctx context.Context, month string) ([]models.BudgetProgress, error) {
	progress, err := s.aggregator.Progress(ctx, month)
	if err != nil {
		return nil, ledgerError(err)
	}
	return progress, nil
}

// GetSummary returns the balance and income/expense overview of month.
func (s *budgetService) GetSummary(ctx context.Context, month string) (*budget.Summary, error) {
	if _, err := models.ParseMonth(month); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	var (
		accounts []models.Account
		ops      []models.Operation
	)
	err := s.store.Read(ctx, func(tx *gorm.DB) error {
		if err := tx.Find(&accounts).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("date LIKE ?", month+"-%").Find(&ops).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary := budget.Summarize(month, accounts, ops)
	return &summary, nil
}

func (s *budgetService) publish(ctx context.Context, eventType string, b *models.Budget) {
	if err := s.publisher.Publish(ctx, events.New(eventType, b.ID, b)); err != nil {
		logger.Get().Warnw("failed to publish event", "type", eventType, "id", b.ID, "error", err)
	}
}

// snapshotSource reads budget snapshots under the store's read lock.
type snapshotSource struct {
	store *Store
}

// Snapshot implements budget.SnapshotSource.
func (s snapshotSource) Snapshot(ctx context.Context) (*budget.Snapshot, error) {
	snap := &budget.Snapshot{}
	err := s.store.Read(ctx, func(tx *gorm.DB) error {
		if err := tx.Order("created_at ASC, id ASC").Find(&snap.Budgets).Error; err != nil {
			return err
		}
		if err := tx.Find(&snap.Categories).Error; err != nil {
			return err
		}
		return tx.Find(&snap.Operations).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return snap, nil
}

func requireCategory(tx *gorm.DB, id string) error {
	var category models.Category
	if err := tx.Where("id = ?", id).First(&category).Error; err != nil {
		return notFound(err, apperrors.ErrCategoryNotFound)
	}
	return nil
}

func checkDuplicateBudget(tx *gorm.DB, b *models.Budget) error {
	q := tx.Model(&models.Budget{}).Where("category_id = ? AND month = ?", b.CategoryID, b.Month)
	if b.ID != "" {
		q = q.Where("id <> ?", b.ID)
	}

	var existing models.Budget
	err := q.First(&existing).Error
	switch {
	case err == nil:
		return apperrors.ErrDuplicateBudget
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
}
