package services

import (
	"context"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/events"
	"fintrack/internal/exchange"
	"fintrack/internal/ledger"
	"fintrack/internal/logger"
	"fintrack/internal/models"

	"gorm.io/gorm"
)

// Default data created for an empty store.
const DefaultAccountName = "Main account"

var defaultCategories = []models.Category{
	{Name: "Salary", Type: models.CategoryTypeIncome},
	{Name: "Groceries", Type: models.CategoryTypeExpense},
	{Name: "Transport", Type: models.CategoryTypeExpense},
	{Name: "Savings", Type: models.CategoryTypeSavings},
}

const importBatchSize = 200

// exchangeService handles export, import and default seeding.
type exchangeService struct {
	store     *Store
	publisher events.Publisher
	now       func() time.Time
}

// NewExchangeService creates a new ExchangeServicer.
func NewExchangeService(store *Store, publisher events.Publisher) ExchangeServicer {
	return &exchangeService{store: store, publisher: publisher, now: time.Now}
}

// Export returns the whole ledger as a portable document.
func (s *exchangeService) Export(ctx context.Context) (*exchange.Document, error) {
	set := &exchange.Set{}
	err := s.store.Read(ctx, func(tx *gorm.DB) error {
		if err := tx.Find(&set.Accounts).Error; err != nil {
			return err
		}
		if err := tx.Find(&set.Categories).Error; err != nil {
			return err
		}
		if err := tx.Find(&set.Operations).Error; err != nil {
			return err
		}
		return tx.Find(&set.Budgets).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return exchange.Export(set, s.now()), nil
}

// Import replaces the whole ledger with doc. Stored balances are then
// restated from the opening balances and the imported operations, so the
// ledger is consistent even when the document was not.
func (s *exchangeService) Import(ctx context.Context, doc *exchange.Document) (*ImportResult, error) {
	set, err := doc.Set(s.now())
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidImport, err.Error())
	}

	result := &ImportResult{
		Accounts:   len(set.Accounts),
		Categories: len(set.Categories),
		Operations: len(set.Operations),
		Budgets:    len(set.Budgets),
	}

	err = s.store.Write(ctx, func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Operation{}, &models.Budget{}, &models.Category{}, &models.Account{}} {
			if err := tx.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		if err := insert(tx, set.Accounts); err != nil {
			return err
		}
		if err := insert(tx, set.Categories); err != nil {
			return err
		}
		if err := insert(tx, set.Operations); err != nil {
			return err
		}
		if err := insert(tx, set.Budgets); err != nil {
			return err
		}

		restated, err := engineFor(tx).Restate(ctx, set.Accounts, set.Operations)
		if err != nil {
			return ledgerError(err)
		}
		result.Restated = restated
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Restated == nil {
		result.Restated = []ledger.Drift{}
	}
	logger.Named("exchange").Infow("ledger imported",
		"accounts", result.Accounts,
		"operations", result.Operations,
		"restated", len(result.Restated),
	)
	if err := s.publisher.Publish(ctx, events.New(events.LedgerImported, "", result)); err != nil {
		logger.Get().Warnw("failed to publish event", "type", events.LedgerImported, "error", err)
	}
	return result, nil
}

func insert[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(&rows, importBatchSize).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SeedDefaults creates the default account and categories when the store
// holds neither. It reports whether anything was created.
func (s *exchangeService) SeedDefaults(ctx context.Context) (bool, error) {
	seeded := false
	err := s.store.Write(ctx, func(tx *gorm.DB) error {
		var accounts, categories int64
		if err := tx.Model(&models.Account{}).Count(&accounts).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Model(&models.Category{}).Count(&categories).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if accounts > 0 || categories > 0 {
			return nil
		}

		account := &models.Account{Name: DefaultAccountName, IsActive: true}
		if err := tx.Create(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		cats := make([]models.Category, len(defaultCategories))
		copy(cats, defaultCategories)
		if err := tx.Create(&cats).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if seeded {
		logger.Named("exchange").Infow("default data seeded", "categories", len(defaultCategories))
	}
	return seeded, nil
}
