package services

import (
	"context"
	"strings"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/events"
	"fintrack/internal/ledger"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/pagination"

	"gorm.io/gorm"
)

// accountService handles account-related business logic.
type accountService struct {
	store     *Store
	publisher events.Publisher
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(store *Store, publisher events.Publisher) AccountServicer {
	return &accountService{store: store, publisher: publisher}
}

// CreateAccount creates an active account. The opening balance becomes the
// starting point every later balance is derived from.
func (s *accountService) CreateAccount(ctx context.Context, name string, openingBalance money.Amount) (*models.Account, error) {
	account := &models.Account{
		Name:           strings.TrimSpace(name),
		OpeningBalance: openingBalance,
		Balance:        openingBalance,
		IsActive:       true,
	}
	if err := account.Validate(); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}

	err := s.store.Write(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccounts retrieves a paginated list of accounts, oldest first.
// Inactive accounts are only included when asked for.
func (s *accountService) ListAccounts(ctx context.Context, includeInactive bool, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	base := s.store.DB().WithContext(ctx).Model(&models.Account{})
	if !includeInactive {
		base = base.Where("is_active = ?", true)
	}

	result, err := pagination.Find[models.Account](base, page, "created_at ASC, id ASC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetAccount retrieves an account by id, active or not.
func (s *accountService) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := s.store.DB().WithContext(ctx).Where("id = ?", id).First(&account).Error; err != nil {
		return nil, notFound(err, apperrors.ErrAccountNotFound)
	}
	return &account, nil
}

// UpdateAccount renames or (de)activates an account. Deactivation hides the
// account from active listings but does not freeze its balance.
func (s *accountService) UpdateAccount(ctx context.Context, id string, update AccountUpdate) (*models.Account, error) {
	updates := make(map[string]interface{})
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name cannot be empty")
		}
		updates["name"] = name
	}
	if update.IsActive != nil {
		updates["is_active"] = *update.IsActive
	}

	var account models.Account
	err := s.store.Write(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&account).Error; err != nil {
			return notFound(err, apperrors.ErrAccountNotFound)
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&account).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// DeleteAccount removes an account that no operation references.
func (s *accountService) DeleteAccount(ctx context.Context, id string) error {
	return s.store.Write(ctx, func(tx *gorm.DB) error {
		var account models.Account
		if err := tx.Where("id = ?", id).First(&account).Error; err != nil {
			return notFound(err, apperrors.ErrAccountNotFound)
		}

		var refs int64
		if err := tx.Model(&models.Operation{}).
			Where("(account_id = ? OR to_account_id = ?)", id, id).
			Count(&refs).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if refs > 0 {
			return apperrors.ErrAccountInUse
		}

		if err := tx.Delete(&account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// Reconcile rebuilds every balance from the opening balances and the
// operation history and reports the accounts that disagree. With fix set,
// drifted balances are rewritten through the ledger engine.
func (s *accountService) Reconcile(ctx context.Context, fix bool) (*ReconcileReport, error) {
	report := &ReconcileReport{Fixed: fix}

	run := s.store.Read
	if fix {
		run = s.store.Write
	}

	err := run(ctx, func(tx *gorm.DB) error {
		var accounts []models.Account
		if err := tx.Order("id").Find(&accounts).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		var ops []models.Operation
		if err := tx.Find(&ops).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		report.Checked = len(accounts)

		var (
			drifts []ledger.Drift
			err    error
		)
		if fix {
			drifts, err = engineFor(tx).Restate(ctx, accounts, ops)
		} else {
			drifts, err = ledger.Verify(ctx, accounts, ops)
		}
		if err != nil {
			return ledgerError(err)
		}
		report.Drifts = drifts
		return nil
	})
	if err != nil {
		return nil, err
	}

	if report.Drifts == nil {
		report.Drifts = []ledger.Drift{}
	}
	if len(report.Drifts) > 0 {
		logger.Named("ledger").Warnw("balance drift detected", "accounts", len(report.Drifts), "fixed", fix)
		if fix {
			if err := s.publisher.Publish(ctx, events.New(events.LedgerRestated, "", report.Drifts)); err != nil {
				logger.Get().Warnw("failed to publish event", "type", events.LedgerRestated, "error", err)
			}
		}
	}
	return report, nil
}
