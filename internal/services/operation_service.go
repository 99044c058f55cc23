package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/events"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/uuid"

	"gorm.io/gorm"
)

// operationService handles operation-related business logic.
type operationService struct {
	store     *Store
	publisher events.Publisher
}

// NewOperationService creates a new OperationServicer.
func NewOperationService(store *Store, publisher events.Publisher) OperationServicer {
	return &operationService{store: store, publisher: publisher}
}

// CreateOperation stores a new operation and applies its effect to the
// balances of the accounts it references, in one transaction.
func (s *operationService) CreateOperation(ctx context.Context, in OperationInput) (*models.Operation, error) {
	op := in.operation()
	if err := op.Validate(); err != nil {
		return nil, ledgerError(err)
	}
	op.ID = uuid.New()

	err := s.store.Write(ctx, func(tx *gorm.DB) error {
		if err := checkCategory(tx, op); err != nil {
			return err
		}
		if err := engineFor(tx).Apply(ctx, op); err != nil {
			return ledgerError(err)
		}
		if err := tx.Create(op).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Named("ledger").Debugw("operation applied", "id", op.ID, "type", op.Type, "amount", op.Amount.String())
	s.publish(ctx, events.OperationCreated, op)
	return op, nil
}

// GetOperation retrieves an operation by id.
func (s *operationService) GetOperation(ctx context.Context, id string) (*models.Operation, error) {
	var op models.Operation
	if err := s.store.DB().WithContext(ctx).Where("id = ?", id).First(&op).Error; err != nil {
		return nil, notFound(err, apperrors.ErrOperationNotFound)
	}
	return &op, nil
}

// ListOperations retrieves a filtered, paginated list of operations, newest first.
func (s *operationService) ListOperations(ctx context.Context, filter OperationFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Operation], error) {
	base, err := applyOperationFilters(s.store.DB().WithContext(ctx).Model(&models.Operation{}), filter)
	if err != nil {
		return nil, err
	}

	result, err := pagination.Find[models.Operation](base, page, "date DESC, created_at DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

func applyOperationFilters(q *gorm.DB, f OperationFilter) (*gorm.DB, error) {
	if f.Month != "" {
		if _, err := models.ParseMonth(f.Month); err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		q = q.Where("date LIKE ?", f.Month+"-%")
	}
	if f.FromDate != "" {
		if _, err := models.ParseDay(f.FromDate); err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "from_date: "+err.Error())
		}
		q = q.Where("date >= ?", f.FromDate)
	}
	if f.ToDate != "" {
		if _, err := models.ParseDay(f.ToDate); err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "to_date: "+err.Error())
		}
		q = q.Where("date <= ?", f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.AccountID != nil {
		q = q.Where("(account_id = ? OR to_account_id = ?)", *f.AccountID, *f.AccountID)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	return q, nil
}

// UpdateOperation replaces the stored operation with in. The old effect is
// reversed and the new one applied as one unit; if any reference of the new
// operation does not resolve, nothing changes.
func (s *operationService) UpdateOperation(ctx context.Context, id string, in OperationInput) (*models.Operation, error) {
	updated := in.operation()
	if err := updated.Validate(); err != nil {
		return nil, ledgerError(err)
	}

	err := s.store.Write(ctx, func(tx *gorm.DB) error {
		var old models.Operation
		if err := tx.Where("id = ?", id).First(&old).Error; err != nil {
			return notFound(err, apperrors.ErrOperationNotFound)
		}
		updated.Base = old.Base

		if err := checkCategory(tx, updated); err != nil {
			return err
		}
		if err := engineFor(tx).Replace(ctx, &old, updated); err != nil {
			return ledgerError(err)
		}
		if err := tx.Save(updated).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Named("ledger").Debugw("operation replaced", "id", updated.ID)
	s.publish(ctx, events.OperationUpdated, updated)
	return updated, nil
}

// DeleteOperation reverses the operation's effect and removes it.
func (s *operationService) DeleteOperation(ctx context.Context, id string) error {
	var op models.Operation
	err := s.store.Write(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&op).Error; err != nil {
			return notFound(err, apperrors.ErrOperationNotFound)
		}
		if err := engineFor(tx).Reverse(ctx, &op); err != nil {
			return ledgerError(err)
		}
		if err := tx.Delete(&op).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Named("ledger").Debugw("operation reversed", "id", op.ID)
	s.publish(ctx, events.OperationDeleted, &op)
	return nil
}

func (s *operationService) publish(ctx context.Context, eventType string, op *models.Operation) {
	if err := s.publisher.Publish(ctx, events.New(eventType, op.ID, op)); err != nil {
		logger.Get().Warnw("failed to publish event", "type", eventType, "id", op.ID, "error", err)
	}
}

// operation builds an unsaved operation from the input, treating empty
// optional references as absent.
func (in OperationInput) operation() *models.Operation {
	return &models.Operation{
		Type:        in.Type,
		Amount:      in.Amount,
		AccountID:   strings.TrimSpace(in.AccountID),
		CategoryID:  optional(in.CategoryID),
		ToAccountID: optional(in.ToAccountID),
		Date:        in.Date,
		Note:        strings.TrimSpace(in.Note),
	}
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// checkCategory requires op's category, when set, to exist and to match the
// operation type: income under income, expense under expense, transfers
// under savings.
func checkCategory(tx *gorm.DB, op *models.Operation) error {
	if op.CategoryID == nil {
		return nil
	}

	var category models.Category
	if err := tx.Where("id = ?", *op.CategoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if want := op.Type.CategoryType(); category.Type != want {
		return apperrors.WithMessage(apperrors.ErrCategoryTypeMismatch,
			fmt.Sprintf("%s operations must use a %s category, got %s", op.Type, want, category.Type))
	}
	return nil
}
