package services

import (
	"context"
	"strings"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"

	"gorm.io/gorm"
)

// categoryService handles category-related business logic.
type categoryService struct {
	store *Store
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(store *Store) CategoryServicer {
	return &categoryService{store: store}
}

// CreateCategory creates a new category.
func (s *categoryService) CreateCategory(ctx context.Context, name string, categoryType models.CategoryType) (*models.Category, error) {
	category := &models.Category{Name: strings.TrimSpace(name), Type: categoryType}
	if err := category.Validate(); err != nil {
		return nil, ledgerError(err)
	}

	err := s.store.Write(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories retrieves a paginated list of categories, optionally of one type.
func (s *categoryService) ListCategories(ctx context.Context, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	base := s.store.DB().WithContext(ctx).Model(&models.Category{})
	if categoryType != nil {
		if !categoryType.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, models.ErrInvalidCategoryType.Error())
		}
		base = base.Where("type = ?", *categoryType)
	}

	result, err := pagination.Find[models.Category](base, page, "type ASC, name ASC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetCategory retrieves a category by id.
func (s *categoryService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := s.store.DB().WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, notFound(err, apperrors.ErrCategoryNotFound)
	}
	return &category, nil
}

// UpdateCategory renames or retypes a category. Retyping changes how existing
// operations under the category are counted by budget aggregation.
func (s *categoryService) UpdateCategory(ctx context.Context, id string, update CategoryUpdate) (*models.Category, error) {
	var category models.Category
	err := s.store.Write(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&category).Error; err != nil {
			return notFound(err, apperrors.ErrCategoryNotFound)
		}

		if update.Name != nil {
			category.Name = strings.TrimSpace(*update.Name)
		}
		if update.Type != nil {
			category.Type = *update.Type
		}
		if err := category.Validate(); err != nil {
			return ledgerError(err)
		}

		if err := tx.Model(&category).Updates(map[string]interface{}{
			"name": category.Name,
			"type": category.Type,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory removes a category. Operations and budgets that reference it
// are kept; budgets report it as an unknown category from then on.
func (s *categoryService) DeleteCategory(ctx context.Context, id string) error {
	return s.store.Write(ctx, func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Category{})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrCategoryNotFound
		}
		return nil
	})
}
