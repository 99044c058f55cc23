// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"fintrack/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom validators on v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("operation_type", validateOperationType)
	_ = v.RegisterValidation("category_type", validateCategoryType)
	_ = v.RegisterValidation("iso_day", validateISODay)
	_ = v.RegisterValidation("iso_month", validateISOMonth)
}

func validateOperationType(fl validator.FieldLevel) bool {
	return models.OperationType(fl.Field().String()).Valid()
}

func validateCategoryType(fl validator.FieldLevel) bool {
	return models.CategoryType(fl.Field().String()).Valid()
}

func validateISODay(fl validator.FieldLevel) bool {
	_, err := models.ParseDay(fl.Field().String())
	return err == nil
}

func validateISOMonth(fl validator.FieldLevel) bool {
	_, err := models.ParseMonth(fl.Field().String())
	return err == nil
}
