// Package domain defines domain-level errors for the recipe feature.
package domain

import "recipe_backend/internal/shared/apperr"

// Not-found errors. Rows owned by another user are reported the same way.
var (
	ErrRecipeNotFound     = apperr.NotFound("recipe not found")
	ErrTagNotFound        = apperr.NotFound("tag not found")
	ErrIngredientNotFound = apperr.NotFound("ingredient not found")
)

// Validation errors, keyed by the JSON field they concern.
var (
	ErrNameRequired = apperr.FieldValidation("name", "this field may not be blank")
	ErrNameTooLong  = apperr.FieldValidation("name", "ensure this field has no more than 255 characters")

	ErrTitleRequired = apperr.FieldValidation("title", "this field may not be blank")
	ErrTitleTooLong  = apperr.FieldValidation("title", "ensure this field has no more than 255 characters")
	ErrLinkTooLong   = apperr.FieldValidation("link", "ensure this field has no more than 255 characters")

	ErrNegativeTime   = apperr.FieldValidation("time_minutes", "ensure this value is greater than or equal to 0")
	ErrInvalidPrice   = apperr.FieldValidation("price", "ensure that there are no more than 5 digits in total and no more than 2 decimal places")
	ErrPriceNotNumber = apperr.FieldValidation("price", "a valid number is required")

	ErrImageRequired = apperr.FieldValidation("image", "no file was submitted")
	ErrInvalidImage  = apperr.FieldValidation("image", "upload a valid image. The file you uploaded was either not an image or a corrupted image")
)
