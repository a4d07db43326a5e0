package dto

import (
	"github.com/go-playground/validator/v10"

	apperrors "github.com/Sherryli112/HatGiveMe/pkg/util"
)

var validate = validator.New()

// Validate runs struct tag validation and translates failures into the
// standard validation error shape.
func Validate(payload any) error {
	if err := validate.Struct(payload); err != nil {
		details := map[string]any{}
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, verr := range verrs {
				details[verr.Field()] = verr.Tag()
			}
		}
		return apperrors.NewValidationError("request validation failed", details)
	}
	return nil
}
