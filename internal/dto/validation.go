package dto

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[\p{L}][\p{L} .'-]*$`)

// RegisterValidations installs the custom validation tags used by the request
// DTOs on the given validator instance.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("username_chars", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
}
