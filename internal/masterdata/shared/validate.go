package shared

import "github.com/go-playground/validator/v10"

var fieldValidator = validator.New()

// ValidEmail reports whether s is empty or a well-formed address.
func ValidEmail(s string) bool {
	return fieldValidator.Var(s, "omitempty,email") == nil
}
