package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var cepPattern = regexp.MustCompile(`^\d{5}-?\d{3}$`)

// New creates a new validator instance with custom validations registered.
// This ensures consistent validation across the application and tests.
func New() *validator.Validate {
	v := validator.New()

	// Register custom "notblank" validator - rejects whitespace-only strings
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true // Not a string, let other validators handle it
		}
		return strings.TrimSpace(str) != ""
	})

	// Register custom "cep" validator - Brazilian postal code with optional dash.
	// Shipping cost resolution requires a well-formed CEP.
	_ = v.RegisterValidation("cep", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true
		}
		return cepPattern.MatchString(strings.TrimSpace(str))
	})

	return v
}
