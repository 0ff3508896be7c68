package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// formatValidationError converts validator errors to user-facing messages.
// Field names are reported in snake_case to match the JSON payloads.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := snakeCase(fe.Field())

			switch fe.Tag() {
			case "required":
				return "invalid request: " + field + " is required"
			case "notblank":
				return "invalid request: " + field + " cannot be whitespace only"
			case "max":
				return "invalid request: " + field + " exceeds maximum length"
			case "min":
				return "invalid request: " + field + " has too few entries"
			case "gt", "gte":
				return "invalid request: " + field + " is too small"
			case "lte":
				return "invalid request: " + field + " is too large"
			case "oneof":
				return "invalid request: " + field + " has an unsupported value"
			case "email":
				return "invalid request: " + field + " is not a valid email"
			case "cep":
				return "invalid request: " + field + " is not a valid postal code"
			case "datetime":
				return "invalid request: " + field + " has an invalid format"
			default:
				return "invalid request: " + field + " is invalid"
			}
		}
	}
	return "invalid request"
}

func snakeCase(field string) string {
	var b strings.Builder
	var prevLower bool
	for _, r := range field {
		if r >= 'A' && r <= 'Z' {
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			prevLower = false
		} else {
			b.WriteRune(r)
			prevLower = true
		}
	}
	return b.String()
}
