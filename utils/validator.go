// utils/validator.go - Input validation
package utils

import (
	"reflect"
	"strings"
	"sync"

	"github.com/badoux/checkmail"
	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared struct validator. Field names in errors use
// the json tag so they match the request payload.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		// notblank rejects strings that are empty once sanitized
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return SanitizeInput(fl.Field().String()) != ""
		})
	})
	return validate
}

// ValidateStruct runs struct-tag validation on v.
func ValidateStruct(v any) error {
	return Validator().Struct(v)
}

// DescribeFieldError renders a validator failure as a short message.
func DescribeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "email":
		return "must be a valid email address"
	}
	return "is invalid"
}

// ValidateEmail checks if email is valid
func ValidateEmail(email string) bool {
	return checkmail.ValidateFormat(strings.TrimSpace(email)) == nil
}

// ValidatePassword checks password strength
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}

	return true, ""
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove leading/trailing spaces
	return strings.TrimSpace(input)
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
