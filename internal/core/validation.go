// AngelaMos | 2026
// validation.go

package core

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that reports json field names and knows
// the strong_password, max_bytes and text rules.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	rules := map[string]validator.Func{
		"strong_password": func(fl validator.FieldLevel) bool {
			return IsStrongPassword(fl.Field().String())
		},
		"max_bytes": func(fl validator.FieldLevel) bool {
			limit, err := strconv.Atoi(fl.Param())
			return err == nil && len(fl.Field().String()) <= limit
		},
		"text": func(fl validator.FieldLevel) bool {
			return IsStorableText(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		//nolint:errcheck // tag names and funcs are static
		_ = v.RegisterValidation(tag, fn)
	}

	return v
}

// IsStorableText reports whether Postgres will accept s as a text value:
// valid UTF-8 with no NUL bytes.
func IsStorableText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}

// IsStrongPassword requires at least one upper case letter, one lower case
// letter, one digit and one symbol. Length is checked by the min/max tags.
func IsStrongPassword(password string) bool {
	var upper, lower, digit, symbol bool

	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}

	return upper && lower && digit && symbol
}

func FormatValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err.Error()
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		messages = append(messages, formatFieldError(fe))
	}

	return strings.Join(messages, "; ")
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "max_bytes":
		return fmt.Sprintf("%s must be at most %s bytes", field, fe.Param())
	case "text":
		return fmt.Sprintf("%s must be valid UTF-8 without NUL bytes", field)
	case "strong_password":
		return fmt.Sprintf(
			"%s must contain an upper case letter, a lower case letter, a digit and a symbol",
			field,
		)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
