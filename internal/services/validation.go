package services

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/yukikurage/crm-api/internal/constants"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("email_address", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

// fieldErrors collects per-field problems and becomes a single validation error.
type fieldErrors map[string]string

// validateInput runs struct tag validation over input.
func validateInput(input any) fieldErrors {
	problems := fieldErrors{}
	if err := validate.Struct(input); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fieldErr := range errs {
				problems[fieldErr.Field()] = validationMessage(fieldErr)
			}
		} else {
			problems["_"] = err.Error()
		}
	}
	return problems
}

func (f fieldErrors) add(field, problem string) {
	if _, exists := f[field]; !exists {
		f[field] = problem
	}
}

// requirePresent flags a supplied but blank update value.
func (f fieldErrors) requirePresent(field string, value *string) {
	if value != nil && strings.TrimSpace(*value) == "" {
		f.add(field, "cannot be empty")
	}
}

func (f fieldErrors) requirePositive(field string, value *decimal.Decimal) {
	if value != nil && !value.IsPositive() {
		f.add(field, "must be greater than 0")
	}
}

func (f fieldErrors) checkPassword(field string, value *string) {
	if value != nil && len(*value) < constants.MinPasswordLength {
		f.add(field, fmt.Sprintf("must be at least %d characters", constants.MinPasswordLength))
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apierrors.Validation("Validation failed", map[string]string(f))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "email_address":
		return "must be a valid email address"
	}
	return "is invalid"
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}

// optionalString stores blank optional text as NULL.
func optionalString(value *string) *string {
	trimmed := trimPtr(value)
	if trimmed == nil || *trimmed == "" {
		return nil
	}
	return trimmed
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
