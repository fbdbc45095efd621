package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"panel-rbac/apperrors"

	"github.com/go-playground/validator/v10"
)

var (
	roleNameRegex       = regexp.MustCompile(`^[a-z0-9_]+$`)
	permissionCodeRegex = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("role_name", func(fl validator.FieldLevel) bool {
		return roleNameRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("permission_code", func(fl validator.FieldLevel) bool {
		return permissionCodeRegex.MatchString(fl.Field().String())
	})
	return v
}

// validateInput runs struct validation and converts failures into a
// caller-facing ErrValidation.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.Validation(err, "invalid input")
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return apperrors.Validation(err, "%s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "role_name":
		return "Role name must contain only lowercase letters, numbers, and underscores"
	case "permission_code":
		return "Permission code must contain only letters, numbers, and underscores"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
