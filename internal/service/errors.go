package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"portfolioapi/internal/repository"
)

var (
	ErrIDRequired         = errors.New("id is required")
	ErrNotFound           = errors.New("resource not found")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("resource already exists")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("operation not permitted")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrReaderNil          = errors.New("reader is nil")
)

// invalid wraps ErrValidation with a client-safe reason.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// ValidationMessage extracts the reason from an error produced by invalid.
func ValidationMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ErrValidation.Error()+": "); i >= 0 {
		return msg[i+len(ErrValidation.Error())+2:]
	}
	return ErrValidation.Error()
}

// mapRepoErr translates persistence errors into service errors.
func mapRepoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrConflict
	}
	return err
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// check runs struct validation and reports the first failing field.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalid("%v", err)
	}
	fe := verrs[0]
	field := toSnake(fe.Field())
	switch fe.Tag() {
	case "required":
		return invalid("%s is required", field)
	case "email":
		return invalid("%s must be a valid email", field)
	case "oneof":
		return invalid("%s must be one of [%s]", field, fe.Param())
	case "min", "gte":
		return invalid("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return invalid("%s must be at most %s", field, fe.Param())
	}
	return invalid("%s is invalid", field)
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
