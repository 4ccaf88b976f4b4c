package reservation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		return Status(fl.Field().String()).Valid()
	})
	// afterday=Field: the calendar date is later than the sibling Field's.
	_ = v.RegisterValidation("afterday", func(fl validator.FieldLevel) bool {
		end, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		other := reflect.Indirect(fl.Parent()).FieldByName(fl.Param())
		if !other.IsValid() {
			return false
		}
		start, ok := other.Interface().(time.Time)
		return ok && DateOnly(start).Before(DateOnly(end))
	})
	return v
}

// Validator exposes the shared validator so request payloads elsewhere use the
// same tag names and custom rules.
func Validator() *validator.Validate {
	return validate
}

// Validate checks the structural invariants: identity present, at least one
// room, and checkin < checkout for every stay.
func Validate(r *Reservation) error {
	if r == nil {
		return NewValidationError("reservation is nil")
	}
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &ValidationError{BookingRef: r.BookingRef}
	for _, fe := range fieldErrs {
		out.Problems = append(out.Problems, describe(fe))
	}
	return out
}

// Problems flattens validator errors for any struct (request payloads included).
func Problems(err error) []string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}
	return problems
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", field, fe.Param())
	case "afterday":
		return fmt.Sprintf("%s must be after %s", field, strings.ToLower(fe.Param()))
	case "status":
		return fmt.Sprintf("%s has unknown status %q", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
