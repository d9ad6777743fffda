// Package validate wraps go-playground/validator with the domain's custom rules
// and maps failures to errs.ValidationError.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/and161185/gamevault/internal/errs"
	"github.com/and161185/gamevault/internal/model"
)

var v = newValidator()

func newValidator() *validator.Validate {
	vv := validator.New(validator.WithRequiredStructEnabled())
	_ = vv.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
		return model.IsPlatform(fl.Field().String())
	})
	_ = vv.RegisterValidation("condition", func(fl validator.FieldLevel) bool {
		return model.Condition(fl.Field().String()).Valid()
	})
	return vv
}

// Credentials is the sign-in/sign-up input.
type Credentials struct {
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=6,max=72"`
}

// Struct validates s and returns the first failure as *errs.ValidationError.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return errs.Validation("", err.Error())
	}
	fe := ves[0]
	field := snake(fe.Field())
	return errs.Validation(field, message(field, fe))
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "email address is not valid"
	case "platform":
		return fmt.Sprintf("unknown platform %q", fe.Value())
	case "condition":
		return fmt.Sprintf("unknown condition %q", fe.Value())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must not be negative", field)
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// snake turns "PurchasePrice" into "purchase_price".
func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
