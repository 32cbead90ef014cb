package leads

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError reports malformed offer or lead input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// Validate trims the offer name and checks required fields.
func (o *Offer) Validate() error {
	if o == nil {
		return &ValidationError{Field: "offer", Message: "is required"}
	}

	o.Name = strings.TrimSpace(o.Name)

	err := validate.Struct(o)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		msg := fmt.Sprintf("failed %q check", fe.Tag())
		if fe.Tag() == "required" {
			msg = "is required"
		}
		return &ValidationError{Field: fe.Field(), Message: msg}
	}

	return &ValidationError{Message: err.Error()}
}
