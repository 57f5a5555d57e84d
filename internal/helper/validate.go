package helper

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a request field to its validation messages, mirroring
// the errors object of the 422 response envelope.
type FieldErrors map[string][]string

func (fe FieldErrors) Error() string {
	return "validation failed"
}

func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// report fields by their json name so error keys match the payload
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// ValidateStruct runs the validate tags of s and returns the failures as
// FieldErrors, or nil when the input is valid.
func ValidateStruct(s interface{}) FieldErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"_": {"invalid request payload"}}
	}

	out := FieldErrors{}
	for _, e := range verrs {
		out.Add(fieldPath(e), messageFor(e))
	}
	return out
}

// fieldPath strips the top-level struct name from the namespace, leaving
// keys like "email" or "user_info.email".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func messageFor(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", field, e.Param())
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", field, e.Param())
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}
