// Package validators holds the struct-tag validation shared by the per-route
// validator handlers.
package validators

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates s and returns a field -> message map, empty when s is valid.
func Struct(s interface{}) map[string]string {
	errors := make(map[string]string)
	err := validate.Struct(s)
	if err == nil {
		return errors
	}
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		errors["request"] = "Invalid request!"
		return errors
	}
	for _, fe := range fieldErrors {
		errors[fe.Field()] = message(fe)
	}
	return errors
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required!"
	case "email":
		return "Invalid email!"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters long!"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters long!"
	case "url":
		return fe.Field() + " must be a valid URL!"
	case "gte":
		return fe.Field() + " must be at least " + fe.Param() + "!"
	}
	return fe.Field() + " is invalid!"
}
