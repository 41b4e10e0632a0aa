package api

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator. Field names in errors are json tag names.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		validate.RegisterValidation("hexcolor_or_empty", func(fl validator.FieldLevel) bool {
			v := fl.Field().String()
			return v == "" || hexColor(v)
		})
	})
	return validate
}

func hexColor(v string) bool {
	if len(v) != 4 && len(v) != 7 {
		return false
	}
	if v[0] != '#' {
		return false
	}
	for _, r := range v[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// ValidateStruct runs the shared validator and flattens failures to field messages.
func ValidateStruct(s interface{}) []ValidationError {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []ValidationError{{Field: "", Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(ves))
	for _, ve := range ves {
		field := ve.Field()
		var msg string
		switch ve.Tag() {
		case "required", "notblank":
			msg = field + " is required"
		case "min":
			msg = field + " must be at least " + ve.Param()
		case "max":
			msg = field + " must be at most " + ve.Param()
		case "oneof":
			msg = field + " must be one of: " + strings.ReplaceAll(ve.Param(), " ", ", ")
		case "email":
			msg = "invalid email format"
		case "hexcolor_or_empty":
			msg = field + " must be a hex color like #1a2b3c"
		case "url":
			msg = field + " must be a valid URL"
		default:
			msg = field + " is not valid"
		}
		out = append(out, ValidationError{Field: field, Message: msg})
	}
	return out
}

// Messages joins validation errors into one human readable line.
func Messages(errs []ValidationError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Message)
	}
	return strings.Join(parts, "; ")
}
