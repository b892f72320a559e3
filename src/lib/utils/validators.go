package utils

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate    *validator.Validate
	validateMux sync.Mutex
)

type ValidationErrors = validator.ValidationErrors

type FieldError = validator.FieldError

// Validator returns the shared validator instance. Field errors report the
// json name of the field rather than the Go struct field name.
func Validator() *validator.Validate {
	validateMux.Lock()
	defer validateMux.Unlock()

	if validate == nil {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonTagName)
	}

	return validate
}

func jsonTagName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")

	if name == "-" {
		return ""
	}

	if name == "" {
		return fld.Name
	}

	return name
}
