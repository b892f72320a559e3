package shttperr

import (
	"encoding/json"
	"sort"
)

// ValidationError is a custom error map which holds validation errors,
// keyed by the json name of the offending field.
type ValidationError struct {
	Errors map[string]string
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	if ve.Errors == nil {
		return ""
	}

	b, _ := json.Marshal(ve.Errors)
	return string(b)
}

// SetError sets an error. If the Errors instance is nil yet,
// it will be created automatically. The first error of a field wins.
func (ve *ValidationError) SetError(key, value string) {
	if ve.Errors == nil {
		ve.Errors = map[string]string{}
	}

	if _, ok := ve.Errors[key]; ok {
		return
	}

	ve.Errors[key] = value
}

// Fields returns the sorted names of the fields with errors.
func (ve *ValidationError) Fields() []string {
	fields := make([]string, 0, len(ve.Errors))

	for k := range ve.Errors {
		fields = append(fields, k)
	}

	sort.Strings(fields)
	return fields
}

// ToError returns nil if the errors map is empty, or returns
// the validation error instance in the other case.
func (ve *ValidationError) ToError() *ValidationError {
	if len(ve.Errors) == 0 {
		return nil
	}

	return ve
}
