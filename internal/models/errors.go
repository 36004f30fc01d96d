package models

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// FieldErrors flattens a validation failure into field -> message.
// ok is false when err did not come from field validation.
func FieldErrors(err error) (map[string]string, bool) {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return nil, false
	}
	out := make(map[string]string, len(errs))
	for field, fieldErr := range errs {
		out[field] = fieldErr.Error()
	}
	return out, true
}
