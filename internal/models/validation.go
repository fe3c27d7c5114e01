package models

import "github.com/go-playground/validator/v10"

// validate caches struct metadata, so one instance is shared.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks v against its `validate` struct tags.
func Validate(v any) error {
	return validate.Struct(v)
}
