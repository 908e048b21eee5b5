package utils

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// ValidateStruct runs validator tags on inputs that arrive outside gin's
// binding path (coordinator saves, cmd tools).
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}
