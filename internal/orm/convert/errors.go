package convert

import "errors"

var (
	// ErrConverterConstruction is returned when a referenced converter cannot be
	// built or is internally inconsistent
	ErrConverterConstruction = errors.New("converter construction failed")

	// ErrConversion is returned when a value cannot be converted
	ErrConversion = errors.New("value conversion failed")
)
