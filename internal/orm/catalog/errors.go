package catalog

import "errors"

var (
	// ErrInvalidEnumDescriptor is returned when an enumeration has no constants,
	// a blank constant name or duplicate constant names
	ErrInvalidEnumDescriptor = errors.New("invalid enum descriptor")

	// ErrConflictingTypeMapping is returned when an explicit mapping choice disagrees
	// with the representation derived for the attribute
	ErrConflictingTypeMapping = errors.New("conflicting type mapping")

	// ErrUnsupportedType is returned when a declared or Go type has no representation
	ErrUnsupportedType = errors.New("unsupported type")
)
