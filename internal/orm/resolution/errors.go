package resolution

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/typebind/internal/orm/catalog"
	"github.com/conduit-lang/typebind/internal/orm/convert"
)

// Resolution failures are configuration errors detected at bind time. They are
// never retried; a schema with any failed attribute is not usable.
var (
	// ErrConverterConstruction is returned when a referenced converter cannot be
	// built or is internally inconsistent
	ErrConverterConstruction = convert.ErrConverterConstruction

	// ErrInvalidEnumDescriptor is returned when an enumeration has no constants or
	// duplicate names
	ErrInvalidEnumDescriptor = catalog.ErrInvalidEnumDescriptor

	// ErrConflictingTypeMapping is returned when explicit overrides disagree with the
	// derived representation
	ErrConflictingTypeMapping = catalog.ErrConflictingTypeMapping
)

// AttributeError attaches the attribute identity to a resolution failure
type AttributeError struct {
	Resource  string
	Attribute string
	Err       error
}

// Error implements the error interface
func (e *AttributeError) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("%s: %v", e.Attribute, e.Err)
	}
	return fmt.Sprintf("%s.%s: %v", e.Resource, e.Attribute, e.Err)
}

// Unwrap returns the underlying error
func (e *AttributeError) Unwrap() error {
	return e.Err
}

// BindError reports every attribute of a resource that failed to resolve, in
// declaration order
type BindError struct {
	Resource string
	Errors   []*AttributeError
}

// Error implements the error interface
func (e *BindError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("binding %s failed: %s", e.Resource, e.Errors[0].Error())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "binding %s failed with %d errors:", e.Resource, len(e.Errors))
	for _, err := range e.Errors {
		b.WriteString("\n  - ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap exposes the attribute errors to errors.Is and errors.As
func (e *BindError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}
