// Package convert provides attribute value converters and the registry that
// constructs and caches them during schema binding.
package convert

import (
	"fmt"
	"reflect"

	"github.com/conduit-lang/typebind/internal/orm/catalog"
)

// AttributeConverter transforms attribute values between their domain and relational
// forms. Built-in enum converters and user-supplied converters both implement it.
type AttributeConverter interface {
	// DomainType is the Go type accepted by ToRelational and produced by ToDomain
	DomainType() reflect.Type

	// RelationalType is the Go type produced by ToRelational and accepted by ToDomain
	RelationalType() reflect.Type

	ToRelational(domain any) (any, error)
	ToDomain(relational any) (any, error)
}

// Kind distinguishes built-in converters from user-supplied ones
type Kind int

const (
	KindCustom Kind = iota
	KindOrdinal
	KindNamed
)

// String returns the string representation of the converter kind
func (k Kind) String() string {
	switch k {
	case KindCustom:
		return "custom"
	case KindOrdinal:
		return "ordinal"
	case KindNamed:
		return "named"
	default:
		return "unknown"
	}
}

// Descriptor is a constructed converter together with the representations it
// converts between. Descriptors are shared and immutable.
type Descriptor struct {
	ref        string
	enum       string
	kind       Kind
	domain     *catalog.Representation
	relational *catalog.Representation
	converter  AttributeConverter
}

// Ref returns the identity key the descriptor is cached under
func (d *Descriptor) Ref() string { return d.ref }

// Enum returns the name of the enumeration the converter serves, or "" for a
// converter of scalar values
func (d *Descriptor) Enum() string { return d.enum }

// Kind returns whether the converter is built in or user supplied
func (d *Descriptor) Kind() Kind { return d.kind }

// Domain returns the domain-side representation
func (d *Descriptor) Domain() *catalog.Representation { return d.domain }

// Relational returns the relational-side representation
func (d *Descriptor) Relational() *catalog.Representation { return d.relational }

// Converter returns the underlying converter
func (d *Descriptor) Converter() AttributeConverter { return d.converter }

// ToRelational converts a domain value to its relational form. nil passes through.
func (d *Descriptor) ToRelational(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	out, err := d.converter.ToRelational(v)
	if err != nil {
		return nil, fmt.Errorf("converter %s: %w", d.ref, err)
	}
	return out, nil
}

// ToDomain converts a relational value to its domain form. nil passes through.
func (d *Descriptor) ToDomain(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	out, err := d.converter.ToDomain(v)
	if err != nil {
		return nil, fmt.Errorf("converter %s: %w", d.ref, err)
	}
	return out, nil
}

// String returns a short description such as "custom(status_code) enum->int32"
func (d *Descriptor) String() string {
	return fmt.Sprintf("%s(%s) %s->%s", d.kind, d.ref, d.domain, d.relational)
}
