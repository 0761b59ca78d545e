package resolution

import (
	"database/sql/driver"
	"fmt"
	"reflect"

	"github.com/conduit-lang/typebind/internal/orm/schema"
	"github.com/conduit-lang/typebind/internal/orm/sqltypes"
)

// LegacyType is the older single-object type contract: one handle that knows its
// store code and reads and writes values itself. Every implementation is a view
// over a Resolution and holds no mapping state of its own.
type LegacyType interface {
	// Name returns a descriptive type name
	Name() string

	// StoreCode returns the store type code values are written as
	StoreCode() sqltypes.Code

	// ReturnedType returns the Go type produced by Read
	ReturnedType() reflect.Type

	// Write converts a domain value into the value written to the store
	Write(domain any) (any, error)

	// Read converts a value read from the store into a domain value
	Read(relational any) (any, error)

	// Bind converts a domain value into a database/sql driver value
	Bind(domain any) (driver.Value, error)

	IsEqual(a, b any) bool
	IsDirty(loaded, current any) bool

	// Resolution returns the resolution this handle views
	Resolution() *Resolution
}

// view implements LegacyType on top of a Resolution
type view struct {
	r *Resolution
}

func (v view) StoreCode() sqltypes.Code { return v.r.storeType.Code }

func (v view) ReturnedType() reflect.Type { return v.r.domain.GoType() }

func (v view) Write(domain any) (any, error) { return v.r.ToRelational(domain) }

func (v view) Read(relational any) (any, error) { return v.r.ToDomain(relational) }

func (v view) Bind(domain any) (driver.Value, error) {
	if domain == nil {
		if !v.r.nullable {
			return nil, fmt.Errorf("%s.%s: attribute is not nullable", v.r.resource, v.r.attribute)
		}
		return nil, nil
	}
	relational, err := v.Write(domain)
	if err != nil {
		return nil, err
	}
	return driver.DefaultParameterConverter.ConvertValue(relational)
}

func (v view) IsEqual(a, b any) bool { return v.r.AreEqual(a, b) }

func (v view) IsDirty(loaded, current any) bool { return v.r.IsDirty(loaded, current) }

func (v view) Resolution() *Resolution { return v.r }

// BasicType is the legacy view of an attribute stored as-is
type BasicType struct {
	view
}

// Name implements LegacyType
func (t *BasicType) Name() string {
	return t.r.domain.String()
}

// EnumType is the legacy view of an enum mapped by a built-in ordinal or named
// converter
type EnumType struct {
	view
}

// Name implements LegacyType
func (t *EnumType) Name() string {
	strategy, _ := t.r.EnumStrategy()
	return fmt.Sprintf("enum(%s,%s)", t.EnumName(), strategy)
}

// IsOrdinal reports whether constants are stored by ordinal
func (t *EnumType) IsOrdinal() bool {
	strategy, _ := t.r.EnumStrategy()
	return strategy == schema.StrategyOrdinal
}

// EnumName returns the enumeration name
func (t *EnumType) EnumName() string {
	return t.r.domain.Enum().Name()
}

// ConverterTypeAdapter is the legacy view of an attribute mapped by a custom
// converter
type ConverterTypeAdapter struct {
	view
}

// Name implements LegacyType
func (t *ConverterTypeAdapter) Name() string {
	return "converted::" + t.ConverterRef()
}

// ConverterRef returns the reference of the wrapped converter
func (t *ConverterTypeAdapter) ConverterRef() string {
	return t.r.converter.Ref()
}

// newLegacy builds the legacy view for a completed resolution
func newLegacy(r *Resolution) LegacyType {
	switch {
	case r.hasStrategy:
		return &EnumType{view{r}}
	case r.converter != nil:
		return &ConverterTypeAdapter{view{r}}
	default:
		return &BasicType{view{r}}
	}
}

var (
	_ LegacyType = (*BasicType)(nil)
	_ LegacyType = (*EnumType)(nil)
	_ LegacyType = (*ConverterTypeAdapter)(nil)
)
