// Package resolution turns collected attribute metadata into immutable
// Resolutions: the store type, the relational and domain representations and the
// optional value converter every read, write and dirty check relies on.
package resolution

import (
	"bytes"
	"fmt"
	"reflect"
	"time"

	"github.com/conduit-lang/typebind/internal/orm/catalog"
	"github.com/conduit-lang/typebind/internal/orm/convert"
	"github.com/conduit-lang/typebind/internal/orm/schema"
)

// Resolution is the resolved mapping of one attribute. It is built once during
// binding and never mutated, so it is safe for concurrent use.
type Resolution struct {
	resource  string
	attribute string
	nullable  bool

	storeType  *catalog.StoreType
	relational *catalog.Representation
	domain     *catalog.Representation
	converter  *convert.Descriptor

	strategy    schema.EnumStrategy
	hasStrategy bool

	legacy LegacyType
}

// Resource returns the owning resource name
func (r *Resolution) Resource() string { return r.resource }

// Attribute returns the attribute name
func (r *Resolution) Attribute() string { return r.attribute }

// Nullable reports whether the attribute accepts nil
func (r *Resolution) Nullable() bool { return r.nullable }

// StoreType returns the store type descriptor
func (r *Resolution) StoreType() *catalog.StoreType { return r.storeType }

// RelationalRepresentation returns the representation of values handed to the store
func (r *Resolution) RelationalRepresentation() *catalog.Representation { return r.relational }

// DomainRepresentation returns the representation of values at the attribute boundary
func (r *Resolution) DomainRepresentation() *catalog.Representation { return r.domain }

// Converter returns the value converter, or nil when the relational and domain
// representations are the same
func (r *Resolution) Converter() *convert.Descriptor { return r.converter }

// HasConverter reports whether a value converter is present
func (r *Resolution) HasConverter() bool { return r.converter != nil }

// EnumStrategy returns the built-in strategy used for an enum attribute. It reports
// false for non-enum attributes and for enums mapped by a custom converter.
func (r *Resolution) EnumStrategy() (schema.EnumStrategy, bool) {
	return r.strategy, r.hasStrategy
}

// Legacy returns the single-object view of this resolution
func (r *Resolution) Legacy() LegacyType { return r.legacy }

// ToRelational converts a domain value to the value written to the store
func (r *Resolution) ToRelational(v any) (any, error) {
	if r.converter == nil {
		return v, nil
	}
	if err := r.checkConstant(v); err != nil {
		return nil, err
	}
	return r.converter.ToRelational(v)
}

// ToDomain converts a value read from the store to its domain value
func (r *Resolution) ToDomain(v any) (any, error) {
	if r.converter == nil {
		return v, nil
	}
	out, err := r.converter.ToDomain(v)
	if err != nil {
		return nil, err
	}
	if err := r.checkConstant(out); err != nil {
		return nil, err
	}
	return out, nil
}

// checkConstant rejects enum values outside the attribute's enumeration
func (r *Resolution) checkConstant(v any) error {
	enum := r.domain.Enum()
	if enum == nil || v == nil {
		return nil
	}
	c, ok := v.(schema.EnumConstant)
	if p, isPtr := v.(*schema.EnumConstant); isPtr && p != nil {
		c, ok = *p, true
	}
	if !ok || !enum.Contains(c) {
		return fmt.Errorf("%w: %v is not a constant of enum %s", convert.ErrConversion, v, enum.Name())
	}
	return nil
}

// AreEqual compares two domain values of this attribute
func (r *Resolution) AreEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch r.domain.Kind() {
	case catalog.KindTime:
		ta, okA := a.(time.Time)
		tb, okB := b.(time.Time)
		if okA && okB {
			return ta.Equal(tb)
		}
	case catalog.KindDecimal:
		da, okA := asDecimal(a)
		db, okB := asDecimal(b)
		if okA && okB {
			return da == db
		}
	case catalog.KindBytes, catalog.KindJSON:
		ba, okA := asBytes(a)
		bb, okB := asBytes(b)
		if okA && okB {
			return bytes.Equal(ba, bb)
		}
	}
	return reflect.DeepEqual(a, b)
}

// IsDirty reports whether current differs from the loaded value
func (r *Resolution) IsDirty(loaded, current any) bool {
	return !r.AreEqual(loaded, current)
}

// asDecimal accepts the decimal text in either its domain or driver form
func asDecimal(v any) (string, bool) {
	switch d := v.(type) {
	case schema.Decimal:
		return string(d), true
	case string:
		return d, true
	case []byte:
		return string(d), true
	}
	return "", false
}

func asBytes(v any) ([]byte, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return rv.Bytes(), true
	}
	return nil, false
}
