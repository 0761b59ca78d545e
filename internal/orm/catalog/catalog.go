// Package catalog maps declared types, Go types and size hints to the store type
// and in-memory representation descriptors used by resolution. Lookups are
// deterministic and interned: equal inputs return the identical instance.
package catalog

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/conduit-lang/typebind/internal/orm/schema"
	"github.com/conduit-lang/typebind/internal/orm/sqltypes"
)

// DefaultStringLength is the VARCHAR length used when no size hint is given
const DefaultStringLength = 255

// ulidLength is the textual length of a ULID
const ulidLength = 26

// AnyEnum is the representation of a converter operand declared as
// schema.EnumConstant without reference to a particular enumeration
var AnyEnum = &Representation{kind: KindEnum, goType: EnumConstantType, code: sqltypes.SmallInt}

// Catalog interns store types and enum representations
type Catalog struct {
	stringLength int

	mu         sync.Mutex
	storeTypes map[StoreType]*StoreType
	enums      map[string]*Representation
}

// Option configures a Catalog
type Option func(*Catalog)

// WithDefaultStringLength overrides the VARCHAR length used without a size hint
func WithDefaultStringLength(n int) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.stringLength = n
		}
	}
}

// New creates a new Catalog
func New(opts ...Option) *Catalog {
	c := &Catalog{
		stringLength: DefaultStringLength,
		storeTypes:   make(map[StoreType]*StoreType),
		enums:        make(map[string]*Representation),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StoreType returns the interned store type for a code and size hint. Size fields
// that do not apply to the code are dropped.
func (c *Catalog) StoreType(code sqltypes.Code, size schema.ColumnSize) *StoreType {
	st := StoreType{Code: code}

	switch {
	case code == sqltypes.Varchar:
		st.Length = c.stringLength
		if size.Length != nil {
			st.Length = *size.Length
		}
	case code.Sized():
		if size.Length != nil {
			st.Length = *size.Length
		}
	case code == sqltypes.Numeric:
		if size.Precision != nil {
			st.Precision = *size.Precision
			if size.Scale != nil {
				st.Scale = *size.Scale
			}
		}
	}

	return c.intern(st)
}

func (c *Catalog) intern(st StoreType) *StoreType {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.storeTypes[st]; ok {
		return existing
	}
	p := &st
	c.storeTypes[st] = p
	return p
}

// StoreTypeFor maps a declared (non-enum) type and size hint to a store type
func (c *Catalog) StoreTypeFor(spec *schema.TypeSpec, size schema.ColumnSize) (*StoreType, error) {
	if spec == nil {
		return nil, fmt.Errorf("type spec cannot be nil")
	}

	var code sqltypes.Code
	switch spec.BaseType {
	case schema.TypeString, schema.TypeEmail, schema.TypeURL, schema.TypePhone:
		code = sqltypes.Varchar
	case schema.TypeText, schema.TypeMarkdown:
		code = sqltypes.LongVarchar
	case schema.TypeInt:
		code = sqltypes.Integer
	case schema.TypeBigInt:
		code = sqltypes.BigInt
	case schema.TypeFloat:
		code = sqltypes.Double
	case schema.TypeDecimal:
		code = sqltypes.Numeric
	case schema.TypeBool:
		code = sqltypes.Boolean
	case schema.TypeTimestamp:
		code = sqltypes.TimestampTZ
	case schema.TypeDate:
		code = sqltypes.Date
	case schema.TypeTime:
		code = sqltypes.Time
	case schema.TypeUUID:
		code = sqltypes.UUID
	case schema.TypeULID:
		if size.Length == nil {
			n := ulidLength
			size.Length = &n
		}
		code = sqltypes.Char
	case schema.TypeJSON:
		code = sqltypes.JSON
	case schema.TypeJSONB:
		code = sqltypes.JSONB
	case schema.TypeBytes:
		code = sqltypes.VarBinary
	default:
		return nil, fmt.Errorf("%w: no store type for %s", ErrUnsupportedType, spec.BaseType)
	}

	return c.StoreType(code, size), nil
}

// DomainRepresentation returns the in-memory representation of a declared type
func (c *Catalog) DomainRepresentation(spec *schema.TypeSpec) (*Representation, error) {
	if spec == nil {
		return nil, fmt.Errorf("type spec cannot be nil")
	}

	switch spec.BaseType {
	case schema.TypeString, schema.TypeText, schema.TypeMarkdown, schema.TypeULID,
		schema.TypeEmail, schema.TypeURL, schema.TypePhone:
		return String, nil
	case schema.TypeInt:
		return Int32, nil
	case schema.TypeBigInt:
		return Int64, nil
	case schema.TypeFloat:
		return Float64, nil
	case schema.TypeDecimal:
		return Decimal, nil
	case schema.TypeBool:
		return Bool, nil
	case schema.TypeTimestamp, schema.TypeDate, schema.TypeTime:
		return Time, nil
	case schema.TypeUUID:
		return UUID, nil
	case schema.TypeJSON, schema.TypeJSONB:
		return JSON, nil
	case schema.TypeBytes:
		return Bytes, nil
	case schema.TypeEnum:
		return c.EnumRepresentation(spec.EnumName, spec.EnumValues)
	default:
		return nil, fmt.Errorf("%w: no representation for %s", ErrUnsupportedType, spec.BaseType)
	}
}

// EnumRepresentation returns the interned domain representation of an enumeration,
// validating its constant list on first use
func (c *Catalog) EnumRepresentation(name string, values []string) (*Representation, error) {
	key := enumKey(name, values)

	c.mu.Lock()
	defer c.mu.Unlock()

	if rep, ok := c.enums[key]; ok {
		return rep, nil
	}

	domain, err := newEnumDomain(name, values)
	if err != nil {
		return nil, err
	}
	rep := &Representation{kind: KindEnum, goType: EnumConstantType, code: sqltypes.TinyInt, enum: domain}
	c.enums[key] = rep
	return rep, nil
}

// RepresentationOf maps a Go type to its representation
func (c *Catalog) RepresentationOf(t reflect.Type) (*Representation, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrUnsupportedType)
	}
	if t == EnumConstantType {
		return AnyEnum, nil
	}
	if rep, ok := byGoType[t]; ok {
		return rep, nil
	}
	return nil, fmt.Errorf("%w: no representation for Go type %s", ErrUnsupportedType, t)
}
