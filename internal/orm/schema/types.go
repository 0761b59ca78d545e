// Package schema holds the raw mapping facts collected for each attribute before type
// resolution. Records in this package are plain data: they are populated once by a
// metadata collector and never validated here.
package schema

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/typebind/internal/orm/sqltypes"
)

// PrimitiveType represents the declared domain type of an attribute
type PrimitiveType int

const (
	// Text types
	TypeString PrimitiveType = iota
	TypeText
	TypeMarkdown

	// Numeric types
	TypeInt
	TypeBigInt
	TypeFloat
	TypeDecimal

	// Boolean
	TypeBool

	// Time types
	TypeTimestamp
	TypeDate
	TypeTime

	// Unique identifiers
	TypeUUID
	TypeULID

	// Validated types
	TypeEmail
	TypeURL
	TypePhone

	// JSON types
	TypeJSON
	TypeJSONB

	// Binary
	TypeBytes

	// Enum
	TypeEnum
)

var primitiveNames = [...]string{
	TypeString:    "string",
	TypeText:      "text",
	TypeMarkdown:  "markdown",
	TypeInt:       "int",
	TypeBigInt:    "bigint",
	TypeFloat:     "float",
	TypeDecimal:   "decimal",
	TypeBool:      "bool",
	TypeTimestamp: "timestamp",
	TypeDate:      "date",
	TypeTime:      "time",
	TypeUUID:      "uuid",
	TypeULID:      "ulid",
	TypeEmail:     "email",
	TypeURL:       "url",
	TypePhone:     "phone",
	TypeJSON:      "json",
	TypeJSONB:     "jsonb",
	TypeBytes:     "bytes",
	TypeEnum:      "enum",
}

// String returns the string representation of the primitive type
func (p PrimitiveType) String() string {
	if p < 0 || int(p) >= len(primitiveNames) {
		return "unknown"
	}
	return primitiveNames[p]
}

// ParsePrimitiveType converts a string to a PrimitiveType
func ParsePrimitiveType(s string) (PrimitiveType, error) {
	for i, name := range primitiveNames {
		if name == s {
			return PrimitiveType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown primitive type: %s", s)
}

// TypeSpec is the declared domain type of an attribute
type TypeSpec struct {
	BaseType PrimitiveType
	Nullable bool

	// Enumerations carry their constants in declaration order
	EnumName   string
	EnumValues []string
}

// IsEnum returns true if the declared type is an enumeration
func (t *TypeSpec) IsEnum() bool {
	return t != nil && t.BaseType == TypeEnum
}

// String returns a string representation of the TypeSpec
func (t *TypeSpec) String() string {
	if t == nil {
		return "<nil>"
	}

	s := t.BaseType.String()
	if t.IsEnum() {
		s = fmt.Sprintf("enum %s[%s]", t.EnumName, strings.Join(t.EnumValues, ","))
	}

	if t.Nullable {
		return s + "?"
	}
	return s + "!"
}

// ColumnSize carries the optional column sizing hints of an attribute
type ColumnSize struct {
	Length    *int // For string(N)
	Precision *int // For decimal(P,S)
	Scale     *int // For decimal(P,S)
}

// IsZero returns true when no hint is set
func (c ColumnSize) IsZero() bool {
	return c.Length == nil && c.Precision == nil && c.Scale == nil
}

// EnumStrategy is a declared preference for how an enumeration is stored
type EnumStrategy int

const (
	// StrategyOrdinal stores the 0-based declaration position
	StrategyOrdinal EnumStrategy = iota
	// StrategyNamed stores the constant name
	StrategyNamed
)

// String returns the string representation of the strategy
func (s EnumStrategy) String() string {
	switch s {
	case StrategyOrdinal:
		return "ordinal"
	case StrategyNamed:
		return "named"
	default:
		return "unknown"
	}
}

// ParseEnumStrategy converts a string to an EnumStrategy. "string" is accepted as an
// alias for named.
func ParseEnumStrategy(s string) (EnumStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ordinal":
		return StrategyOrdinal, nil
	case "named", "name", "string":
		return StrategyNamed, nil
	default:
		return 0, fmt.Errorf("unknown enum strategy: %s", s)
	}
}

// Decimal is the domain value of a decimal attribute: its exact decimal text,
// such as "12.50"
type Decimal string

// EnumConstant is the in-memory domain value of an enum-typed attribute.
// Constants are comparable, so they can be used directly as map keys and in
// equality checks.
type EnumConstant struct {
	Enum    string
	Name    string
	Ordinal int
}

// String returns the constant name
func (c EnumConstant) String() string {
	return c.Name
}

// Attribute holds the mapping facts for a single attribute
type Attribute struct {
	Resource string
	Name     string
	Type     *TypeSpec

	StrategyHint      *EnumStrategy
	ConverterRef      string
	StoreTypeOverride *sqltypes.Code
	Size              ColumnSize
}

// ID returns the qualified identity of the attribute (Resource.name)
func (a *Attribute) ID() string {
	if a.Resource == "" {
		return a.Name
	}
	return a.Resource + "." + a.Name
}

// HasConverter returns true if an explicit converter reference is set
func (a *Attribute) HasConverter() bool {
	return a.ConverterRef != ""
}
