// Package sqltypes defines the store type codes used to describe how an attribute
// value is held in the relational store, independent of Go types.
package sqltypes

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// Code identifies a low-level relational representation
type Code int

const (
	// Integer codes
	TinyInt Code = iota + 1
	SmallInt
	Integer
	BigInt

	// Approximate and exact numerics
	Real
	Double
	Numeric

	// Boolean
	Boolean

	// Character codes
	Char
	Varchar
	LongVarchar

	// Temporal codes
	Date
	Time
	Timestamp
	TimestampTZ

	// Structured and binary codes
	UUID
	JSON
	JSONB
	VarBinary
)

var codeNames = map[Code]string{
	TinyInt:     "tinyint",
	SmallInt:    "smallint",
	Integer:     "integer",
	BigInt:      "bigint",
	Real:        "real",
	Double:      "double",
	Numeric:     "numeric",
	Boolean:     "boolean",
	Char:        "char",
	Varchar:     "varchar",
	LongVarchar: "longvarchar",
	Date:        "date",
	Time:        "time",
	Timestamp:   "timestamp",
	TimestampTZ: "timestamptz",
	UUID:        "uuid",
	JSON:        "json",
	JSONB:       "jsonb",
	VarBinary:   "varbinary",
}

// String returns the string representation of the code
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseCode converts a string to a Code
func ParseCode(s string) (Code, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for code, n := range codeNames {
		if n == name {
			return code, nil
		}
	}
	switch name {
	case "int", "int4":
		return Integer, nil
	case "int2":
		return SmallInt, nil
	case "int8":
		return BigInt, nil
	case "text":
		return LongVarchar, nil
	case "bool":
		return Boolean, nil
	case "decimal":
		return Numeric, nil
	case "bytea", "binary":
		return VarBinary, nil
	}
	return 0, fmt.Errorf("unknown store type code: %s", s)
}

// Category groups codes that hold the same kind of value. Two codes of the same
// category are interchangeable for an attribute.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryInteger
	CategoryExactNumeric
	CategoryFloat
	CategoryBoolean
	CategoryString
	CategoryTemporal
	CategoryUUID
	CategoryJSON
	CategoryBinary
)

// String returns the string representation of the category
func (c Category) String() string {
	switch c {
	case CategoryInteger:
		return "integer"
	case CategoryExactNumeric:
		return "exact-numeric"
	case CategoryFloat:
		return "float"
	case CategoryBoolean:
		return "boolean"
	case CategoryString:
		return "string"
	case CategoryTemporal:
		return "temporal"
	case CategoryUUID:
		return "uuid"
	case CategoryJSON:
		return "json"
	case CategoryBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Category returns the semantic category of the code
func (c Code) Category() Category {
	switch c {
	case TinyInt, SmallInt, Integer, BigInt:
		return CategoryInteger
	case Numeric:
		return CategoryExactNumeric
	case Real, Double:
		return CategoryFloat
	case Boolean:
		return CategoryBoolean
	case Char, Varchar, LongVarchar:
		return CategoryString
	case Date, Time, Timestamp, TimestampTZ:
		return CategoryTemporal
	case UUID:
		return CategoryUUID
	case JSON, JSONB:
		return CategoryJSON
	case VarBinary:
		return CategoryBinary
	default:
		return CategoryUnknown
	}
}

// Compatible reports whether a value stored under c can be stored under other
func (c Code) Compatible(other Code) bool {
	return c.Category() != CategoryUnknown && c.Category() == other.Category()
}

// Sized reports whether the code takes a length parameter
func (c Code) Sized() bool {
	return c == Char || c == Varchar || c == VarBinary
}

// OID returns the PostgreSQL type OID used to carry the code on the wire.
// PostgreSQL has no one-byte integer, so TinyInt travels as int2.
func (c Code) OID() uint32 {
	switch c {
	case TinyInt, SmallInt:
		return pgtype.Int2OID
	case Integer:
		return pgtype.Int4OID
	case BigInt:
		return pgtype.Int8OID
	case Real:
		return pgtype.Float4OID
	case Double:
		return pgtype.Float8OID
	case Numeric:
		return pgtype.NumericOID
	case Boolean:
		return pgtype.BoolOID
	case Char:
		return pgtype.BPCharOID
	case Varchar:
		return pgtype.VarcharOID
	case LongVarchar:
		return pgtype.TextOID
	case Date:
		return pgtype.DateOID
	case Time:
		return pgtype.TimeOID
	case Timestamp:
		return pgtype.TimestampOID
	case TimestampTZ:
		return pgtype.TimestamptzOID
	case UUID:
		return pgtype.UUIDOID
	case JSON:
		return pgtype.JSONOID
	case JSONB:
		return pgtype.JSONBOID
	case VarBinary:
		return pgtype.ByteaOID
	default:
		return 0
	}
}
