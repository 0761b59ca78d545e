package catalog

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/conduit-lang/typebind/internal/orm/schema"
	"github.com/conduit-lang/typebind/internal/orm/sqltypes"
)

// Kind is the in-memory shape of a value at the attribute boundary
type Kind int

const (
	KindInt8 Kind = iota + 1
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindDecimal
	KindString
	KindBool
	KindTime
	KindUUID
	KindJSON
	KindBytes
	KindEnum
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindUUID:
		return "uuid"
	case KindJSON:
		return "json"
	case KindBytes:
		return "bytes"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Representation describes the in-memory type used on one side of a conversion.
// Scalar representations are process-wide singletons and enum representations are
// interned per enumeration, so pointer equality is representation equality.
type Representation struct {
	kind   Kind
	goType reflect.Type
	code   sqltypes.Code
	enum   *EnumDomain
}

// Kind returns the representation kind
func (r *Representation) Kind() Kind { return r.kind }

// GoType returns the Go type of values in this representation
func (r *Representation) GoType() reflect.Type { return r.goType }

// DefaultCode returns the store type code used when nothing else is known
func (r *Representation) DefaultCode() sqltypes.Code { return r.code }

// Enum returns the enumeration lookup tables, or nil for scalar representations
func (r *Representation) Enum() *EnumDomain { return r.enum }

// String returns a short description such as "int32" or "enum Values"
func (r *Representation) String() string {
	if r.enum != nil {
		return fmt.Sprintf("enum %s", r.enum.Name())
	}
	return r.kind.String()
}

var (
	Int8    = &Representation{kind: KindInt8, goType: reflect.TypeOf(int8(0)), code: sqltypes.TinyInt}
	Int16   = &Representation{kind: KindInt16, goType: reflect.TypeOf(int16(0)), code: sqltypes.SmallInt}
	Int32   = &Representation{kind: KindInt32, goType: reflect.TypeOf(int32(0)), code: sqltypes.Integer}
	Int64   = &Representation{kind: KindInt64, goType: reflect.TypeOf(int64(0)), code: sqltypes.BigInt}
	Float32 = &Representation{kind: KindFloat32, goType: reflect.TypeOf(float32(0)), code: sqltypes.Real}
	Float64 = &Representation{kind: KindFloat64, goType: reflect.TypeOf(float64(0)), code: sqltypes.Double}
	Decimal = &Representation{kind: KindDecimal, goType: reflect.TypeOf(schema.Decimal("")), code: sqltypes.Numeric}
	String  = &Representation{kind: KindString, goType: reflect.TypeOf(""), code: sqltypes.Varchar}
	Bool    = &Representation{kind: KindBool, goType: reflect.TypeOf(false), code: sqltypes.Boolean}
	Time    = &Representation{kind: KindTime, goType: reflect.TypeOf(time.Time{}), code: sqltypes.TimestampTZ}
	UUID    = &Representation{kind: KindUUID, goType: reflect.TypeOf(uuid.UUID{}), code: sqltypes.UUID}
	JSON    = &Representation{kind: KindJSON, goType: reflect.TypeOf(json.RawMessage{}), code: sqltypes.JSON}
	Bytes   = &Representation{kind: KindBytes, goType: reflect.TypeOf([]byte{}), code: sqltypes.VarBinary}
)

// EnumConstantType is the Go type of enum domain values
var EnumConstantType = reflect.TypeOf(schema.EnumConstant{})

// byGoType resolves converter operand types. Plain int is treated as int64.
var byGoType = map[reflect.Type]*Representation{
	reflect.TypeOf(int(0)): Int64,
	Int8.goType:            Int8,
	Int16.goType:           Int16,
	Int32.goType:           Int32,
	Int64.goType:           Int64,
	Float32.goType:         Float32,
	Float64.goType:         Float64,
	Decimal.goType:         Decimal,
	String.goType:          String,
	Bool.goType:            Bool,
	Time.goType:            Time,
	UUID.goType:            UUID,
	JSON.goType:            JSON,
	Bytes.goType:           Bytes,
}
