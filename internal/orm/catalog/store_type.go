package catalog

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/conduit-lang/typebind/internal/orm/sqltypes"
)

// StoreType is a store type code plus its size and precision. Zero means
// "unspecified" for each size field. Instances handed out by a Catalog are interned.
type StoreType struct {
	Code      sqltypes.Code
	Length    int
	Precision int
	Scale     int
}

// Category returns the semantic category of the store code
func (s *StoreType) Category() sqltypes.Category {
	return s.Code.Category()
}

// String returns a string such as "varchar(6)" or "numeric(10,2)"
func (s *StoreType) String() string {
	switch {
	case s.Length > 0:
		return fmt.Sprintf("%s(%d)", s.Code, s.Length)
	case s.Precision > 0:
		return fmt.Sprintf("%s(%d,%d)", s.Code, s.Precision, s.Scale)
	default:
		return s.Code.String()
	}
}

// DDL renders the PostgreSQL column type for the store type
func (s *StoreType) DDL() (string, error) {
	switch s.Code {
	case sqltypes.TinyInt, sqltypes.SmallInt:
		// PostgreSQL has no one-byte integer
		return "SMALLINT", nil
	case sqltypes.Integer:
		return "INTEGER", nil
	case sqltypes.BigInt:
		return "BIGINT", nil
	case sqltypes.Real:
		return "REAL", nil
	case sqltypes.Double:
		return "DOUBLE PRECISION", nil
	case sqltypes.Numeric:
		if s.Precision > 0 {
			return fmt.Sprintf("NUMERIC(%d,%d)", s.Precision, s.Scale), nil
		}
		return "NUMERIC", nil
	case sqltypes.Boolean:
		return "BOOLEAN", nil
	case sqltypes.Char:
		return fmt.Sprintf("CHAR(%d)", s.lengthOr(1)), nil
	case sqltypes.Varchar:
		return fmt.Sprintf("VARCHAR(%d)", s.lengthOr(DefaultStringLength)), nil
	case sqltypes.LongVarchar:
		return "TEXT", nil
	case sqltypes.Date:
		return "DATE", nil
	case sqltypes.Time:
		return "TIME", nil
	case sqltypes.Timestamp:
		return "TIMESTAMP", nil
	case sqltypes.TimestampTZ:
		return "TIMESTAMP WITH TIME ZONE", nil
	case sqltypes.UUID:
		return "UUID", nil
	case sqltypes.JSON:
		return "JSON", nil
	case sqltypes.JSONB:
		return "JSONB", nil
	case sqltypes.VarBinary:
		return "BYTEA", nil
	default:
		return "", fmt.Errorf("%w: store code %s", ErrUnsupportedType, s.Code)
	}
}

func (s *StoreType) lengthOr(def int) int {
	if s.Length > 0 {
		return s.Length
	}
	return def
}

// Column is one column of a rendered table
type Column struct {
	Name     string
	Type     *StoreType
	Nullable bool
}

// CreateTable renders a PostgreSQL CREATE TABLE statement for the given columns
func CreateTable(table string, columns []Column) (string, error) {
	if len(columns) == 0 {
		return "", fmt.Errorf("table %s has no columns", table)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", pq.QuoteIdentifier(table))
	for i, col := range columns {
		ddl, err := col.Type.DDL()
		if err != nil {
			return "", fmt.Errorf("column %s: %w", col.Name, err)
		}
		null := "NOT NULL"
		if col.Nullable {
			null = "NULL"
		}
		fmt.Fprintf(&b, "  %s %s %s", pq.QuoteIdentifier(col.Name), ddl, null)
		if i < len(columns)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(");")
	return b.String(), nil
}
