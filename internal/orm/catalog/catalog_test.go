package catalog

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/typebind/internal/orm/schema"
	"github.com/conduit-lang/typebind/internal/orm/sqltypes"
)

func intPtr(i int) *int {
	return &i
}

func TestCatalog_StoreTypeFor(t *testing.T) {
	c := New()

	tests := []struct {
		name     string
		baseType schema.PrimitiveType
		size     schema.ColumnSize
		expected string
		ddl      string
	}{
		{"string default", schema.TypeString, schema.ColumnSize{}, "varchar(255)", "VARCHAR(255)"},
		{"string with length", schema.TypeString, schema.ColumnSize{Length: intPtr(50)}, "varchar(50)", "VARCHAR(50)"},
		{"text", schema.TypeText, schema.ColumnSize{}, "longvarchar", "TEXT"},
		{"int", schema.TypeInt, schema.ColumnSize{}, "integer", "INTEGER"},
		{"bigint", schema.TypeBigInt, schema.ColumnSize{}, "bigint", "BIGINT"},
		{"float", schema.TypeFloat, schema.ColumnSize{}, "double", "DOUBLE PRECISION"},
		{"decimal default", schema.TypeDecimal, schema.ColumnSize{}, "numeric", "NUMERIC"},
		{"decimal with precision", schema.TypeDecimal, schema.ColumnSize{Precision: intPtr(10), Scale: intPtr(2)}, "numeric(10,2)", "NUMERIC(10,2)"},
		{"bool", schema.TypeBool, schema.ColumnSize{}, "boolean", "BOOLEAN"},
		{"timestamp", schema.TypeTimestamp, schema.ColumnSize{}, "timestamptz", "TIMESTAMP WITH TIME ZONE"},
		{"uuid", schema.TypeUUID, schema.ColumnSize{}, "uuid", "UUID"},
		{"ulid", schema.TypeULID, schema.ColumnSize{}, "char(26)", "CHAR(26)"},
		{"email", schema.TypeEmail, schema.ColumnSize{}, "varchar(255)", "VARCHAR(255)"},
		{"jsonb", schema.TypeJSONB, schema.ColumnSize{}, "jsonb", "JSONB"},
		{"bytes", schema.TypeBytes, schema.ColumnSize{}, "varbinary", "BYTEA"},
		{"int ignores length", schema.TypeInt, schema.ColumnSize{Length: intPtr(9)}, "integer", "INTEGER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := c.StoreTypeFor(&schema.TypeSpec{BaseType: tt.baseType}, tt.size)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, st.String())

			ddl, err := st.DDL()
			require.NoError(t, err)
			assert.Equal(t, tt.ddl, ddl)
		})
	}
}

func TestCatalog_StoreTypeForRejectsEnum(t *testing.T) {
	_, err := New().StoreTypeFor(&schema.TypeSpec{BaseType: schema.TypeEnum}, schema.ColumnSize{})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestCatalog_StoreTypeInterned(t *testing.T) {
	c := New()

	a := c.StoreType(sqltypes.Varchar, schema.ColumnSize{Length: intPtr(6)})
	b := c.StoreType(sqltypes.Varchar, schema.ColumnSize{Length: intPtr(6)})
	other := c.StoreType(sqltypes.Varchar, schema.ColumnSize{Length: intPtr(7)})

	assert.Same(t, a, b)
	assert.NotSame(t, a, other)

	// Precision is meaningless for an integer code and must not split the intern key
	i1 := c.StoreType(sqltypes.Integer, schema.ColumnSize{})
	i2 := c.StoreType(sqltypes.Integer, schema.ColumnSize{Precision: intPtr(4)})
	assert.Same(t, i1, i2)
}

func TestCatalog_DefaultStringLength(t *testing.T) {
	c := New(WithDefaultStringLength(64))
	st := c.StoreType(sqltypes.Varchar, schema.ColumnSize{})
	assert.Equal(t, 64, st.Length)
}

func TestCatalog_DomainRepresentation(t *testing.T) {
	c := New()

	tests := []struct {
		baseType schema.PrimitiveType
		expected *Representation
	}{
		{schema.TypeString, String},
		{schema.TypeULID, String},
		{schema.TypeInt, Int32},
		{schema.TypeBigInt, Int64},
		{schema.TypeDecimal, Decimal},
		{schema.TypeDate, Time},
		{schema.TypeUUID, UUID},
		{schema.TypeJSON, JSON},
	}
	for _, tt := range tests {
		t.Run(tt.baseType.String(), func(t *testing.T) {
			rep, err := c.DomainRepresentation(&schema.TypeSpec{BaseType: tt.baseType})
			require.NoError(t, err)
			assert.Same(t, tt.expected, rep)
		})
	}
}

func TestCatalog_EnumRepresentation(t *testing.T) {
	c := New()

	rep, err := c.EnumRepresentation("Values", []string{"FIRST", "SECOND"})
	require.NoError(t, err)
	assert.Equal(t, KindEnum, rep.Kind())
	assert.Equal(t, "enum Values", rep.String())

	again, err := c.DomainRepresentation(&schema.TypeSpec{
		BaseType:   schema.TypeEnum,
		EnumName:   "Values",
		EnumValues: []string{"FIRST", "SECOND"},
	})
	require.NoError(t, err)
	assert.Same(t, rep, again)

	domain := rep.Enum()
	require.NotNil(t, domain)
	assert.Equal(t, 2, domain.Len())
	assert.Equal(t, 6, domain.MaxNameLength())
}

func TestEnumDomain_OrdinalsArePositionalInverses(t *testing.T) {
	names := []string{"RED", "GREEN", "BLUE", "ULTRAVIOLET"}
	rep, err := New().EnumRepresentation("Color", names)
	require.NoError(t, err)
	domain := rep.Enum()

	for i, name := range names {
		c, ok := domain.FromOrdinal(i)
		require.True(t, ok)
		assert.Equal(t, name, c.Name)

		ordinal, ok := domain.OrdinalOf(c)
		require.True(t, ok)
		assert.Equal(t, i, ordinal)

		byName, ok := domain.FromName(name)
		require.True(t, ok)
		assert.Equal(t, c, byName)
	}

	_, ok := domain.FromOrdinal(len(names))
	assert.False(t, ok)
	_, ok = domain.OrdinalOf(schema.EnumConstant{Enum: "Other", Name: "RED", Ordinal: 0})
	assert.False(t, ok)
	_, ok = domain.NameOf(schema.EnumConstant{Enum: "Color", Name: "RED", Ordinal: 2})
	assert.False(t, ok)
}

func TestEnumDomain_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		values []string
	}{
		{"no constants", nil},
		{"duplicate names", []string{"A", "B", "A"}},
		{"blank name", []string{"A", " "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().EnumRepresentation("Broken", tt.values)
			assert.ErrorIs(t, err, ErrInvalidEnumDescriptor)
		})
	}
}

func TestCatalog_RepresentationOf(t *testing.T) {
	c := New()

	rep, err := c.RepresentationOf(reflect.TypeOf(int32(0)))
	require.NoError(t, err)
	assert.Same(t, Int32, rep)

	rep, err = c.RepresentationOf(reflect.TypeOf(0))
	require.NoError(t, err)
	assert.Same(t, Int64, rep)

	rep, err = c.RepresentationOf(reflect.TypeOf(uuid.UUID{}))
	require.NoError(t, err)
	assert.Same(t, UUID, rep)

	rep, err = c.RepresentationOf(EnumConstantType)
	require.NoError(t, err)
	assert.Same(t, AnyEnum, rep)

	_, err = c.RepresentationOf(reflect.TypeOf(struct{}{}))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestCreateTable(t *testing.T) {
	c := New()
	sql, err := CreateTable("order_items", []Column{
		{Name: "id", Type: c.StoreType(sqltypes.UUID, schema.ColumnSize{})},
		{Name: "status", Type: c.StoreType(sqltypes.TinyInt, schema.ColumnSize{}), Nullable: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE \"order_items\" (\n  \"id\" UUID NOT NULL,\n  \"status\" SMALLINT NULL\n);", sql)

	_, err = CreateTable("empty", nil)
	assert.Error(t, err)
}
