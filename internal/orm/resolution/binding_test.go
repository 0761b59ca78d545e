package resolution

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/typebind/internal/orm/convert"
	"github.com/conduit-lang/typebind/internal/orm/schema"
)

// ticketResource covers every kind of mapping: ordinal, named and custom enums,
// a stock scalar converter and a plain text column
func ticketResource() *schema.Resource {
	named := schema.StrategyNamed
	values := func() *schema.TypeSpec {
		return &schema.TypeSpec{BaseType: schema.TypeEnum, EnumName: "Values", EnumValues: valueNames}
	}

	return schema.NewResource("Ticket").
		Add(&schema.Attribute{Name: "id", Type: &schema.TypeSpec{BaseType: schema.TypeUUID}, ConverterRef: convert.UUIDText}).
		Add(&schema.Attribute{Name: "raw", Type: values()}).
		Add(&schema.Attribute{Name: "named", Type: values(), StrategyHint: &named}).
		Add(&schema.Attribute{Name: "converted", Type: values(), ConverterRef: "values_code"}).
		Add(&schema.Attribute{Name: "active", Type: &schema.TypeSpec{BaseType: schema.TypeBool}, ConverterRef: convert.YesNo}).
		Add(&schema.Attribute{Name: "title", Type: &schema.TypeSpec{BaseType: schema.TypeString}})
}

// ticketRow returns domain values for every ticket column
func ticketRow(t *testing.T, binding *Binding) []any {
	t.Helper()

	raw, _ := binding.Get("raw")
	first := constant(t, raw, "FIRST")
	second := constant(t, raw, "SECOND")

	return []any{uuid.MustParse("8a6e0804-2bd0-4672-b79d-d97027f9071a"), second, first, second, true, "hello"}
}

func insertSQL(binding *Binding) string {
	resolutions := binding.Resolutions()
	names := make([]string, len(resolutions))
	marks := make([]string, len(resolutions))
	for i, r := range resolutions {
		names[i] = r.Attribute()
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		binding.Table(), strings.Join(names, ", "), strings.Join(marks, ", "))
}

func bindRow(t *testing.T, binding *Binding, row []any) []any {
	t.Helper()

	args := make([]any, len(row))
	for i, r := range binding.Resolutions() {
		v, err := r.Legacy().Bind(row[i])
		require.NoError(t, err, r.Attribute())
		args[i] = v
	}
	return args
}

func TestBinding_DriverValues(t *testing.T) {
	b, _ := newBuilder(t)
	binding, err := b.BindResource(ticketResource())
	require.NoError(t, err)

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(insertSQL(binding)).
		WithArgs("8a6e0804-2bd0-4672-b79d-d97027f9071a", int64(1), "FIRST", int64(11), "Y", "hello").
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, err = db.Exec(insertSQL(binding), bindRow(t, binding, ticketRow(t, binding))...)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBinding_ScanThroughConverters(t *testing.T) {
	b, _ := newBuilder(t)
	binding, err := b.BindResource(ticketResource())
	require.NoError(t, err)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "raw", "named", "converted", "active", "title"}).
		AddRow("8a6e0804-2bd0-4672-b79d-d97027f9071a", int64(1), []byte("FIRST"), int64(11), "Y", "hello")
	mock.ExpectQuery("SELECT (.+) FROM ticket").WillReturnRows(rows)

	got := scanTicket(t, db, binding)
	assert.Equal(t, ticketRow(t, binding), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBinding_SQLiteRoundTrip(t *testing.T) {
	b, _ := newBuilder(t)
	binding, err := b.BindResource(ticketResource())
	require.NoError(t, err)

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	ddl, err := binding.CreateTableSQL()
	require.NoError(t, err)
	_, err = db.Exec(ddl)
	require.NoError(t, err)

	row := ticketRow(t, binding)
	_, err = db.Exec(insertSQL(binding), bindRow(t, binding, row)...)
	require.NoError(t, err)

	got := scanTicket(t, db, binding)
	for i, r := range binding.Resolutions() {
		assert.False(t, r.IsDirty(row[i], got[i]), r.Attribute())
	}
}

func scanTicket(t *testing.T, db *sql.DB, binding *Binding) []any {
	t.Helper()

	resolutions := binding.Resolutions()
	names := make([]string, len(resolutions))
	for i, r := range resolutions {
		names[i] = r.Attribute()
	}

	rows, err := db.Query(fmt.Sprintf("SELECT %s FROM %s", strings.Join(names, ", "), binding.Table()))
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	raw := make([]any, len(resolutions))
	dest := make([]any, len(resolutions))
	for i := range raw {
		dest[i] = &raw[i]
	}
	require.NoError(t, rows.Scan(dest...))
	require.NoError(t, rows.Err())

	out := make([]any, len(resolutions))
	for i, r := range resolutions {
		v, err := r.Legacy().Read(raw[i])
		require.NoError(t, err, r.Attribute())
		out[i] = v
	}
	return out
}

func TestBinding_ColumnsFollowDeclarationOrder(t *testing.T) {
	b, _ := newBuilder(t)
	binding, err := b.BindResource(ticketResource())
	require.NoError(t, err)

	columns := binding.Columns()
	require.Len(t, columns, 6)
	assert.Equal(t, "id", columns[0].Name)
	assert.Equal(t, "varchar(255)", columns[0].Type.String())
	assert.Equal(t, "tinyint", columns[1].Type.String())
	assert.Equal(t, "varchar(6)", columns[2].Type.String())
	assert.Equal(t, "integer", columns[3].Type.String())

	_, ok := binding.Get("missing")
	assert.False(t, ok)
}
