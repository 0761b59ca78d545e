package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/typebind/internal/orm/catalog"
	"github.com/conduit-lang/typebind/internal/orm/convert"
	"github.com/conduit-lang/typebind/internal/orm/mapping"
	"github.com/conduit-lang/typebind/internal/orm/resolution"
	"github.com/conduit-lang/typebind/internal/orm/sqltypes"
)

const oldMapping = `
resources:
  - name: Ticket
    attributes:
      - name: title
        type: string
        length: 100
      - name: count
        type: bigint
      - name: note
        type: text?
      - name: legacy
        type: int
  - name: Archive
    attributes:
      - name: id
        type: uuid
`

const newMapping = `
resources:
  - name: Ticket
    attributes:
      - name: title
        type: string
        length: 50
      - name: count
        type: int
      - name: note
        type: text
      - name: priority
        type: int?
  - name: Label
    attributes:
      - name: name
        type: text
`

func bindModel(t *testing.T, yaml string) *resolution.Model {
	t.Helper()

	file, err := mapping.Parse([]byte(yaml))
	require.NoError(t, err)
	registry, err := mapping.Collect(file)
	require.NoError(t, err)

	cat := catalog.New()
	converters := convert.NewRegistry(cat)
	require.NoError(t, convert.RegisterStock(converters))

	model, err := resolution.NewBuilder(cat, converters, resolution.Options{}).BindAll(registry)
	require.NoError(t, err)
	return model
}

func TestDiffer_ComputeDiff(t *testing.T) {
	changes := NewDiffer(bindModel(t, oldMapping), bindModel(t, newMapping)).ComputeDiff()

	type summary struct {
		Type     ChangeType
		Resource string
		Column   string
		Breaking bool
		DataLoss bool
	}
	got := make([]summary, len(changes))
	for i, c := range changes {
		got[i] = summary{c.Type, c.Resource, c.Column, c.Breaking, c.DataLoss}
	}

	assert.Equal(t, []summary{
		{ChangeAddResource, "Label", "", false, false},
		{ChangeDropResource, "Archive", "", true, true},
		{ChangeAddColumn, "Ticket", "priority", false, false},
		{ChangeDropColumn, "Ticket", "legacy", true, true},
		{ChangeAlterType, "Ticket", "title", false, true},
		{ChangeAlterType, "Ticket", "count", false, true},
		{ChangeAlterNullability, "Ticket", "note", true, false},
	}, got)

	assert.True(t, HasBreaking(changes))
}

func TestDiffer_NoChanges(t *testing.T) {
	changes := NewDiffer(bindModel(t, newMapping), bindModel(t, newMapping)).ComputeDiff()
	assert.Empty(t, changes)
	assert.False(t, HasBreaking(changes))
	assert.Equal(t, "no_changes", GenerateMigrationName(changes))
}

func TestDiffer_AddRequiredColumnIsBreaking(t *testing.T) {
	before := "resources:\n  - name: A\n    attributes:\n      - name: x\n        type: int\n"
	after := before + "      - name: y\n        type: int\n"

	changes := NewDiffer(bindModel(t, before), bindModel(t, after)).ComputeDiff()
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeAddColumn, changes[0].Type)
	assert.True(t, changes[0].Breaking)
}

func TestCausesDataLoss(t *testing.T) {
	st := func(code sqltypes.Code, length, precision, scale int) *catalog.StoreType {
		return &catalog.StoreType{Code: code, Length: length, Precision: precision, Scale: scale}
	}

	tests := []struct {
		name string
		old  *catalog.StoreType
		new  *catalog.StoreType
		want bool
	}{
		{"widen integer", st(sqltypes.Integer, 0, 0, 0), st(sqltypes.BigInt, 0, 0, 0), false},
		{"narrow integer", st(sqltypes.BigInt, 0, 0, 0), st(sqltypes.SmallInt, 0, 0, 0), true},
		{"double to real", st(sqltypes.Double, 0, 0, 0), st(sqltypes.Real, 0, 0, 0), true},
		{"longer varchar", st(sqltypes.Varchar, 10, 0, 0), st(sqltypes.Varchar, 20, 0, 0), false},
		{"shorter varchar", st(sqltypes.Varchar, 20, 0, 0), st(sqltypes.Varchar, 10, 0, 0), true},
		{"varchar to text", st(sqltypes.Varchar, 20, 0, 0), st(sqltypes.LongVarchar, 0, 0, 0), false},
		{"text to varchar", st(sqltypes.LongVarchar, 0, 0, 0), st(sqltypes.Varchar, 255, 0, 0), true},
		{"smaller precision", st(sqltypes.Numeric, 0, 10, 2), st(sqltypes.Numeric, 0, 8, 2), true},
		{"smaller scale", st(sqltypes.Numeric, 0, 10, 4), st(sqltypes.Numeric, 0, 12, 2), true},
		{"larger precision", st(sqltypes.Numeric, 0, 10, 2), st(sqltypes.Numeric, 0, 12, 2), false},
		{"timestamp zones", st(sqltypes.Timestamp, 0, 0, 0), st(sqltypes.TimestampTZ, 0, 0, 0), false},
		{"timestamp to date", st(sqltypes.TimestampTZ, 0, 0, 0), st(sqltypes.Date, 0, 0, 0), true},
		{"category change", st(sqltypes.Integer, 0, 0, 0), st(sqltypes.Varchar, 20, 0, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, causesDataLoss(tt.old, tt.new))
		})
	}
}

func TestGenerateMigrationName(t *testing.T) {
	changes := NewDiffer(bindModel(t, oldMapping), bindModel(t, newMapping)).ComputeDiff()
	assert.Equal(t,
		"add_label_ticket_priority_and_drop_archive_ticket_legacy_and_alter_ticket_title_ticket_count_ticket_note",
		GenerateMigrationName(changes))

	many := make([]SchemaChange, 4)
	for i := range many {
		many[i] = SchemaChange{Type: ChangeAddResource, Table: "t"}
	}
	assert.Equal(t, "add_4_items", GenerateMigrationName(many))
}

func TestChangeType_String(t *testing.T) {
	assert.Equal(t, "alter_nullability", ChangeAlterNullability.String())
	assert.Equal(t, "unknown", ChangeType(99).String())
}
