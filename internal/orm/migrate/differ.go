package migrate

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/typebind/internal/orm/catalog"
	"github.com/conduit-lang/typebind/internal/orm/resolution"
	"github.com/conduit-lang/typebind/internal/orm/sqltypes"
)

// ChangeType represents the type of schema change
type ChangeType int

const (
	ChangeAddResource ChangeType = iota
	ChangeDropResource
	ChangeAddColumn
	ChangeDropColumn
	ChangeAlterType
	ChangeAlterNullability
)

// String returns the string representation of the change type
func (c ChangeType) String() string {
	switch c {
	case ChangeAddResource:
		return "add_resource"
	case ChangeDropResource:
		return "drop_resource"
	case ChangeAddColumn:
		return "add_column"
	case ChangeDropColumn:
		return "drop_column"
	case ChangeAlterType:
		return "alter_type"
	case ChangeAlterNullability:
		return "alter_nullability"
	default:
		return "unknown"
	}
}

// SchemaChange represents a detected change between two resolved models.
// Old and New are set for column changes; OldBinding and NewBinding for
// resource changes.
type SchemaChange struct {
	Type       ChangeType
	Resource   string
	Table      string
	Column     string
	Old        *catalog.Column
	New        *catalog.Column
	OldBinding *resolution.Binding
	NewBinding *resolution.Binding
	Breaking   bool
	DataLoss   bool
}

// Differ compares the bindings of two resolved models
type Differ struct {
	old *resolution.Model
	new *resolution.Model
}

// NewDiffer creates a new model differ
func NewDiffer(old, new *resolution.Model) *Differ {
	return &Differ{old: old, new: new}
}

// ComputeDiff computes all changes between the old and new model. Resources
// are visited by name and columns in declaration order.
func (d *Differ) ComputeDiff() []SchemaChange {
	var changes []SchemaChange

	oldNames := d.old.Names()
	newNames := d.new.Names()

	for _, name := range setDifference(newNames, oldNames) {
		binding, _ := d.new.Get(name)
		changes = append(changes, SchemaChange{
			Type:       ChangeAddResource,
			Resource:   name,
			Table:      binding.Table(),
			NewBinding: binding,
		})
	}

	for _, name := range setDifference(oldNames, newNames) {
		binding, _ := d.old.Get(name)
		changes = append(changes, SchemaChange{
			Type:       ChangeDropResource,
			Resource:   name,
			Table:      binding.Table(),
			OldBinding: binding,
			Breaking:   true,
			DataLoss:   true,
		})
	}

	for _, name := range setIntersection(oldNames, newNames) {
		oldBinding, _ := d.old.Get(name)
		newBinding, _ := d.new.Get(name)
		changes = append(changes, d.diffColumns(name, oldBinding, newBinding)...)
	}

	return changes
}

// diffColumns compares the columns of one resource
func (d *Differ) diffColumns(resource string, oldBinding, newBinding *resolution.Binding) []SchemaChange {
	var changes []SchemaChange

	oldCols := columnsByName(oldBinding)
	newCols := columnsByName(newBinding)
	table := newBinding.Table()

	for _, col := range newBinding.Columns() {
		if _, ok := oldCols[col.Name]; ok {
			continue
		}
		added := col
		changes = append(changes, SchemaChange{
			Type:     ChangeAddColumn,
			Resource: resource,
			Table:    table,
			Column:   col.Name,
			New:      &added,
			// existing rows have no value for a NOT NULL column
			Breaking: !col.Nullable,
		})
	}

	for _, col := range oldBinding.Columns() {
		if _, ok := newCols[col.Name]; ok {
			continue
		}
		dropped := col
		changes = append(changes, SchemaChange{
			Type:     ChangeDropColumn,
			Resource: resource,
			Table:    table,
			Column:   col.Name,
			Old:      &dropped,
			Breaking: true,
			DataLoss: true,
		})
	}

	for _, col := range newBinding.Columns() {
		old, ok := oldCols[col.Name]
		if !ok {
			continue
		}
		current := col

		if old.Type.String() != col.Type.String() {
			changes = append(changes, SchemaChange{
				Type:     ChangeAlterType,
				Resource: resource,
				Table:    table,
				Column:   col.Name,
				Old:      old,
				New:      &current,
				Breaking: !old.Type.Code.Compatible(col.Type.Code),
				DataLoss: causesDataLoss(old.Type, col.Type),
			})
		}

		if old.Nullable != col.Nullable {
			changes = append(changes, SchemaChange{
				Type:     ChangeAlterNullability,
				Resource: resource,
				Table:    table,
				Column:   col.Name,
				Old:      old,
				New:      &current,
				Breaking: !col.Nullable,
			})
		}
	}

	return changes
}

// causesDataLoss determines if a store type change may lose stored values
func causesDataLoss(old, new *catalog.StoreType) bool {
	if !old.Code.Compatible(new.Code) {
		return true
	}

	switch old.Category() {
	case sqltypes.CategoryInteger, sqltypes.CategoryFloat:
		// codes of one category are declared narrowest first
		return new.Code < old.Code
	case sqltypes.CategoryExactNumeric:
		return new.Precision > 0 && (old.Precision == 0 || new.Precision < old.Precision || new.Scale < old.Scale)
	case sqltypes.CategoryString, sqltypes.CategoryBinary:
		if !new.Code.Sized() {
			return false
		}
		if !old.Code.Sized() {
			return true
		}
		return new.Length > 0 && (old.Length == 0 || new.Length < old.Length)
	case sqltypes.CategoryTemporal:
		return old.Code != new.Code && !(isTimestamp(old.Code) && isTimestamp(new.Code))
	default:
		return false
	}
}

func isTimestamp(c sqltypes.Code) bool {
	return c == sqltypes.Timestamp || c == sqltypes.TimestampTZ
}

func columnsByName(b *resolution.Binding) map[string]*catalog.Column {
	cols := b.Columns()
	m := make(map[string]*catalog.Column, len(cols))
	for i := range cols {
		m[cols[i].Name] = &cols[i]
	}
	return m
}

// setDifference returns the elements of a not in b, keeping the order of a
func setDifference(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, s := range b {
		inB[s] = true
	}
	var result []string
	for _, s := range a {
		if !inB[s] {
			result = append(result, s)
		}
	}
	return result
}

// setIntersection returns the elements of a also in b, keeping the order of a
func setIntersection(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, s := range b {
		inB[s] = true
	}
	var result []string
	for _, s := range a {
		if inB[s] {
			result = append(result, s)
		}
	}
	return result
}

// HasBreaking reports whether any change requires manual review
func HasBreaking(changes []SchemaChange) bool {
	for _, c := range changes {
		if c.Breaking {
			return true
		}
	}
	return false
}

// GenerateMigrationName creates a descriptive name for the migration
func GenerateMigrationName(changes []SchemaChange) string {
	if len(changes) == 0 {
		return "no_changes"
	}

	var added, dropped, modified []string
	for _, change := range changes {
		switch change.Type {
		case ChangeAddResource:
			added = append(added, change.Table)
		case ChangeDropResource:
			dropped = append(dropped, change.Table)
		case ChangeAddColumn:
			added = append(added, change.Table+"_"+change.Column)
		case ChangeDropColumn:
			dropped = append(dropped, change.Table+"_"+change.Column)
		case ChangeAlterType, ChangeAlterNullability:
			name := change.Table + "_" + change.Column
			if len(modified) == 0 || modified[len(modified)-1] != name {
				modified = append(modified, name)
			}
		}
	}

	var parts []string
	parts = appendNamePart(parts, "add", added)
	parts = appendNamePart(parts, "drop", dropped)
	parts = appendNamePart(parts, "alter", modified)

	return strings.ToLower(strings.Join(parts, "_and_"))
}

func appendNamePart(parts []string, verb string, names []string) []string {
	switch {
	case len(names) == 0:
		return parts
	case len(names) <= 3:
		return append(parts, verb+"_"+strings.Join(names, "_"))
	default:
		return append(parts, fmt.Sprintf("%s_%d_items", verb, len(names)))
	}
}
