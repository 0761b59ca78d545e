package migrate

import (
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/conduit-lang/typebind/internal/orm/catalog"
	"github.com/conduit-lang/typebind/internal/orm/resolution"
)

// Generator generates migration SQL from the changes between two resolved models
type Generator struct {
	now func() time.Time
}

// NewGenerator creates a new migration generator
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// GenerateMigration creates a migration that moves the store from old to new.
// It returns nil when the models produce the same tables.
func (g *Generator) GenerateMigration(old, new *resolution.Model) (*Migration, error) {
	changes := NewDiffer(old, new).ComputeDiff()
	if len(changes) == 0 {
		return nil, nil
	}

	migration := &Migration{
		Version: g.now().UnixMilli(), // Use millisecond precision to avoid collisions
		Name:    GenerateMigrationName(changes),
		From:    Fingerprint(old),
		To:      Fingerprint(new),
	}

	for _, change := range changes {
		if change.Breaking {
			migration.Breaking = true
		}
		if change.DataLoss {
			migration.DataLoss = true
		}
	}

	upSQL, err := g.generateUpSQL(changes)
	if err != nil {
		return nil, fmt.Errorf("generating up SQL: %w", err)
	}
	migration.Up = upSQL

	downSQL, err := g.generateDownSQL(changes)
	if err != nil {
		return nil, fmt.Errorf("generating down SQL: %w", err)
	}
	migration.Down = downSQL

	return migration, nil
}

// generateUpSQL generates forward migration SQL
func (g *Generator) generateUpSQL(changes []SchemaChange) (string, error) {
	var sql strings.Builder
	for _, change := range changes {
		stmt, err := g.forward(change)
		if err != nil {
			return "", err
		}
		sql.WriteString(stmt)
		sql.WriteString("\n")
	}
	return sql.String(), nil
}

// generateDownSQL generates reverse migration SQL, undoing changes last first
func (g *Generator) generateDownSQL(changes []SchemaChange) (string, error) {
	var sql strings.Builder
	for i := len(changes) - 1; i >= 0; i-- {
		stmt, err := g.forward(invert(changes[i]))
		if err != nil {
			return "", err
		}
		sql.WriteString(stmt)
		sql.WriteString("\n")
	}
	return sql.String(), nil
}

// invert returns the change that undoes c
func invert(c SchemaChange) SchemaChange {
	inv := c
	inv.Old, inv.New = c.New, c.Old
	inv.OldBinding, inv.NewBinding = c.NewBinding, c.OldBinding

	switch c.Type {
	case ChangeAddResource:
		inv.Type = ChangeDropResource
	case ChangeDropResource:
		inv.Type = ChangeAddResource
	case ChangeAddColumn:
		inv.Type = ChangeDropColumn
	case ChangeDropColumn:
		inv.Type = ChangeAddColumn
	}
	return inv
}

// forward renders the SQL for one change
func (g *Generator) forward(change SchemaChange) (string, error) {
	table := pq.QuoteIdentifier(change.Table)

	switch change.Type {
	case ChangeAddResource:
		ddl, err := change.NewBinding.CreateTableSQL()
		if err != nil {
			return "", fmt.Errorf("resource %s: %w", change.Resource, err)
		}
		return fmt.Sprintf("-- Add resource: %s\n%s\n", change.Resource, ddl), nil

	case ChangeDropResource:
		return fmt.Sprintf("-- Drop resource: %s\nDROP TABLE IF EXISTS %s;\n", change.Resource, table), nil

	case ChangeAddColumn:
		def, err := columnDefinition(change.New)
		if err != nil {
			return "", fmt.Errorf("%s.%s: %w", change.Resource, change.Column, err)
		}
		return fmt.Sprintf("-- Add column: %s.%s\nALTER TABLE %s ADD COLUMN %s;\n",
			change.Resource, change.Column, table, def), nil

	case ChangeDropColumn:
		return fmt.Sprintf("-- Drop column: %s.%s\nALTER TABLE %s DROP COLUMN IF EXISTS %s;\n",
			change.Resource, change.Column, table, pq.QuoteIdentifier(change.Column)), nil

	case ChangeAlterType:
		ddl, err := change.New.Type.DDL()
		if err != nil {
			return "", fmt.Errorf("%s.%s: %w", change.Resource, change.Column, err)
		}
		column := pq.QuoteIdentifier(change.Column)
		return fmt.Sprintf("-- Change type: %s.%s %s -> %s\nALTER TABLE %s ALTER COLUMN %s TYPE %s USING %s::%s;\n",
			change.Resource, change.Column, change.Old.Type, change.New.Type,
			table, column, ddl, column, ddl), nil

	case ChangeAlterNullability:
		action := "DROP NOT NULL"
		if !change.New.Nullable {
			action = "SET NOT NULL"
		}
		return fmt.Sprintf("-- Change nullability: %s.%s\nALTER TABLE %s ALTER COLUMN %s %s;\n",
			change.Resource, change.Column, table, pq.QuoteIdentifier(change.Column), action), nil

	default:
		return "", fmt.Errorf("unsupported change type: %s", change.Type)
	}
}

func columnDefinition(col *catalog.Column) (string, error) {
	ddl, err := col.Type.DDL()
	if err != nil {
		return "", err
	}
	null := "NOT NULL"
	if col.Nullable {
		null = "NULL"
	}
	return fmt.Sprintf("%s %s %s", pq.QuoteIdentifier(col.Name), ddl, null), nil
}
