package resolution

import (
	"github.com/conduit-lang/typebind/internal/orm/catalog"
	"github.com/conduit-lang/typebind/internal/orm/schema"
)

// Binding holds the resolutions of one resource, in declaration order
type Binding struct {
	resource    string
	table       string
	resolutions []*Resolution
	byName      map[string]*Resolution
}

func newBinding(res *schema.Resource, resolutions []*Resolution) *Binding {
	byName := make(map[string]*Resolution, len(resolutions))
	for _, r := range resolutions {
		byName[r.attribute] = r
	}
	return &Binding{
		resource:    res.Name,
		table:       res.TableName,
		resolutions: resolutions,
		byName:      byName,
	}
}

// Resource returns the resource name
func (b *Binding) Resource() string { return b.resource }

// Table returns the table the resource is stored in
func (b *Binding) Table() string { return b.table }

// Get returns the resolution of a named attribute
func (b *Binding) Get(attribute string) (*Resolution, bool) {
	r, ok := b.byName[attribute]
	return r, ok
}

// Resolutions returns all resolutions in declaration order
func (b *Binding) Resolutions() []*Resolution {
	out := make([]*Resolution, len(b.resolutions))
	copy(out, b.resolutions)
	return out
}

// Columns returns the column definitions of the resource table
func (b *Binding) Columns() []catalog.Column {
	columns := make([]catalog.Column, len(b.resolutions))
	for i, r := range b.resolutions {
		columns[i] = catalog.Column{Name: r.attribute, Type: r.storeType, Nullable: r.nullable}
	}
	return columns
}

// CreateTableSQL renders the CREATE TABLE statement for the resource
func (b *Binding) CreateTableSQL() (string, error) {
	return catalog.CreateTable(b.table, b.Columns())
}

// Model is the set of bindings produced for a whole schema
type Model struct {
	bindings map[string]*Binding
	order    []string
}

// Get returns the binding of a named resource
func (m *Model) Get(resource string) (*Binding, bool) {
	b, ok := m.bindings[resource]
	return b, ok
}

// Names returns resource names in sorted order
func (m *Model) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of bound resources
func (m *Model) Len() int { return len(m.order) }
