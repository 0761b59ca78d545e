package schema

import (
	"fmt"

	utilstrings "github.com/conduit-lang/typebind/internal/util/strings"
)

// Resource groups the attributes of one mapped domain record in declaration order
type Resource struct {
	Name       string
	TableName  string
	Attributes []*Attribute
}

// NewResource creates a new Resource with a snake_case table name
func NewResource(name string) *Resource {
	return &Resource{
		Name:       name,
		TableName:  utilstrings.ToSnakeCase(name),
		Attributes: make([]*Attribute, 0),
	}
}

// Add appends an attribute and stamps it with the resource name
func (r *Resource) Add(attr *Attribute) *Resource {
	attr.Resource = r.Name
	r.Attributes = append(r.Attributes, attr)
	return r
}

// Attribute returns the attribute with the given name
func (r *Resource) Attribute(name string) (*Attribute, bool) {
	for _, attr := range r.Attributes {
		if attr.Name == name {
			return attr, true
		}
	}
	return nil, false
}

// checkNames ensures attribute names are present and unique. Type consistency is
// left to resolution.
func (r *Resource) checkNames() error {
	seen := make(map[string]struct{}, len(r.Attributes))
	for i, attr := range r.Attributes {
		if attr == nil || attr.Name == "" {
			return fmt.Errorf("resource %s: attribute #%d has no name", r.Name, i)
		}
		if _, dup := seen[attr.Name]; dup {
			return fmt.Errorf("resource %s: duplicate attribute %s", r.Name, attr.Name)
		}
		seen[attr.Name] = struct{}{}
	}
	return nil
}
