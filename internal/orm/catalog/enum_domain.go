package catalog

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/conduit-lang/typebind/internal/orm/schema"
)

// EnumDomain holds the lookup tables of one enumeration. Ordinals are positional
// (0-based, declaration order) and never supplied by clients.
type EnumDomain struct {
	name      string
	constants []schema.EnumConstant
	byName    map[string]int
	maxLen    int
}

// newEnumDomain validates the constant list and builds the lookup tables
func newEnumDomain(name string, values []string) (*EnumDomain, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: enum %s has no constants", ErrInvalidEnumDescriptor, name)
	}

	d := &EnumDomain{
		name:      name,
		constants: make([]schema.EnumConstant, len(values)),
		byName:    make(map[string]int, len(values)),
	}
	for i, v := range values {
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("%w: enum %s has a blank constant at position %d",
				ErrInvalidEnumDescriptor, name, i)
		}
		if prev, dup := d.byName[v]; dup {
			return nil, fmt.Errorf("%w: enum %s declares %s at positions %d and %d",
				ErrInvalidEnumDescriptor, name, v, prev, i)
		}
		d.constants[i] = schema.EnumConstant{Enum: name, Name: v, Ordinal: i}
		d.byName[v] = i
		if n := utf8.RuneCountInString(v); n > d.maxLen {
			d.maxLen = n
		}
	}
	return d, nil
}

// Name returns the enumeration name
func (d *EnumDomain) Name() string { return d.name }

// Len returns the number of constants
func (d *EnumDomain) Len() int { return len(d.constants) }

// MaxNameLength returns the length of the longest constant name in characters
func (d *EnumDomain) MaxNameLength() int { return d.maxLen }

// Constants returns a copy of the constants in declaration order
func (d *EnumDomain) Constants() []schema.EnumConstant {
	out := make([]schema.EnumConstant, len(d.constants))
	copy(out, d.constants)
	return out
}

// FromOrdinal returns the constant at the given ordinal
func (d *EnumDomain) FromOrdinal(ordinal int) (schema.EnumConstant, bool) {
	if ordinal < 0 || ordinal >= len(d.constants) {
		return schema.EnumConstant{}, false
	}
	return d.constants[ordinal], true
}

// FromName returns the constant with the given name
func (d *EnumDomain) FromName(name string) (schema.EnumConstant, bool) {
	i, ok := d.byName[name]
	if !ok {
		return schema.EnumConstant{}, false
	}
	return d.constants[i], true
}

// OrdinalOf returns the ordinal of c, checking that c belongs to this enumeration
func (d *EnumDomain) OrdinalOf(c schema.EnumConstant) (int, bool) {
	if !d.Contains(c) {
		return 0, false
	}
	return c.Ordinal, true
}

// NameOf returns the name of c, checking that c belongs to this enumeration
func (d *EnumDomain) NameOf(c schema.EnumConstant) (string, bool) {
	if !d.Contains(c) {
		return "", false
	}
	return c.Name, true
}

// Contains reports whether c is one of this enumeration's constants
func (d *EnumDomain) Contains(c schema.EnumConstant) bool {
	if c.Enum != d.name || c.Ordinal < 0 || c.Ordinal >= len(d.constants) {
		return false
	}
	return d.constants[c.Ordinal] == c
}

// key identifies the enumeration by name and constant list for interning
func enumKey(name string, values []string) string {
	return name + "\x00" + strings.Join(values, "\x00")
}
