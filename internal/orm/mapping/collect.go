package mapping

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/typebind/internal/orm/schema"
	"github.com/conduit-lang/typebind/internal/orm/sqltypes"
)

// Collect converts a parsed mapping file into registered resources. It only checks
// that names and type words are well formed; type consistency is left to binding.
func Collect(f *File) (*schema.Registry, error) {
	registry := schema.NewRegistry()

	for i, rm := range f.Resources {
		if rm.Name == "" {
			return nil, fmt.Errorf("resource #%d has no name", i)
		}

		res := schema.NewResource(rm.Name)
		if rm.Table != "" {
			res.TableName = rm.Table
		}

		for _, am := range rm.Attributes {
			attr, err := collectAttribute(f, am)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", rm.Name, am.Name, err)
			}
			res.Add(attr)
		}

		if err := registry.Register(res); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// DefaultStrategy returns the file-level enum strategy, if one is declared
func DefaultStrategy(f *File) (schema.EnumStrategy, bool, error) {
	if f.DefaultEnumStrategy == "" {
		return 0, false, nil
	}
	s, err := schema.ParseEnumStrategy(f.DefaultEnumStrategy)
	if err != nil {
		return 0, false, err
	}
	return s, true, nil
}

func collectAttribute(f *File, am AttributeMapping) (*schema.Attribute, error) {
	spec, err := parseType(am.Type)
	if err != nil {
		return nil, err
	}

	if spec.IsEnum() {
		values, ok := f.Enums[am.Enum]
		if !ok {
			return nil, fmt.Errorf("enum %q is not declared", am.Enum)
		}
		spec.EnumName = am.Enum
		spec.EnumValues = values
	}

	attr := &schema.Attribute{
		Name:         am.Name,
		Type:         spec,
		ConverterRef: am.Converter,
		Size: schema.ColumnSize{
			Length:    am.Length,
			Precision: am.Precision,
			Scale:     am.Scale,
		},
	}

	if am.Strategy != "" {
		s, err := schema.ParseEnumStrategy(am.Strategy)
		if err != nil {
			return nil, err
		}
		attr.StrategyHint = &s
	}

	if am.StoreType != "" {
		code, err := sqltypes.ParseCode(am.StoreType)
		if err != nil {
			return nil, err
		}
		attr.StoreTypeOverride = &code
	}

	return attr, nil
}

// parseType parses "string!", "int?" or a bare type word (required)
func parseType(s string) (*schema.TypeSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("missing type")
	}

	nullable := false
	switch {
	case strings.HasSuffix(s, "?"):
		nullable = true
		s = strings.TrimSuffix(s, "?")
	case strings.HasSuffix(s, "!"):
		s = strings.TrimSuffix(s, "!")
	}

	base, err := schema.ParsePrimitiveType(strings.ToLower(s))
	if err != nil {
		return nil, err
	}
	return &schema.TypeSpec{BaseType: base, Nullable: nullable}, nil
}
