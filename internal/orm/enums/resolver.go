// Package enums decides how enum-typed attributes are represented in the store:
// by ordinal, by name, or through an explicit custom converter.
package enums

import (
	"fmt"

	"github.com/conduit-lang/typebind/internal/orm/catalog"
	"github.com/conduit-lang/typebind/internal/orm/convert"
	"github.com/conduit-lang/typebind/internal/orm/schema"
	"github.com/conduit-lang/typebind/internal/orm/sqltypes"
)

// MaxTinyOrdinals is the number of constants whose ordinals fit a TINYINT
const MaxTinyOrdinals = 128

// Outcome is the representation chosen for an enum attribute
type Outcome struct {
	// Strategy is meaningless when Custom is true
	Strategy schema.EnumStrategy
	Custom   bool

	Converter  *convert.Descriptor
	StoreType  *catalog.StoreType
	Relational *catalog.Representation
	Domain     *catalog.Representation
}

// Resolver resolves the representation strategy of enum attributes
type Resolver struct {
	catalog  *catalog.Catalog
	registry *convert.Registry
}

// NewResolver creates a new enum strategy resolver
func NewResolver(cat *catalog.Catalog, registry *convert.Registry) *Resolver {
	return &Resolver{
		catalog:  cat,
		registry: registry,
	}
}

// SelectStrategy picks the strategy for an attribute without an explicit converter:
// the attribute's hint if present, otherwise the supplied default
func SelectStrategy(attr *schema.Attribute, def schema.EnumStrategy) schema.EnumStrategy {
	if attr.StrategyHint != nil {
		return *attr.StrategyHint
	}
	return def
}

// Resolve decides the representation of an enum attribute. An explicit converter
// always wins; otherwise the strategy comes from SelectStrategy.
func (r *Resolver) Resolve(attr *schema.Attribute, def schema.EnumStrategy) (*Outcome, error) {
	if !attr.Type.IsEnum() {
		return nil, fmt.Errorf("attribute %s is not an enum", attr.ID())
	}

	domain, err := r.catalog.EnumRepresentation(attr.Type.EnumName, attr.Type.EnumValues)
	if err != nil {
		return nil, err
	}

	if attr.HasConverter() {
		return r.resolveCustom(attr, domain)
	}

	strategy := SelectStrategy(attr, def)
	conv, err := r.registry.RegisterBuiltin(strategy, domain)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Strategy:   strategy,
		Converter:  conv,
		Relational: conv.Relational(),
		Domain:     domain,
	}

	switch strategy {
	case schema.StrategyOrdinal:
		code := sqltypes.TinyInt
		if domain.Enum().Len() > MaxTinyOrdinals {
			code = sqltypes.SmallInt
		}
		out.StoreType = r.catalog.StoreType(code, schema.ColumnSize{})

	case schema.StrategyNamed:
		longest := domain.Enum().MaxNameLength()
		length := longest
		if hint := attr.Size.Length; hint != nil {
			if *hint < longest {
				return nil, fmt.Errorf("%w: column length %d is shorter than enum %s constant names (%d)",
					catalog.ErrConflictingTypeMapping, *hint, domain.Enum().Name(), longest)
			}
			length = *hint
		}
		out.StoreType = r.catalog.StoreType(sqltypes.Varchar, schema.ColumnSize{Length: &length})
	}

	return out, nil
}

func (r *Resolver) resolveCustom(attr *schema.Attribute, domain *catalog.Representation) (*Outcome, error) {
	conv, err := r.registry.Resolve(attr.ConverterRef)
	if err != nil {
		return nil, err
	}
	if conv.Domain().Kind() != catalog.KindEnum {
		return nil, fmt.Errorf("%w: converter %s converts %s, not enum %s",
			catalog.ErrConflictingTypeMapping, conv.Ref(), conv.Domain(), domain.Enum().Name())
	}
	if conv.Enum() != domain.Enum().Name() {
		return nil, fmt.Errorf("%w: converter %s serves enum %s, not %s",
			convert.ErrConverterConstruction, conv.Ref(), conv.Enum(), domain.Enum().Name())
	}

	return &Outcome{
		Custom:     true,
		Converter:  conv,
		StoreType:  r.catalog.StoreType(conv.Relational().DefaultCode(), attr.Size),
		Relational: conv.Relational(),
		Domain:     domain,
	}, nil
}
