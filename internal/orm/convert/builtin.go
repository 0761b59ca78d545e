package convert

import (
	"fmt"
	"math"
	"reflect"

	"github.com/spf13/cast"

	"github.com/conduit-lang/typebind/internal/orm/catalog"
	"github.com/conduit-lang/typebind/internal/orm/schema"
)

var (
	int32Type  = reflect.TypeOf(int32(0))
	stringType = reflect.TypeOf("")
)

// ordinalConverter stores an enum constant as its 0-based declaration position
type ordinalConverter struct {
	domain *catalog.EnumDomain
}

func (c *ordinalConverter) DomainType() reflect.Type     { return catalog.EnumConstantType }
func (c *ordinalConverter) RelationalType() reflect.Type { return int32Type }

func (c *ordinalConverter) ToRelational(v any) (any, error) {
	constant, err := asConstant(v)
	if err != nil {
		return nil, err
	}
	ordinal, ok := c.domain.OrdinalOf(constant)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a constant of enum %s", ErrConversion, constant.Name, c.domain.Name())
	}
	return int32(ordinal), nil
}

func (c *ordinalConverter) ToDomain(v any) (any, error) {
	n, err := toInt64(v)
	if err != nil {
		return nil, err
	}
	if n < 0 || n > math.MaxInt32 {
		return nil, fmt.Errorf("%w: ordinal %d out of range for enum %s", ErrConversion, n, c.domain.Name())
	}
	constant, ok := c.domain.FromOrdinal(int(n))
	if !ok {
		return nil, fmt.Errorf("%w: ordinal %d out of range for enum %s", ErrConversion, n, c.domain.Name())
	}
	return constant, nil
}

// namedConverter stores an enum constant as its name
type namedConverter struct {
	domain *catalog.EnumDomain
}

func (c *namedConverter) DomainType() reflect.Type     { return catalog.EnumConstantType }
func (c *namedConverter) RelationalType() reflect.Type { return stringType }

func (c *namedConverter) ToRelational(v any) (any, error) {
	constant, err := asConstant(v)
	if err != nil {
		return nil, err
	}
	name, ok := c.domain.NameOf(constant)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a constant of enum %s", ErrConversion, constant.Name, c.domain.Name())
	}
	return name, nil
}

func (c *namedConverter) ToDomain(v any) (any, error) {
	name, err := cast.ToStringE(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	constant, ok := c.domain.FromName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a constant of enum %s", ErrConversion, name, c.domain.Name())
	}
	return constant, nil
}

func asConstant(v any) (schema.EnumConstant, error) {
	switch c := v.(type) {
	case schema.EnumConstant:
		return c, nil
	case *schema.EnumConstant:
		if c != nil {
			return *c, nil
		}
	}
	return schema.EnumConstant{}, fmt.Errorf("%w: %T is not an enum constant", ErrConversion, v)
}
