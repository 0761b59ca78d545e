package convert

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/conduit-lang/typebind/internal/orm/catalog"
	"github.com/conduit-lang/typebind/internal/orm/schema"
)

// Factory constructs a converter instance
type Factory func() (AttributeConverter, error)

// Registration tells the registry how to build the converter behind a reference.
// DomainType and RelationalType are optional declarations; when set they must match
// the types the constructed converter actually operates on. Enum names the
// enumeration a converter of enum constants serves and is required for one.
type Registration struct {
	Factory        Factory
	DomainType     reflect.Type
	RelationalType reflect.Type
	Enum           string
}

// Registry resolves converter references to descriptors. Each reference is
// constructed at most once, even when many callers ask for it concurrently.
type Registry struct {
	catalog *catalog.Catalog

	mu            sync.RWMutex
	registrations map[string]Registration
	cache         map[string]*Descriptor
	failures      map[string]error

	group       singleflight.Group
	constructed atomic.Int64
}

// NewRegistry creates a new converter registry backed by the given catalog
func NewRegistry(cat *catalog.Catalog) *Registry {
	return &Registry{
		catalog:       cat,
		registrations: make(map[string]Registration),
		cache:         make(map[string]*Descriptor),
		failures:      make(map[string]error),
	}
}

// Register makes a converter reference resolvable
func (r *Registry) Register(ref string, reg Registration) error {
	if ref == "" {
		return fmt.Errorf("converter reference cannot be empty")
	}
	if reg.Factory == nil {
		return fmt.Errorf("converter %s has no factory", ref)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.registrations[ref]; exists {
		return fmt.Errorf("converter %s is already registered", ref)
	}
	r.registrations[ref] = reg
	return nil
}

// RegisterConverter registers an already constructed converter
func (r *Registry) RegisterConverter(ref string, conv AttributeConverter) error {
	return r.Register(ref, Registration{
		Factory: func() (AttributeConverter, error) { return conv, nil },
	})
}

// RegisterEnumConverter registers an already constructed converter for the
// constants of the named enumeration
func (r *Registry) RegisterEnumConverter(ref, enum string, conv AttributeConverter) error {
	return r.Register(ref, Registration{
		Factory: func() (AttributeConverter, error) { return conv, nil },
		Enum:    enum,
	})
}

// IsRegistered reports whether ref can be resolved
func (r *Registry) IsRegistered(ref string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.registrations[ref]
	return ok
}

// Refs returns the registered references in sorted order
func (r *Registry) Refs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	refs := make([]string, 0, len(r.registrations))
	for ref := range r.registrations {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

// Constructed returns how many descriptors the registry has built
func (r *Registry) Constructed() int64 {
	return r.constructed.Load()
}

// Resolve returns the descriptor for ref, constructing it on first use.
// An unregistered ref is not remembered; it resolves once registered.
func (r *Registry) Resolve(ref string) (*Descriptor, error) {
	r.mu.RLock()
	reg, ok := r.registrations[ref]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: converter %s is not registered", ErrConverterConstruction, ref)
	}

	return r.load(ref, func() (*Descriptor, error) {
		return r.construct(ref, reg)
	})
}

// RegisterBuiltin returns the ordinal or named converter for an enum representation
func (r *Registry) RegisterBuiltin(strategy schema.EnumStrategy, enum *catalog.Representation) (*Descriptor, error) {
	if enum == nil || enum.Enum() == nil {
		return nil, fmt.Errorf("%w: built-in converters need an enum representation", ErrConverterConstruction)
	}
	domain := enum.Enum()

	key := fmt.Sprintf("builtin:%s:%p", strategy, enum)
	return r.load(key, func() (*Descriptor, error) {
		d := &Descriptor{
			ref:    fmt.Sprintf("builtin:%s:%s", strategy, domain.Name()),
			domain: enum,
			enum:   domain.Name(),
		}
		switch strategy {
		case schema.StrategyOrdinal:
			d.kind = KindOrdinal
			d.relational = catalog.Int32
			d.converter = &ordinalConverter{domain: domain}
		case schema.StrategyNamed:
			d.kind = KindNamed
			d.relational = catalog.String
			d.converter = &namedConverter{domain: domain}
		default:
			return nil, fmt.Errorf("%w: unknown enum strategy %d", ErrConverterConstruction, strategy)
		}
		return d, nil
	})
}

// load returns the cached descriptor for key or builds it. Concurrent first
// requests share one build through the singleflight group; the cache is checked
// again inside the flight so a late caller never triggers a second build.
func (r *Registry) load(key string, build func() (*Descriptor, error)) (*Descriptor, error) {
	if d, ok, err := r.cached(key); ok {
		return d, err
	}

	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		if d, ok, err := r.cached(key); ok {
			return d, err
		}

		d, err := build()

		r.mu.Lock()
		defer r.mu.Unlock()
		if err != nil {
			r.failures[key] = err
			return nil, err
		}
		r.constructed.Add(1)
		r.cache[key] = d
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Descriptor), nil
}

func (r *Registry) cached(key string) (*Descriptor, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if d, ok := r.cache[key]; ok {
		return d, true, nil
	}
	if err, ok := r.failures[key]; ok {
		return nil, true, err
	}
	return nil, false, nil
}

func (r *Registry) construct(ref string, reg Registration) (*Descriptor, error) {
	conv, err := instantiate(reg.Factory)
	if err != nil {
		return nil, fmt.Errorf("%w: converter %s: %v", ErrConverterConstruction, ref, err)
	}

	domainType, relationalType := conv.DomainType(), conv.RelationalType()
	if reg.DomainType != nil && reg.DomainType != domainType {
		return nil, fmt.Errorf("%w: converter %s is declared for domain type %s but converts %s",
			ErrConverterConstruction, ref, reg.DomainType, domainType)
	}
	if reg.RelationalType != nil && reg.RelationalType != relationalType {
		return nil, fmt.Errorf("%w: converter %s is declared for relational type %s but produces %s",
			ErrConverterConstruction, ref, reg.RelationalType, relationalType)
	}

	domain, err := r.catalog.RepresentationOf(domainType)
	if err != nil {
		return nil, fmt.Errorf("%w: converter %s domain side: %v", ErrConverterConstruction, ref, err)
	}
	relational, err := r.catalog.RepresentationOf(relationalType)
	if err != nil {
		return nil, fmt.Errorf("%w: converter %s relational side: %v", ErrConverterConstruction, ref, err)
	}
	if domain == relational {
		return nil, fmt.Errorf("%w: converter %s does not change representation (%s)",
			ErrConverterConstruction, ref, domain)
	}
	switch {
	case domain.Kind() == catalog.KindEnum && reg.Enum == "":
		return nil, fmt.Errorf("%w: converter %s converts enum constants but names no enumeration",
			ErrConverterConstruction, ref)
	case domain.Kind() != catalog.KindEnum && reg.Enum != "":
		return nil, fmt.Errorf("%w: converter %s is registered for enum %s but converts %s",
			ErrConverterConstruction, ref, reg.Enum, domain)
	}

	return &Descriptor{
		ref:        ref,
		enum:       reg.Enum,
		kind:       KindCustom,
		domain:     domain,
		relational: relational,
		converter:  conv,
	}, nil
}

// instantiate runs a factory, turning panics and nil results into errors
func instantiate(factory Factory) (conv AttributeConverter, err error) {
	defer func() {
		if p := recover(); p != nil {
			conv, err = nil, fmt.Errorf("factory panicked: %v", p)
		}
	}()

	conv, err = factory()
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, fmt.Errorf("factory returned no converter")
	}
	if conv.DomainType() == nil || conv.RelationalType() == nil {
		return nil, fmt.Errorf("converter does not declare its types")
	}
	return conv, nil
}
