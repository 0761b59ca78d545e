package resolution

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/conduit-lang/typebind/internal/orm/catalog"
	"github.com/conduit-lang/typebind/internal/orm/convert"
	"github.com/conduit-lang/typebind/internal/orm/enums"
	"github.com/conduit-lang/typebind/internal/orm/schema"
	"github.com/conduit-lang/typebind/internal/orm/sqltypes"
)

// DefaultConcurrency is the number of attributes resolved in parallel per resource
const DefaultConcurrency = 8

// Options configures a Builder. The zero value resolves enums by ordinal.
type Options struct {
	// DefaultEnumStrategy applies to enums with neither a converter nor a hint
	DefaultEnumStrategy schema.EnumStrategy

	// Concurrency bounds parallel attribute resolution; <= 0 means DefaultConcurrency
	Concurrency int

	Logger *zap.Logger
}

// Builder assembles Resolutions from attribute metadata
type Builder struct {
	catalog  *catalog.Catalog
	registry *convert.Registry
	enums    *enums.Resolver
	opts     Options
	logger   *zap.Logger
}

// NewBuilder creates a new resolution builder
func NewBuilder(cat *catalog.Catalog, registry *convert.Registry, opts Options) *Builder {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Builder{
		catalog:  cat,
		registry: registry,
		enums:    enums.NewResolver(cat, registry),
		opts:     opts,
		logger:   logger,
	}
}

// Option adjusts a single Resolve or Bind call
type Option func(*settings)

type settings struct {
	enumStrategy schema.EnumStrategy
}

// WithDefaultEnumStrategy overrides the configured default enum strategy for one
// call, e.g. for a schema that declares its own default
func WithDefaultEnumStrategy(s schema.EnumStrategy) Option {
	return func(st *settings) {
		st.enumStrategy = s
	}
}

func (b *Builder) settings(opts []Option) settings {
	st := settings{enumStrategy: b.opts.DefaultEnumStrategy}
	for _, opt := range opts {
		opt(&st)
	}
	return st
}

// Resolve resolves a single attribute. Failures are returned as *AttributeError.
func (b *Builder) Resolve(attr *schema.Attribute, opts ...Option) (*Resolution, error) {
	return b.resolve(attr, b.settings(opts))
}

func (b *Builder) resolve(attr *schema.Attribute, st settings) (*Resolution, error) {
	r, err := b.derive(attr, st)
	if err != nil {
		return nil, &AttributeError{Resource: attr.Resource, Attribute: attr.Name, Err: err}
	}

	b.logger.Debug("resolved attribute",
		zap.String("attribute", attr.ID()),
		zap.Stringer("store_type", r.storeType),
		zap.Stringer("domain", r.domain),
		zap.Stringer("relational", r.relational),
		zap.Bool("converted", r.converter != nil),
	)
	return r, nil
}

// derive runs the resolution steps for one attribute
func (b *Builder) derive(attr *schema.Attribute, st settings) (*Resolution, error) {
	if attr.Type == nil {
		return nil, fmt.Errorf("attribute has no declared type")
	}

	r := &Resolution{
		resource:  attr.Resource,
		attribute: attr.Name,
		nullable:  attr.Type.Nullable,
	}

	switch {
	case attr.Type.IsEnum():
		out, err := b.enums.Resolve(attr, st.enumStrategy)
		if err != nil {
			return nil, err
		}
		r.storeType = out.StoreType
		r.relational = out.Relational
		r.domain = out.Domain
		r.converter = out.Converter
		if !out.Custom {
			r.strategy = out.Strategy
			r.hasStrategy = true
		}

	case attr.HasConverter():
		conv, err := b.registry.Resolve(attr.ConverterRef)
		if err != nil {
			return nil, err
		}
		declared, err := b.catalog.DomainRepresentation(attr.Type)
		if err != nil {
			return nil, err
		}
		if conv.Domain() != declared {
			return nil, fmt.Errorf("%w: converter %s converts %s but the attribute is declared %s",
				ErrConflictingTypeMapping, conv.Ref(), conv.Domain(), attr.Type.BaseType)
		}
		r.storeType = b.catalog.StoreType(conv.Relational().DefaultCode(), attr.Size)
		r.relational = conv.Relational()
		r.domain = conv.Domain()
		r.converter = conv

	default:
		storeType, err := b.catalog.StoreTypeFor(attr.Type, attr.Size)
		if err != nil {
			return nil, err
		}
		rep, err := b.catalog.DomainRepresentation(attr.Type)
		if err != nil {
			return nil, err
		}
		r.storeType = storeType
		r.relational = rep
		r.domain = rep
	}

	if override := attr.StoreTypeOverride; override != nil {
		if !override.Compatible(r.storeType.Code) {
			return nil, fmt.Errorf("%w: store type override %s is incompatible with derived type %s",
				ErrConflictingTypeMapping, *override, r.storeType)
		}
		if r.hasStrategy && r.strategy == schema.StrategyOrdinal && !ordinalFits(*override, r.domain.Enum()) {
			return nil, fmt.Errorf("%w: store type override %s cannot hold the ordinals of enum %s",
				ErrConflictingTypeMapping, *override, r.domain.Enum().Name())
		}
		r.storeType = b.catalog.StoreType(*override, sizeOf(r.storeType))
	}

	if (r.converter != nil) != (r.relational != r.domain) {
		return nil, fmt.Errorf("converter presence disagrees with representations %s/%s", r.domain, r.relational)
	}

	r.legacy = newLegacy(r)
	return r, nil
}

// ordinalFits reports whether code is a small integer wide enough for every
// ordinal of enum
func ordinalFits(code sqltypes.Code, enum *catalog.EnumDomain) bool {
	switch code {
	case sqltypes.TinyInt:
		return enum.Len() <= enums.MaxTinyOrdinals
	case sqltypes.SmallInt:
		return true
	default:
		return false
	}
}

// sizeOf turns a store type's size fields back into a size hint
func sizeOf(st *catalog.StoreType) schema.ColumnSize {
	var size schema.ColumnSize
	if st.Length > 0 {
		n := st.Length
		size.Length = &n
	}
	if st.Precision > 0 {
		p, s := st.Precision, st.Scale
		size.Precision, size.Scale = &p, &s
	}
	return size
}

// BindResource resolves every attribute of a resource concurrently. Either all
// attributes resolve and a Binding is returned, or a *BindError lists every
// attribute that failed.
func (b *Builder) BindResource(res *schema.Resource, opts ...Option) (*Binding, error) {
	st := b.settings(opts)
	start := time.Now()

	resolved := make([]*Resolution, len(res.Attributes))
	failures := make([]*AttributeError, len(res.Attributes))

	var g errgroup.Group
	g.SetLimit(b.opts.Concurrency)
	for i, attr := range res.Attributes {
		i, attr := i, attr
		g.Go(func() error {
			if attr.Resource == "" {
				attr = withResource(attr, res.Name)
			}
			r, err := b.resolve(attr, st)
			if err != nil {
				failures[i] = err.(*AttributeError)
				return nil
			}
			resolved[i] = r
			return nil
		})
	}
	_ = g.Wait()

	bindErr := &BindError{Resource: res.Name}
	for _, f := range failures {
		if f != nil {
			bindErr.Errors = append(bindErr.Errors, f)
		}
	}
	if len(bindErr.Errors) > 0 {
		b.logger.Error("resource binding failed",
			zap.String("resource", res.Name),
			zap.Int("failed", len(bindErr.Errors)),
			zap.Error(bindErr),
		)
		return nil, bindErr
	}

	b.logger.Info("bound resource",
		zap.String("resource", res.Name),
		zap.Int("attributes", len(resolved)),
		zap.Duration("took", time.Since(start)),
	)
	return newBinding(res, resolved), nil
}

// withResource copies attr so resolution can report the owning resource without
// writing to collector-owned metadata
func withResource(attr *schema.Attribute, resource string) *schema.Attribute {
	cp := *attr
	cp.Resource = resource
	return &cp
}

// BindAll binds every resource in the registry. Errors from all resources are
// combined, so one pass reports every failed attribute.
func (b *Builder) BindAll(registry *schema.Registry, opts ...Option) (*Model, error) {
	model := &Model{bindings: make(map[string]*Binding)}

	var errs error
	for _, name := range registry.List() {
		res, _ := registry.Get(name)
		binding, err := b.BindResource(res, opts...)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		model.bindings[name] = binding
		model.order = append(model.order, name)
	}

	if errs != nil {
		return nil, errs
	}
	return model, nil
}
