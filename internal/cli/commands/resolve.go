package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/conduit-lang/typebind/internal/cli/config"
	"github.com/conduit-lang/typebind/internal/cli/ui"
	"github.com/conduit-lang/typebind/internal/orm/catalog"
	"github.com/conduit-lang/typebind/internal/orm/convert"
	"github.com/conduit-lang/typebind/internal/orm/mapping"
	"github.com/conduit-lang/typebind/internal/orm/resolution"
	"github.com/conduit-lang/typebind/internal/orm/schema"
)

var (
	resolveDump bool
	resolveDDL  bool
)

// NewResolveCommand creates the resolve command
func NewResolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <mapping.yaml>",
		Short: "Resolve the attribute types of a mapping file",
		Long: `Resolve every attribute declared in a YAML mapping file and print the
store type, representations and converter chosen for each one.

Every attribute that fails to resolve is reported, not only the first one.

Examples:
  typebind resolve mapping.yaml            # Print one table per resource
  typebind resolve mapping.yaml --ddl      # Also print CREATE TABLE statements
  typebind resolve mapping.yaml --dump     # Dump the full resolutions`,
		Args: cobra.ExactArgs(1),
		RunE: runResolve,
	}

	cmd.Flags().BoolVar(&resolveDump, "dump", false, "Dump every resolution in full")
	cmd.Flags().BoolVar(&resolveDDL, "ddl", false, "Print CREATE TABLE statements")

	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	cfg, logger, err := setup(errOut)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	model, err := bindMappingFile(errOut, cfg, logger, args[0])
	if err != nil || model.Len() == 0 {
		return err
	}

	for _, name := range model.Names() {
		binding, _ := model.Get(name)
		if err := printBinding(out, binding); err != nil {
			return err
		}
	}

	ui.WriteSuccess(out, fmt.Sprintf("Resolved %d resources", model.Len()), noColor)
	return nil
}

// setup loads the configuration and builds the logger
func setup(errOut io.Writer) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprint(errOut, ui.ConfigError(err.Error(), noColor))
		return nil, nil, err
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

// bindMappingFile loads a mapping file and binds every resource it declares.
// Binding failures are reported to errOut before the error is returned.
func bindMappingFile(errOut io.Writer, cfg *config.Config, logger *zap.Logger, path string) (*resolution.Model, error) {
	file, err := mapping.LoadFile(path)
	if err != nil {
		return nil, err
	}
	registry, err := mapping.Collect(file)
	if err != nil {
		return nil, fmt.Errorf("invalid mapping %s: %w", path, err)
	}
	if registry.Count() == 0 {
		fmt.Fprint(errOut, ui.Warning(fmt.Sprintf("%s declares no resources", path), noColor))
	}

	cat := catalog.New(catalog.WithDefaultStringLength(cfg.Mapping.DefaultStringLength))
	converters := convert.NewRegistry(cat)
	if err := convert.RegisterStock(converters); err != nil {
		return nil, err
	}

	builder := resolution.NewBuilder(cat, converters, resolution.Options{
		DefaultEnumStrategy: cfg.EnumStrategy(),
		Concurrency:         cfg.Mapping.Concurrency,
		Logger:              logger,
	})

	var opts []resolution.Option
	strategy, ok, err := mapping.DefaultStrategy(file)
	if err != nil {
		return nil, fmt.Errorf("invalid mapping %s: %w", path, err)
	}
	if ok {
		opts = append(opts, resolution.WithDefaultEnumStrategy(strategy))
	}

	suggestConverters(errOut, registry, converters)

	model, err := builder.BindAll(registry, opts...)
	if err != nil {
		reportBindErrors(errOut, err)
		return nil, fmt.Errorf("%d of %d resources failed to bind", len(multierr.Errors(err)), registry.Count())
	}

	logger.Debug("converters constructed", zap.String("mapping", path), zap.Int64("count", converters.Constructed()))
	return model, nil
}

// suggestConverters points out converter references with no registration
func suggestConverters(w io.Writer, registry *schema.Registry, converters *convert.Registry) {
	refs := converters.Refs()
	for _, name := range registry.List() {
		res, _ := registry.Get(name)
		for _, attr := range res.Attributes {
			if !attr.HasConverter() || converters.IsRegistered(attr.ConverterRef) {
				continue
			}
			suggestions := ui.FindSimilar(attr.ConverterRef, refs, nil)
			fmt.Fprint(w, ui.ConverterNotFoundError(attr.ID(), attr.ConverterRef, suggestions, noColor))
		}
	}
}

func reportBindErrors(w io.Writer, err error) {
	for _, e := range multierr.Errors(err) {
		var bindErr *resolution.BindError
		if !errors.As(e, &bindErr) {
			ui.WriteError(w, ui.ErrorOptions{Problem: e.Error(), NoColor: noColor})
			continue
		}

		problems := make([]string, len(bindErr.Errors))
		for i, attrErr := range bindErr.Errors {
			problems[i] = attrErr.Error()
		}
		fmt.Fprint(w, ui.BindingError(bindErr.Resource, problems, noColor))
	}
}

func printBinding(w io.Writer, binding *resolution.Binding) error {
	ui.Header(w, fmt.Sprintf("%s (%s)", binding.Resource(), binding.Table()), noColor)

	table := ui.NewTable(w, []string{"Attribute", "Store type", "Column", "OID", "Domain", "Relational", "Converter", "Handle"},
		&ui.TableOptions{NoColor: noColor})
	for _, r := range binding.Resolutions() {
		column, err := r.StoreType().DDL()
		if err != nil {
			return fmt.Errorf("%s.%s: %w", r.Resource(), r.Attribute(), err)
		}
		if r.Nullable() {
			column += " NULL"
		}

		converter := "-"
		if r.HasConverter() {
			converter = r.Converter().Ref()
		}

		table.AddRow(
			r.Attribute(),
			r.StoreType().String(),
			column,
			strconv.FormatUint(uint64(r.StoreType().Code.OID()), 10),
			r.DomainRepresentation().String(),
			r.RelationalRepresentation().String(),
			converter,
			r.Legacy().Name(),
		)
	}
	table.Render()
	fmt.Fprintln(w)

	if resolveDDL {
		ddl, err := binding.CreateTableSQL()
		if err != nil {
			return err
		}
		section := ui.NewSection(w, "DDL", noColor)
		section.AddLine(ddl)
		section.Render()
	}

	if resolveDump {
		dumper := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, MaxDepth: 4}
		for _, r := range binding.Resolutions() {
			fmt.Fprintf(w, "%s.%s\n", r.Resource(), r.Attribute())
			dumper.Fdump(w, r)
		}
		fmt.Fprintln(w)
	}

	return nil
}
