package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/reslist/internal/config"
	"github.com/hupe1980/reslist/internal/filter"
	"github.com/hupe1980/reslist/internal/logging"
	"github.com/hupe1980/reslist/internal/options"
	"github.com/hupe1980/reslist/internal/projector"
	"github.com/hupe1980/reslist/internal/resource"
)

// pipelineResult holds the outputs of one load-filter-project run.
type pipelineResult struct {
	Projection projector.Projection
	// Excluded lists resources dropped by the selector or the name filter.
	Excluded []filter.ExcludedResource
}

// openStore returns the options store of the configured session.
func openStore(ctx context.Context) (*options.FileStore, error) {
	cfg := config.FromContext(ctx)

	store, err := options.NewFileStore(cfg.StateDir, cfg.Session,
		options.WithLogger(logging.WithComponent(ctx, "options")))
	if err != nil {
		return nil, usageError(err)
	}

	return store, nil
}

// resolvePreset looks up the named preset in the active config file. An
// empty name yields no preset.
func resolvePreset(ctx context.Context, name string) (*config.Preset, error) {
	if name == "" {
		return nil, nil
	}

	presets, err := config.LoadPresets(config.ConfigFileFromContext(ctx))
	if err != nil {
		return nil, usageError(err)
	}

	preset, err := presets.Lookup(name)
	if err != nil {
		return nil, usageError(err)
	}

	return &preset, nil
}

// effectiveOptions layers the persisted options under an optional preset
// under the flags the user actually set. It also returns the effective
// label selector.
func effectiveOptions(cmd *cobra.Command, store options.Accessor, preset *config.Preset, flags *listFlags) (options.Options, string) {
	o := store.Get()
	selector := ""

	if preset != nil {
		o.ResourceNameFilter = preset.Filter
		if preset.AlertsOnTop != nil {
			o.AlertsOnTop = *preset.AlertsOnTop
		}

		selector = preset.Selector
	}

	f := cmd.Flags()
	if f.Changed("filter") {
		o.ResourceNameFilter = flags.filter
	}

	if f.Changed("alerts-on-top") {
		o.AlertsOnTop = flags.alertsOnTop
	}

	if f.Changed("selector") {
		selector = flags.selector
	}

	return o, selector
}

// runPipeline loads source and projects the resources the selector keeps.
func runPipeline(ctx context.Context, source string, o options.Options, selector string) (*pipelineResult, error) {
	logger := logging.FromContext(ctx)

	logger.Debug("loading resources", slog.String("source", source))

	resources, err := resource.LoadFile(ctx, source)
	if err != nil {
		return nil, &ExitError{Code: 1, Err: err}
	}

	var filters []filter.Filter

	labels, err := filter.NewLabelFilter(selector)
	if err != nil {
		return nil, usageError(err)
	}

	if labels != nil {
		filters = append(filters, labels)
	}

	scoped, err := filter.NewChain(filters...).Apply(ctx, resources)
	if err != nil {
		return nil, &ExitError{Code: 1, Err: fmt.Errorf("applying selector: %w", err)}
	}

	proj := projector.New(scoped.Included, o)

	logger.Debug("resources projected",
		slog.Int("total", len(resources)),
		slog.Int("scoped", len(scoped.Included)),
		slog.Int("visible", len(proj.Resources)),
		slog.Int("alerting", proj.AlertCount()),
	)

	named := filter.NewNameFilter(o.ResourceNameFilter).Explain(scoped.Included, proj.Resources)

	excluded := make([]filter.ExcludedResource, 0, len(scoped.Excluded)+len(named))
	excluded = append(excluded, scoped.Excluded...)
	excluded = append(excluded, named...)

	return &pipelineResult{Projection: proj, Excluded: excluded}, nil
}
