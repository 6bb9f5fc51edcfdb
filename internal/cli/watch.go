package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/reslist/internal/config"
	"github.com/hupe1980/reslist/internal/filter"
	"github.com/hupe1980/reslist/internal/logging"
	"github.com/hupe1980/reslist/internal/watch"
)

type watchOptions struct {
	listFlags

	debounce time.Duration
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <source>",
		Short: "Re-print the resource list whenever it changes",
		Long: `Watch prints the resource list, then monitors the source file and the
session's persisted options for changes and prints the list again.

File changes are debounced to avoid rapid re-runs. Each refresh reports
how many resources are visible and how the visible order moved, so
running "reslist options toggle-alerts" in another terminal shows the
alerting resources jump to the top.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd, args[0], opts)
		},
	}

	registerListFlags(cmd, &opts.listFlags)

	cmd.Flags().DurationVar(&opts.debounce, "debounce", 300*time.Millisecond, "debounce interval for file changes")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, source string, opts *watchOptions) error {
	if opts.debounce <= 0 {
		return usageError(fmt.Errorf("--debounce must be positive, got %s", opts.debounce))
	}

	cfg := config.FromContext(ctx)

	store, err := openStore(ctx)
	if err != nil {
		return err
	}

	preset, err := resolvePreset(ctx, opts.preset)
	if err != nil {
		return err
	}

	// The selector comes from the preset or flags only, so it is fixed for
	// the whole session.
	if _, selector := effectiveOptions(cmd, store, preset, &opts.listFlags); selector != "" {
		if _, err := filter.NewLabelFilter(selector); err != nil {
			return usageError(err)
		}
	}

	// The options directory must exist to be watched before the first save.
	if err := os.MkdirAll(filepath.Dir(store.Path()), 0o750); err != nil {
		return fmt.Errorf("creating options directory: %w", err)
	}

	renderer, err := newRenderer(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	refreshFn := func(fnCtx context.Context) (*watch.Refresh, error) {
		effective, selector := effectiveOptions(cmd, store, preset, &opts.listFlags)

		result, runErr := runPipeline(fnCtx, source, effective, selector)
		if runErr != nil {
			return nil, runErr
		}

		if renderErr := renderer.Render(result.Projection); renderErr != nil {
			return nil, renderErr
		}

		return &watch.Refresh{
			Names:  result.Projection.Names(),
			Alerts: result.Projection.AlertCount(),
			Total:  result.Projection.Total,
		}, nil
	}

	watchOpts := watch.Options{
		Files:    []string{source, store.Path()},
		Debounce: opts.debounce,
		Logger:   logging.WithComponent(ctx, "watch"),
		Out:      cmd.ErrOrStderr(),
	}

	return watch.Run(ctx, watchOpts, refreshFn)
}
