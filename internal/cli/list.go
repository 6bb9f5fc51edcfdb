package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/reslist/internal/config"
	"github.com/hupe1980/reslist/internal/logging"
)

type listOptions struct {
	listFlags

	save    bool
	explain bool
}

func newListCommand() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list <source>",
		Short: "Print the filtered and ordered resource list",
		Long: `List reads resources from a snapshot file or Kubernetes manifests and
prints the visible list.

A resource is visible when its name contains every whitespace-separated
term of the filter, ignoring case. With --alerts-on-top, alerting
resources come first; both groups keep their original order.

Flags that are not given fall back to the options persisted for the
session. Use --save to persist the effective options.`,
		Example: `  reslist list resources.yaml --filter "api test"
  reslist list manifests.yaml --alerts-on-top --save
  reslist list resources.yaml -l tier=backend -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), cmd, args[0], opts)
		},
	}

	registerListFlags(cmd, &opts.listFlags)

	f := cmd.Flags()
	f.BoolVar(&opts.save, "save", false, "persist the effective options for the session")
	f.BoolVar(&opts.explain, "explain", false, "report why each hidden resource was excluded")

	return cmd
}

func runList(ctx context.Context, cmd *cobra.Command, source string, opts *listOptions) error {
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)

	store, err := openStore(ctx)
	if err != nil {
		return err
	}

	preset, err := resolvePreset(ctx, opts.preset)
	if err != nil {
		return err
	}

	effective, selector := effectiveOptions(cmd, store, preset, &opts.listFlags)

	renderer, err := newRenderer(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	result, err := runPipeline(ctx, source, effective, selector)
	if err != nil {
		return err
	}

	if err := renderer.Render(result.Projection); err != nil {
		return err
	}

	if opts.explain {
		for _, ex := range result.Excluded {
			fmt.Fprintf(cmd.ErrOrStderr(), "excluded %s: %s\n", ex.Resource.Name, ex.Reason)
		}
	}

	if opts.save {
		if err := store.Save(effective); err != nil {
			return fmt.Errorf("saving options: %w", err)
		}

		logger.Info("options saved", slog.String("path", store.Path()))
	}

	return nil
}
