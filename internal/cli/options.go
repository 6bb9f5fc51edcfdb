package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/hupe1980/reslist/internal/config"
	"github.com/hupe1980/reslist/internal/options"
)

func newOptionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show or change the persisted list options",
		Long: `Options manages the name filter and alerts-on-top toggle persisted
for a session. The session is selected with --session and stored under
--state-dir.`,
		Args: cobra.NoArgs,
	}

	cmd.AddCommand(
		newOptionsShowCommand(),
		newOptionsSetCommand(),
		newOptionsToggleAlertsCommand(),
		newOptionsResetCommand(),
	)

	return cmd
}

func newOptionsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the persisted options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}

			return printOptions(cmd.Context(), cmd.OutOrStdout(), store.Get())
		},
	}
}

func newOptionsSetCommand() *cobra.Command {
	var (
		filterText  string
		alertsOnTop bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change persisted options",
		Example: `  reslist options set --filter "api test"
  reslist options set --alerts-on-top=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := cmd.Flags()
			if !f.Changed("filter") && !f.Changed("alerts-on-top") {
				return usageError(errors.New("nothing to set: use --filter and/or --alerts-on-top"))
			}

			return updateOptions(cmd, func(c *options.Controller) {
				if f.Changed("filter") {
					c.SetResourceNameFilter(filterText)
				}

				if f.Changed("alerts-on-top") {
					c.SetAlertsOnTop(alertsOnTop)
				}
			})
		},
	}

	cmd.Flags().StringVar(&filterText, "filter", "", "name filter text (empty clears it)")
	cmd.Flags().BoolVar(&alertsOnTop, "alerts-on-top", false, "list alerting resources first")

	return cmd
}

func newOptionsToggleAlertsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-alerts",
		Short: "Flip the alerts-on-top toggle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return updateOptions(cmd, func(c *options.Controller) {
				c.ToggleAlertsOnTop()
			})
		},
	}
}

func newOptionsResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}

			if err := store.Reset(); err != nil {
				return err
			}

			return printOptions(cmd.Context(), cmd.OutOrStdout(), store.Get())
		},
	}
}

// updateOptions applies edit to a working copy of the persisted options,
// then saves and prints the result.
func updateOptions(cmd *cobra.Command, edit func(*options.Controller)) error {
	ctx := cmd.Context()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}

	working := options.NewMemoryStore(store.Get())
	edit(options.NewController(working))

	o := working.Get()
	if err := store.Save(o); err != nil {
		return fmt.Errorf("saving options: %w", err)
	}

	return printOptions(ctx, cmd.OutOrStdout(), o)
}

// optionsDocument is the machine-readable shape of persisted options.
type optionsDocument struct {
	Session string          `json:"session"`
	Options options.Options `json:"options"`
}

func printOptions(ctx context.Context, w io.Writer, o options.Options) error {
	cfg := config.FromContext(ctx)

	switch cfg.Format {
	case config.OutputJSON:
		data, err := json.MarshalIndent(optionsDocument{Session: cfg.Session, Options: o}, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err
	case config.OutputYAML:
		data, err := sigsyaml.Marshal(optionsDocument{Session: cfg.Session, Options: o})
		if err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}

		_, err = w.Write(data)

		return err
	}

	r, err := newRenderer(cfg, w)
	if err != nil {
		return err
	}

	filterText := "(none)"
	if o.FilterActive() {
		filterText = fmt.Sprintf("%q", o.ResourceNameFilter)
	}

	_, err = fmt.Fprintf(w, "session: %s\nfilter:  %s\n%s\n", cfg.Session, filterText, r.Toggle(o))

	return err
}
