package cli

import (
	"github.com/spf13/cobra"
)

// listFlags are the projection flags shared by list and watch.
type listFlags struct {
	filter      string
	alertsOnTop bool
	selector    string
	preset      string
}

// registerListFlags adds the projection flags to a cobra command.
func registerListFlags(cmd *cobra.Command, opts *listFlags) {
	f := cmd.Flags()
	f.StringVar(&opts.filter, "filter", "", "name filter; whitespace-separated terms must all match")
	f.BoolVar(&opts.alertsOnTop, "alerts-on-top", false, "list alerting resources first")
	f.StringVarP(&opts.selector, "selector", "l", "", "label selector applied before the name filter")
	f.StringVar(&opts.preset, "preset", "", "apply a named preset from the config file")
}
