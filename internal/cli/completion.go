package cli

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/reslist/internal/config"
)

func newCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for reslist.

To load completions:

Bash:
  $ source <(reslist completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ reslist completion bash > /etc/bash_completion.d/reslist

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ reslist completion zsh > "${fpath[1]}/_reslist"

Fish:
  $ reslist completion fish > ~/.config/fish/completions/reslist.fish

PowerShell:
  PS> reslist completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> reslist completion powershell > reslist.ps1
  # and source this file from your PowerShell profile.
`,
		// Override parent PersistentPreRunE: completion needs no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Args:              cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:         []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}

			return nil
		},
	}

	return cmd
}

// registerFlagCompletions wires dynamic completion for flag values that
// depend on local state: output formats, presets and sessions.
func registerFlagCompletions(root *cobra.Command) {
	_ = root.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{config.OutputText, config.OutputJSON, config.OutputYAML}, cobra.ShellCompDirectiveNoFileComp
	})

	_ = root.RegisterFlagCompletionFunc("session", func(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		stateDir, _ := cmd.Flags().GetString("state-dir")
		return filterPrefix(sessionNames(stateDir), toComplete), cobra.ShellCompDirectiveNoFileComp
	})

	for _, sub := range root.Commands() {
		if sub.Flags().Lookup("preset") == nil {
			continue
		}

		_ = sub.RegisterFlagCompletionFunc("preset", func(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			cfgFile, _ := cmd.Flags().GetString("config")
			return filterPrefix(presetNames(cfgFile), toComplete), cobra.ShellCompDirectiveNoFileComp
		})
	}
}

// sessionNames lists the sessions that have a directory under stateDir.
func sessionNames(stateDir string) []string {
	entries, err := os.ReadDir(stateDir)
	if err != nil {
		return nil
	}

	var names []string

	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}

	return names
}

// presetNames lists presets from cfgFile, or from .reslist.yaml in the
// working directory when no file is given.
func presetNames(cfgFile string) []string {
	if cfgFile == "" {
		cfgFile = ".reslist.yaml"
		if _, err := os.Stat(cfgFile); err != nil {
			return nil
		}
	}

	presets, err := config.LoadPresets(filepath.Clean(cfgFile))
	if err != nil {
		return nil
	}

	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func filterPrefix(values []string, prefix string) []string {
	var out []string

	for _, v := range values {
		if strings.HasPrefix(v, prefix) {
			out = append(out, v)
		}
	}

	return out
}
