package cli

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zimmermanw84/ts-visio-sub000/pkg/config"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for tsvisio.

To load completions:

Bash:
  $ source <(tsvisio completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ tsvisio completion bash > /etc/bash_completion.d/tsvisio
  # macOS:
  $ tsvisio completion bash > $(brew --prefix)/etc/bash_completion.d/tsvisio

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ tsvisio completion zsh > "${fpath[1]}/_tsvisio"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ tsvisio completion fish | source

  # To load completions for each session, execute once:
  $ tsvisio completion fish > ~/.config/fish/completions/tsvisio.fish

PowerShell:
  PS> tsvisio completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> tsvisio completion powershell > tsvisio.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}

	return cmd
}

// completePages completes the first positional argument with stored page ids.
// Cobra skips PersistentPreRunE during completion, so the config is loaded here.
func (c *CLI) completePages(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	s, err := c.openStore(cmd.Context(), cfg.Store)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer s.Close()

	ids, err := s.List(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ids = slices.DeleteFunc(ids, func(id string) bool { return !strings.HasPrefix(id, toComplete) })
	slices.Sort(ids)
	return ids, cobra.ShellCompDirectiveNoFileComp
}
