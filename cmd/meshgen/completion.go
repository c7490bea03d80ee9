package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// completionCmd represents the completion command
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate completion script",
	Long: `To load completions:

Bash:
  $ source <(meshgen completion bash)

Zsh:
  $ source <(meshgen completion zsh)

fish:
  $ meshgen completion fish | source

PowerShell:
  PS> meshgen completion powershell | Out-String | Invoke-Expression
`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		var err error
		switch args[0] {
		case "bash":
			err = cmd.Root().GenBashCompletionV2(out, true)
		case "zsh":
			err = cmd.Root().GenZshCompletion(out)
		case "fish":
			err = cmd.Root().GenFishCompletion(out, true)
		case "powershell":
			err = cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
		if err != nil {
			return fmt.Errorf("error generating %s completion: %w", args[0], err)
		}
		return nil
	},
}
