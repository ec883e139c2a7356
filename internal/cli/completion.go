package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridboard/pkg/layout"
)

var completionShells = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(r *cobra.Command, w io.Writer) error { return r.GenBashCompletionV2(w, true) },
	"zsh":        func(r *cobra.Command, w io.Writer) error { return r.GenZshCompletion(w) },
	"fish":       func(r *cobra.Command, w io.Writer) error { return r.GenFishCompletion(w, true) },
	"powershell": func(r *cobra.Command, w io.Writer) error { return r.GenPowerShellCompletionWithDesc(w) },
}

// completionCommand prints a shell completion script.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for gridboard.

  bash:        source <(gridboard completion bash)
  zsh:         gridboard completion zsh > "${fpath[1]}/_gridboard"
  fish:        gridboard completion fish > ~/.config/fish/completions/gridboard.fish
  powershell:  gridboard completion powershell | Out-String | Invoke-Expression

Widget arguments complete to the ids in the layout file given before them.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionShells[args[0]](cmd.Root(), cmd.OutOrStdout())
		},
	}
}

// completeLayoutWidget completes the [layout] [widget] argument pair: files
// first, then the widget ids found in that file.
func completeLayoutWidget(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return []string{"json", "yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	case 1:
		rec, err := layout.ReadFile(args[0])
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		ids := make([]string, 0, len(rec.Widgets))
		for _, w := range rec.Widgets {
			desc := w.Title
			if desc == "" {
				desc = w.Position.String()
			}
			ids = append(ids, w.ID+"\t"+desc)
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
