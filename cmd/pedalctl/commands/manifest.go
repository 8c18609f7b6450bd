package commands

import "github.com/spf13/cobra"

func init() {
	rootCmd.AddCommand(manifestCmd)
}

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Manage plugin manifests",
	Long: `Manage the plugin manifests on the on-board tree.

Manifests describe the installed plugins and live under plugins/manifests/.
They are generated from per-plugin metadata and loaded by every command
that works with the plugin chain.`,
	Example: `  # Regenerate manifests from plugin metadata
  pedalctl manifest gen

  # Check the manifest set for problems
  pedalctl manifest validate

  See Also:
    pedalctl manifest gen      - Generate manifests from plugin metadata
    pedalctl manifest validate - Check the manifest set for problems`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}
