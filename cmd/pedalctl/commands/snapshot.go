package commands

import "github.com/spf13/cobra"

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage on-board snapshots",
	Long: `Manage snapshots of the on-board configuration tree.

Before pedalctl load overwrites the on-board tree, it automatically takes a
snapshot of the profile and plugin subtrees. This command group allows you
to list, restore, and prune snapshots.

Snapshots are grouped by label; automatic pre-load snapshots use the
"pre-load" label.`,
	Example: `  # List snapshots
  pedalctl snapshot list

  # Restore from the most recent snapshot
  pedalctl snapshot restore

  # Restore from a specific snapshot
  pedalctl snapshot restore 20260123T100712

  # Remove old snapshots, keeping the 3 most recent
  pedalctl snapshot prune --keep 3

  See Also:
    pedalctl snapshot list    - List available snapshots
    pedalctl snapshot restore - Restore the on-board tree from a snapshot
    pedalctl snapshot prune   - Remove old snapshots`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}
