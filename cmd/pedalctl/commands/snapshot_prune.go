package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/multifx/pedalctl/internal/config"
	"github.com/multifx/pedalctl/internal/syncer"
)

var (
	snapshotPruneKeep  int
	snapshotPruneLabel string
)

func init() {
	snapshotPruneCmd.Flags().IntVar(&snapshotPruneKeep, "keep", -1,
		"Number of snapshots to retain (default: configured retention)")
	snapshotPruneCmd.Flags().StringVar(&snapshotPruneLabel, "label", syncer.SnapshotLabel,
		"Snapshot label to prune")
	snapshotCmd.AddCommand(snapshotPruneCmd)
}

var snapshotPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old snapshots",
	Long: `Remove old snapshots beyond the retention count.

By default, keeps the configured number of most recent snapshots (see the
snapshot.retention setting) and removes older ones. Use the --keep flag to
override the retention count for this run.`,
	Example: `  # Prune using the configured retention
  pedalctl snapshot prune

  # Keep only the 3 most recent snapshots
  pedalctl snapshot prune --keep 3

  # Remove all snapshots (keep 0)
  pedalctl snapshot prune --keep 0

  See Also:
    pedalctl snapshot list - List available snapshots`,
	RunE: runSnapshotPrune,
}

func runSnapshotPrune(cmd *cobra.Command, _ []string) error {
	keep := snapshotPruneKeep
	if !cmd.Flags().Changed("keep") {
		keep = -1
	}
	return runSnapshotPruneWithWriter(os.Stdout, activeConfig(), keep)
}

// runSnapshotPruneWithWriter prunes snapshots; keep < 0 means use the
// manager's configured retention.
func runSnapshotPruneWithWriter(w io.Writer, c *config.Config, keep int) error {
	mgr := newSnapshots(c)
	if keep < 0 {
		keep = mgr.Retention()
	}

	removed, err := mgr.Prune(snapshotPruneLabel, keep)
	if err != nil {
		return errors.Wrapf(err, "pruning %s snapshots", snapshotPruneLabel)
	}

	if removed == 0 {
		fmt.Fprintln(w, "No snapshots to prune")
		return nil
	}

	fmt.Fprintf(w, "%s✓ Removed %d old snapshot(s), keeping the %d most recent%s\n",
		colorGreen, removed, keep, colorReset)
	return nil
}
