package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/multifx/pedalctl/internal/config"
	"github.com/multifx/pedalctl/internal/snapshot"
	"github.com/multifx/pedalctl/internal/syncer"
)

var snapshotRestoreLabel string

func init() {
	snapshotRestoreCmd.Flags().StringVar(&snapshotRestoreLabel, "label", syncer.SnapshotLabel,
		"Snapshot label to restore from")
	snapshotCmd.AddCommand(snapshotRestoreCmd)
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore [snapshot-id]",
	Short: "Restore the on-board tree from a snapshot",
	Long: `Restore the on-board configuration tree from a snapshot.

If no snapshot ID is provided, restores from the most recent snapshot.
Each stored file is verified against its recorded hash before anything is
written. Files recorded in the snapshot are written back to their original
locations; files created since the snapshot are left in place.`,
	Example: `  # Restore from the most recent snapshot
  pedalctl snapshot restore

  # Restore from a specific snapshot
  pedalctl snapshot restore 20260123T100712

  # List available snapshots first
  pedalctl snapshot list

  See Also:
    pedalctl snapshot list - List available snapshots`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSnapshotRestore,
}

func runSnapshotRestore(_ *cobra.Command, args []string) error {
	return runSnapshotRestoreWithWriter(os.Stdout, activeConfig(), args)
}

func runSnapshotRestoreWithWriter(w io.Writer, c *config.Config, args []string) error {
	mgr := newSnapshots(c)

	// Determine snapshot ID
	var snapshotID string
	if len(args) > 0 {
		snapshotID = args[0]
	} else {
		manifests, err := mgr.List(snapshotRestoreLabel)
		if err != nil {
			if errors.Is(err, snapshot.ErrNoSnapshots) {
				return errors.Errorf("no %s snapshots found", snapshotRestoreLabel)
			}
			return errors.Wrap(err, "listing snapshots")
		}
		snapshotID = manifests[0].ID
		fmt.Fprintf(w, "Using most recent snapshot: %s\n", snapshotID)
	}

	// Get snapshot details for confirmation message
	manifest, err := mgr.Get(snapshotRestoreLabel, snapshotID)
	if err != nil {
		return errors.Wrapf(err, "getting snapshot %s", snapshotID)
	}

	onboard, err := ensureOnboard(c)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Restoring %d files from snapshot %s...\n", len(manifest.Files), snapshotID)

	if err := mgr.Restore(snapshotRestoreLabel, snapshotID, onboard); err != nil {
		return errors.Wrap(err, "restoring snapshot")
	}

	fmt.Fprintf(w, "%s✓ Restored on-board tree from snapshot %s%s\n",
		colorGreen, snapshotID, colorReset)

	return nil
}
