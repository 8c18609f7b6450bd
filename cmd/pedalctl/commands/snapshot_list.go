package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/multifx/pedalctl/internal/config"
	"github.com/multifx/pedalctl/internal/snapshot"
	"github.com/multifx/pedalctl/internal/syncer"
)

var (
	snapshotListJSON  bool
	snapshotListLabel string
)

func init() {
	snapshotListCmd.Flags().BoolVar(&snapshotListJSON, "json", false, "Output in JSON format")
	snapshotListCmd.Flags().StringVar(&snapshotListLabel, "label", syncer.SnapshotLabel,
		"Snapshot label to list")
	snapshotCmd.AddCommand(snapshotListCmd)
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available snapshots",
	Long: `List snapshots of the on-board configuration tree.

Snapshots are shown in chronological order with the most recent first.
By default, lists the automatic pre-load snapshots; use the --label flag
to list a different group.`,
	Example: `  # List pre-load snapshots
  pedalctl snapshot list

  # Output as JSON
  pedalctl snapshot list --json

  See Also:
    pedalctl snapshot restore - Restore from a snapshot
    pedalctl snapshot prune   - Remove old snapshots`,
	RunE: runSnapshotList,
}

// snapshotInfoOutput represents a single snapshot in JSON output.
type snapshotInfoOutput struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
	FileCount int       `json:"file_count"`
	SizeBytes int64     `json:"size_bytes"`
	Version   string    `json:"pedalctl_version,omitempty"`
}

func runSnapshotList(_ *cobra.Command, _ []string) error {
	return runSnapshotListWithWriter(os.Stdout, activeConfig())
}

func runSnapshotListWithWriter(w io.Writer, c *config.Config) error {
	manifests, err := newSnapshots(c).List(snapshotListLabel)
	if err != nil && !errors.Is(err, snapshot.ErrNoSnapshots) {
		return errors.Wrapf(err, "listing %s snapshots", snapshotListLabel)
	}

	if snapshotListJSON {
		return outputSnapshotListJSON(w, manifests)
	}
	return outputSnapshotListTabular(w, manifests)
}

func manifestSize(m snapshot.Manifest) int64 {
	var total int64
	for _, f := range m.Files {
		total += f.Size
	}
	return total
}

func outputSnapshotListJSON(w io.Writer, manifests []snapshot.Manifest) error {
	output := make([]snapshotInfoOutput, len(manifests))
	for i, m := range manifests {
		output[i] = snapshotInfoOutput{
			ID:        m.ID,
			Label:     m.Label,
			CreatedAt: m.CreatedAt,
			FileCount: len(m.Files),
			SizeBytes: manifestSize(m),
			Version:   m.Tool,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func outputSnapshotListTabular(w io.Writer, manifests []snapshot.Manifest) error {
	if len(manifests) == 0 {
		fmt.Fprintln(w, "No snapshots available")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Snapshots are created automatically before pedalctl load overwrites")
		fmt.Fprintln(w, "the on-board tree.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%sID%s\t%sCREATED%s\t%sFILES%s\t%sSIZE%s\n",
		colorBold, colorReset,
		colorBold, colorReset,
		colorBold, colorReset,
		colorBold, colorReset)

	for _, m := range manifests {
		fmt.Fprintf(tw, "%s%s%s\t%s\t%d\t%s\n",
			colorGreen, m.ID, colorReset,
			m.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			len(m.Files),
			formatBytes(manifestSize(m)))
	}
	return tw.Flush()
}
