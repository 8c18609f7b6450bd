package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/multifx/pedalctl/internal/config"
	"github.com/multifx/pedalctl/internal/device"
	pcerrors "github.com/multifx/pedalctl/internal/errors"
	"github.com/multifx/pedalctl/internal/syncer"
)

var loadNoSnapshot bool

func init() {
	loadCmd.Flags().BoolVar(&loadNoSnapshot, "no-snapshot", false,
		"skip the pre-load safety snapshot")
	rootCmd.AddCommand(loadCmd)
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Pull the connected pedal's tree onto this machine",
	Long: `Mirror the connected pedal's configuration tree into the on-board tree.

The device is located under the configured mount directories. Both trees
are migrated to the structured layout first, and a safety snapshot of
the on-board tree is taken before anything is overwritten. The mirror is
exact: on-board content absent from the device is removed.`,
	Example: `  # Load from the connected pedal
  pedalctl load

  # Load without taking a snapshot first
  pedalctl load --no-snapshot

  See Also: pedalctl save, pedalctl snapshot list`,
	RunE: runLoad,
}

func runLoad(cmd *cobra.Command, _ []string) error {
	return runLoadWithWriter(cmd.Context(), os.Stdout, activeConfig(), !loadNoSnapshot)
}

func runLoadWithWriter(ctx context.Context, w io.Writer, c *config.Config, withSnapshots bool) error {
	onboard, err := ensureOnboard(c)
	if err != nil {
		return err
	}

	engine := newEngine(c, onboard, withSnapshots)
	res, err := engine.Load(ctx)
	if err != nil {
		if errors.Is(err, device.ErrNoDevice) {
			return pcerrors.NewSystemError(err,
				"Is the pedal's media mounted? Run: pedalctl doctor")
		}
		return errors.Wrap(err, "loading from device")
	}

	printSyncResult(w, "Loaded from", res)
	return nil
}

// printSyncResult prints the outcome of a completed load or save.
func printSyncResult(w io.Writer, verb string, res *syncer.Result) {
	fmt.Fprintf(w, "%s✓ %s %s%s\n", colorGreen, verb, res.Identity.String(), colorReset)
	fmt.Fprintf(w, "  Path: %s\n", res.Device)
	fmt.Fprintf(w, "  Profiles: %d files (%s)\n", res.Profiles.Files, formatBytes(res.Profiles.Bytes))
	fmt.Fprintf(w, "  Plugins: %d files (%s)\n", res.Plugins.Files, formatBytes(res.Plugins.Bytes))
	if res.Snapshot != "" {
		fmt.Fprintf(w, "  Snapshot: %s\n", res.Snapshot)
	}
	fmt.Fprintf(w, "  Took: %s\n", res.Duration.Round(time.Millisecond))
}
