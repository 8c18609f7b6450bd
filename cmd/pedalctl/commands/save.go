package commands

import (
	"context"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/multifx/pedalctl/internal/config"
	"github.com/multifx/pedalctl/internal/device"
	pcerrors "github.com/multifx/pedalctl/internal/errors"
)

func init() {
	rootCmd.AddCommand(saveCmd)
}

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Push the on-board tree back to the pedal",
	Long: `Mirror the on-board configuration tree onto the connected pedal.

The device is located under the configured mount directories and both
trees are migrated to the structured layout first. The mirror is exact:
device content absent from the on-board tree is removed. No snapshot is
taken; the on-board tree is not modified by a save.`,
	Example: `  # Save to the connected pedal
  pedalctl save

  See Also: pedalctl load, pedalctl status`,
	RunE: runSave,
}

func runSave(cmd *cobra.Command, _ []string) error {
	return runSaveWithWriter(cmd.Context(), os.Stdout, activeConfig())
}

func runSaveWithWriter(ctx context.Context, w io.Writer, c *config.Config) error {
	onboard, err := ensureOnboard(c)
	if err != nil {
		return err
	}

	engine := newEngine(c, onboard, false)
	res, err := engine.Save(ctx)
	if err != nil {
		if errors.Is(err, device.ErrNoDevice) {
			return pcerrors.NewSystemError(err,
				"Is the pedal's media mounted? Run: pedalctl doctor")
		}
		return errors.Wrap(err, "saving to device")
	}

	printSyncResult(w, "Saved to", res)
	return nil
}
