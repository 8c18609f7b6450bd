package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/multifx/pedalctl/internal/device"
)

var watchNoSnapshot bool

func init() {
	watchCmd.Flags().BoolVar(&watchNoSnapshot, "no-snapshot", false,
		"skip the pre-load safety snapshot on each load")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Load automatically whenever a pedal is plugged in",
	Long: `Watch the mount directories and load from every pedal that appears.

Mount events are debounced so the automounter can finish before the
scan; a polling fallback covers platforms that deliver no events. Each
detected device triggers the same sequence as pedalctl load, including
the safety snapshot. Runs until interrupted.`,
	Example: `  # Watch until Ctrl-C
  pedalctl watch

  # Watch without taking snapshots
  pedalctl watch --no-snapshot

  See Also: pedalctl load`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, _ []string) error {
	c := activeConfig()

	onboard, err := ensureOnboard(c)
	if err != nil {
		return err
	}
	engine := newEngine(c, onboard, !watchNoSnapshot)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s for devices (Ctrl-C to stop)\n", strings.Join(c.MountDirs, ", "))

	watcher := device.NewWatcher(newScanner(c), c.Watch.Debounce, c.Watch.PollInterval, slog.Default())
	err = watcher.Watch(ctx, func(ctx context.Context, dev *device.Device) {
		res, err := engine.Load(ctx)
		if err != nil {
			slog.Warn("load failed",
				"path", dev.Path,
				"error", err)
			return
		}
		printSyncResult(os.Stdout, "Loaded from", res)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "watching for devices")
	}

	fmt.Println("Stopped")
	return nil
}
