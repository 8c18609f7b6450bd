package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/multifx/pedalctl/internal/config"
	"github.com/multifx/pedalctl/internal/device"
	"github.com/multifx/pedalctl/internal/paths"
	"github.com/multifx/pedalctl/internal/snapshot"
	"github.com/multifx/pedalctl/internal/storage"
	"github.com/multifx/pedalctl/internal/syncer"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// truncate shortens a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// formatBytes renders a byte count in compact binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}

// activeConfig returns the configuration loaded at startup, or defaults when
// none was loaded (tests call command internals without the cobra lifecycle).
func activeConfig() *config.Config {
	if cfg != nil {
		return cfg
	}
	return config.Default()
}

// openOnboard returns the on-board tree as a storage root without creating
// anything. Read-only commands use this so a missing tree just probes as
// absent.
func openOnboard(c *config.Config) storage.Root {
	return storage.NewDirRoot(c.OnboardDir)
}

// ensureOnboard creates the on-board directory if needed and returns it as a
// storage root. Mutating commands use this.
func ensureOnboard(c *config.Config) (storage.Root, error) {
	if err := paths.EnsureDir(c.OnboardDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating on-board directory %s", c.OnboardDir)
	}
	return storage.NewDirRoot(c.OnboardDir), nil
}

// newScanner builds the device scanner from configuration.
func newScanner(c *config.Config) *device.Scanner {
	return device.NewScanner(c.MountDirs, c.Marker)
}

// newSnapshots builds the snapshot manager from configuration.
func newSnapshots(c *config.Config) *snapshot.Manager {
	return snapshot.NewManager(
		snapshot.WithDir(c.Snapshot.Dir),
		snapshot.WithRetention(c.Snapshot.Retention),
	)
}

// newEngine assembles the sync engine over the given on-board root.
// withSnapshots controls whether load takes the pre-load safety snapshot.
func newEngine(c *config.Config, onboard storage.Root, withSnapshots bool) *syncer.Engine {
	opts := []syncer.Option{
		syncer.WithScanTimeout(c.ScanTimeout),
	}
	if withSnapshots {
		opts = append(opts, syncer.WithSnapshots(newSnapshots(c)))
	}
	return syncer.NewEngine(onboard, newScanner(c), opts...)
}

// confirm prompts the user for a yes/no confirmation.
// Returns true only if the user enters "y" or "yes" (case-insensitive).
func confirm(prompt string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("%s [y/N] ", prompt)

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
