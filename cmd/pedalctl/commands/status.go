package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/multifx/pedalctl/cmd"
	"github.com/multifx/pedalctl/internal/config"
	"github.com/multifx/pedalctl/internal/device"
	"github.com/multifx/pedalctl/internal/layout"
	"github.com/multifx/pedalctl/internal/logging"
	"github.com/multifx/pedalctl/internal/manifest"
	"github.com/multifx/pedalctl/internal/storage"
	"github.com/multifx/pedalctl/internal/syncer"
)

var (
	statusJSON  bool
	statusQuiet bool
)

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	statusCmd.Flags().BoolVar(&statusQuiet, "quiet", false, "summary counts only")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show on-board tree and device overview",
	Long: `Show an overview of the on-board configuration tree and the device.

Displays the on-board path with its layout state, profile and plugin
counts, available snapshots, and whether a pedal is currently connected.

Output modes (mutually exclusive):
  (default)   Readable overview
  --quiet     Single-line summary
  --json      Machine-readable JSON output

Examples:
  # Show the overview
  pedalctl status

  # Quick summary
  pedalctl status --quiet

  # JSON output for scripting
  pedalctl status --json`,
	PreRunE: validateStatusFlags,
	RunE:    runStatus,
}

// validateStatusFlags ensures output flags are mutually exclusive.
func validateStatusFlags(_ *cobra.Command, _ []string) error {
	if statusJSON && statusQuiet {
		return errors.New("flags --json and --quiet are mutually exclusive")
	}
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	return runStatusWithWriter(cmd.Context(), os.Stdout, activeConfig())
}

// systemStatus holds everything the status command reports.
type systemStatus struct {
	OnboardPath string
	State       layout.State
	Profiles    int
	PluginDirs  int
	Manifests   int
	Plugins     int
	Snapshots   int
	Device      *device.Device
}

// runStatusWithWriter allows injecting a writer and config for testing.
func runStatusWithWriter(ctx context.Context, w io.Writer, c *config.Config) error {
	status := collectStatus(ctx, c)

	if statusJSON {
		return outputStatusJSON(w, status)
	}
	if statusQuiet {
		return outputStatusQuiet(w, status)
	}
	return outputStatusCompact(w, status)
}

// collectStatus gathers the report. Probe failures degrade to zero counts;
// status is an overview, not a diagnostic (that is doctor's job).
func collectStatus(ctx context.Context, c *config.Config) systemStatus {
	status := systemStatus{
		OnboardPath: c.OnboardDir,
	}

	onboard := openOnboard(c)
	status.State, _ = layout.Probe(onboard)
	status.Profiles = countFiles(onboard, layout.ProfilesDir)
	status.PluginDirs = countPluginDirs(onboard)

	loader := manifest.NewLoader(onboard, logging.NewDiscard())
	if res, err := loader.LoadDir(manifest.DefaultDir); err == nil {
		status.Manifests = len(res.Files)
		status.Plugins = len(res.Plugins)
	}

	if manifests, err := newSnapshots(c).List(syncer.SnapshotLabel); err == nil {
		status.Snapshots = len(manifests)
	}

	scanCtx, cancel := context.WithTimeout(ctx, c.ScanTimeout)
	defer cancel()
	if dev, err := newScanner(c).Scan(scanCtx); err == nil {
		status.Device = dev
	}

	return status
}

// countFiles counts files under dir, recursively. A missing directory counts
// as empty.
func countFiles(root storage.Root, dir string) int {
	entries, err := root.List(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, ent := range entries {
		if ent.Dir {
			n += countFiles(root, path.Join(dir, ent.Name))
			continue
		}
		n++
	}
	return n
}

// countPluginDirs counts installed plugin directories, excluding the
// manifests directory that lives alongside them.
func countPluginDirs(root storage.Root) int {
	entries, err := root.List(layout.PluginsDir)
	if err != nil {
		return 0
	}
	n := 0
	for _, ent := range entries {
		if ent.Dir && ent.Name != "manifests" {
			n++
		}
	}
	return n
}

// JSON output types

type statusJSONOutput struct {
	Version string           `json:"version"`
	Onboard onboardJSONEntry `json:"onboard"`
	Device  deviceJSONEntry  `json:"device"`
}

type onboardJSONEntry struct {
	Path       string `json:"path"`
	State      string `json:"state"`
	Profiles   int    `json:"profiles"`
	PluginDirs int    `json:"plugin_dirs"`
	Manifests  int    `json:"manifests"`
	Plugins    int    `json:"plugins"`
	Snapshots  int    `json:"snapshots"`
}

type deviceJSONEntry struct {
	Present  bool   `json:"present"`
	Path     string `json:"path,omitempty"`
	Name     string `json:"name,omitempty"`
	ID       string `json:"id,omitempty"`
	Firmware string `json:"firmware,omitempty"`
}

func outputStatusJSON(w io.Writer, status systemStatus) error {
	output := statusJSONOutput{
		Version: cmd.Version,
		Onboard: onboardJSONEntry{
			Path:       status.OnboardPath,
			State:      status.State.String(),
			Profiles:   status.Profiles,
			PluginDirs: status.PluginDirs,
			Manifests:  status.Manifests,
			Plugins:    status.Plugins,
			Snapshots:  status.Snapshots,
		},
	}
	if status.Device != nil {
		output.Device = deviceJSONEntry{
			Present:  true,
			Path:     status.Device.Path,
			Name:     status.Device.Identity.Name,
			ID:       status.Device.Identity.ID,
			Firmware: status.Device.Identity.Firmware,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func outputStatusQuiet(w io.Writer, status systemStatus) error {
	devState := "none"
	if status.Device != nil {
		devState = "present"
	}
	fmt.Fprintf(w, "onboard: %s, %d profiles, %d plugins; device: %s\n",
		status.State, status.Profiles, status.Plugins, devState)
	return nil
}

func outputStatusCompact(w io.Writer, status systemStatus) error {
	fmt.Fprintf(w, "pedalctl version %s\n", cmd.Version)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%sOn-board: %s%s (%s)\n", colorCyan+colorBold, status.OnboardPath, colorReset, status.State)
	fmt.Fprintf(w, "  Profiles: %d\n", status.Profiles)
	if status.Manifests > 0 {
		fmt.Fprintf(w, "  Plugins: %d installed, %d in %d manifests\n",
			status.PluginDirs, status.Plugins, status.Manifests)
	} else {
		fmt.Fprintf(w, "  Plugins: %d installed\n", status.PluginDirs)
	}
	fmt.Fprintf(w, "  Snapshots: %d\n", status.Snapshots)

	fmt.Fprintln(w)
	if status.Device == nil {
		fmt.Fprintf(w, "%sDevice: %s%s(not connected)%s\n", colorCyan+colorBold, colorReset, colorGray, colorReset)
		return nil
	}
	fmt.Fprintf(w, "%sDevice: %s%s\n", colorCyan+colorBold, status.Device.Identity.String(), colorReset)
	fmt.Fprintf(w, "  Path: %s\n", status.Device.Path)
	return nil
}
