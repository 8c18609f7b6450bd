package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/multifx/pedalctl/internal/config"
	"github.com/multifx/pedalctl/internal/layout"
	"github.com/multifx/pedalctl/internal/paths"
	"github.com/multifx/pedalctl/pkg/fileutil"
)

var (
	initYes   bool
	initForce bool
)

func init() {
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Non-interactive mode, accept all defaults")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing configuration")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize pedalctl configuration",
	Long: `Bootstrap the pedalctl configuration file and the on-board tree.

Creates the configuration file with defaults for this machine and an
empty structured on-board tree ready for the first load.`,
	Example: `  # Initialize with interactive prompts
  pedalctl init

  # Initialize non-interactively, accepting defaults
  pedalctl init --yes

  # Force overwrite existing configuration
  pedalctl init --force

  See Also: pedalctl config, pedalctl doctor`,
	RunE: runInit,
}

// fileConfig is the configuration file structure written by init. Durations
// are written in Go duration syntax ("5s") so the file stays hand-editable.
type fileConfig struct {
	Version     int                `yaml:"version"`
	OnboardDir  string             `yaml:"onboard_dir"`
	MountDirs   []string           `yaml:"mount_dirs"`
	Marker      string             `yaml:"marker"`
	ScanTimeout string             `yaml:"scan_timeout"`
	Snapshot    fileSnapshotConfig `yaml:"snapshot"`
	Watch       fileWatchConfig    `yaml:"watch"`
}

type fileSnapshotConfig struct {
	Dir       string `yaml:"dir"`
	Retention int    `yaml:"retention"`
}

type fileWatchConfig struct {
	Debounce     string `yaml:"debounce"`
	PollInterval string `yaml:"poll_interval"`
}

// toFileConfig converts a runtime configuration to its on-disk shape.
func toFileConfig(c *config.Config) fileConfig {
	return fileConfig{
		Version:     c.Version,
		OnboardDir:  c.OnboardDir,
		MountDirs:   c.MountDirs,
		Marker:      c.Marker,
		ScanTimeout: c.ScanTimeout.String(),
		Snapshot: fileSnapshotConfig{
			Dir:       c.Snapshot.Dir,
			Retention: c.Snapshot.Retention,
		},
		Watch: fileWatchConfig{
			Debounce:     c.Watch.Debounce.String(),
			PollInterval: c.Watch.PollInterval.String(),
		},
	}
}

// writeConfigFile writes c to path in the on-disk YAML shape.
func writeConfigFile(path string, c *config.Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	fc := toFileConfig(c)
	if err := fileutil.AtomicWriteYAML(path, &fc); err != nil {
		return errors.Wrap(err, "writing config file")
	}
	return nil
}

func runInit(_ *cobra.Command, _ []string) error {
	return runInitWithWriter(os.Stdout, paths.ConfigFile(), config.Default())
}

func runInitWithWriter(w io.Writer, configPath string, defaults *config.Config) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil && !initForce {
		fmt.Fprintf(w, "Configuration already exists at %s\n", configPath)
		fmt.Fprintln(w, "Use --force to overwrite")
		return nil
	}

	// Interactive confirmation
	if !initYes {
		fmt.Fprintln(w, "This will create:")
		fmt.Fprintf(w, "  %s\n", configPath)
		fmt.Fprintf(w, "  %s (on-board tree)\n", defaults.OnboardDir)
		fmt.Fprintln(w)

		if !confirm("Proceed?") {
			fmt.Fprintln(w, "Aborted")
			return nil
		}
	}

	if err := writeConfigFile(configPath, defaults); err != nil {
		return err
	}
	fmt.Fprintf(w, "Created %s\n", configPath)

	// Lay out an empty structured tree so the first save has something to
	// push and status has something to report.
	onboard, err := ensureOnboard(defaults)
	if err != nil {
		return err
	}
	if err := layout.Migrate(onboard, nil); err != nil {
		return errors.Wrap(err, "preparing on-board tree")
	}
	fmt.Fprintf(w, "Created %s\n", defaults.OnboardDir)

	return nil
}
