// Package config provides configuration management for pedalctl using Viper.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/multifx/pedalctl/internal/paths"
)

// AppName is the application name used for config file naming and the
// environment variable prefix.
const AppName = "pedalctl"

// Config represents the top-level configuration structure.
type Config struct {
	Version     int            `mapstructure:"version" yaml:"version"`
	OnboardDir  string         `mapstructure:"onboard_dir" yaml:"onboard_dir"`
	MountDirs   []string       `mapstructure:"mount_dirs" yaml:"mount_dirs"`
	Marker      string         `mapstructure:"marker" yaml:"marker"`
	ScanTimeout time.Duration  `mapstructure:"scan_timeout" yaml:"scan_timeout"`
	Snapshot    SnapshotConfig `mapstructure:"snapshot" yaml:"snapshot"`
	Watch       WatchConfig    `mapstructure:"watch" yaml:"watch"`
}

// SnapshotConfig controls on-board tree snapshots.
type SnapshotConfig struct {
	// Dir is where snapshots are stored. Defaults to the XDG data directory.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// Retention is how many snapshots to keep when pruning.
	Retention int `mapstructure:"retention" yaml:"retention"`
}

// WatchConfig controls the watch command's hotplug loop.
type WatchConfig struct {
	// Debounce is how long to wait after a mount event before scanning,
	// giving the automounter time to finish.
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
	// PollInterval is the fallback scan interval used when the mount roots
	// cannot be watched for events.
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
// Calling it again resets any previously loaded state.
func Init() {
	viper.Reset()

	// Config file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".") // Current directory
	if dir := os.Getenv("PEDALCTL_CONFIG_DIR"); dir != "" {
		viper.AddConfigPath(dir)
	} else {
		viper.AddConfigPath(paths.ConfigDir())
	}

	// Environment variable support
	viper.SetEnvPrefix(strings.ToUpper(AppName))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("version", 1)
	viper.SetDefault("onboard_dir", paths.DefaultOnboardDir())
	viper.SetDefault("mount_dirs", paths.MountRoots())
	viper.SetDefault("marker", paths.OnboardDirName)
	viper.SetDefault("scan_timeout", 5*time.Second)
	viper.SetDefault("snapshot.dir", paths.SnapshotsDir())
	viper.SetDefault("snapshot.retention", 5)
	viper.SetDefault("watch.debounce", 500*time.Millisecond)
	viper.SetDefault("watch.poll_interval", 2*time.Second)
}

// Default returns a configuration populated with default values.
func Default() *Config {
	return &Config{
		Version:     1,
		OnboardDir:  paths.DefaultOnboardDir(),
		MountDirs:   paths.MountRoots(),
		Marker:      paths.OnboardDirName,
		ScanTimeout: 5 * time.Second,
		Snapshot: SnapshotConfig{
			Dir:       paths.SnapshotsDir(),
			Retention: 5,
		},
		Watch: WatchConfig{
			Debounce:     500 * time.Millisecond,
			PollInterval: 2 * time.Second,
		},
	}
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations.
// Returns the loaded configuration or default values if no file is found (when path is empty).
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		// If config file not found...
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// If user specified a path, this is an error
			if path != "" {
				return nil, errors.Wrapf(err, "config file not found at %s", path)
			}
			// Otherwise (implicit load), it's fine to use defaults
		} else {
			// Real read error (missing explicit file, parsing, permissions, etc)
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errs[0], "validating config")
	}

	return &cfg, nil
}
