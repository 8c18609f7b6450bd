package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/multifx/pedalctl/internal/config"
	"github.com/multifx/pedalctl/internal/editor"
	"github.com/multifx/pedalctl/internal/paths"
)

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage pedalctl configuration",
	Long: `Manage pedalctl configuration stored in the XDG config directory.

Without a subcommand, lists all configuration values.`,
	Example: `  # List all configuration
  pedalctl config

  # Get a specific value
  pedalctl config get onboard_dir

  # Set a value
  pedalctl config set scan_timeout 10s

See Also: pedalctl init, pedalctl doctor`,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a single configuration value by key.

Supports dot notation for nested keys. Array values are printed one per line.`,
	Example: `  # Get the on-board directory
  pedalctl config get onboard_dir

  # Get the mount roots
  pedalctl config get mount_dirs

  # Get a nested value
  pedalctl config get snapshot.retention

See Also: pedalctl config set, pedalctl config list`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and write the config file.

For array values like mount_dirs, use comma-separated values. Durations
take Go syntax (5s, 500ms). The updated configuration is validated before
anything is written.`,
	Example: `  # Set the scan timeout
  pedalctl config set scan_timeout 10s

  # Set the mount roots
  pedalctl config set mount_dirs /media/user1,/run/media/user1

  # Set the snapshot retention
  pedalctl config set snapshot.retention 10

See Also: pedalctl config get, pedalctl config list`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Long:  `List all configuration values in YAML format.`,
	Example: `  # List all configuration
  pedalctl config list

See Also: pedalctl config get, pedalctl config set`,
	RunE: runConfigList,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open configuration in $EDITOR",
	Long: `Open the configuration file in your default editor.

Uses $EDITOR, then $VISUAL, then nano or vi.
If no configuration file exists, prints an error suggesting to run 'pedalctl init'.`,
	Example: `  # Open config in default editor
  pedalctl config edit

  # Open with specific editor
  EDITOR=nano pedalctl config edit

See Also: pedalctl config list, pedalctl init`,
	RunE: runConfigEdit,
}

func runConfigGet(_ *cobra.Command, args []string) error {
	return runConfigGetWithWriter(os.Stdout, args[0])
}

func runConfigGetWithWriter(w io.Writer, key string) error {
	if !viper.IsSet(key) {
		fmt.Fprintln(w, "not set")
		return nil
	}

	val := viper.Get(key)

	switch v := val.(type) {
	case []any:
		// Array values - print one per line
		for _, item := range v {
			fmt.Fprintln(w, item)
		}
	case []string:
		for _, item := range v {
			fmt.Fprintln(w, item)
		}
	default:
		fmt.Fprintln(w, viper.GetString(key))
	}

	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	return runConfigSetWithWriter(os.Stdout, args[0], args[1])
}

func runConfigSetWithWriter(w io.Writer, key, value string) error {
	switch key {
	case "mount_dirs":
		dirs := splitList(value)
		if len(dirs) == 0 {
			return errors.New("no mount directories specified")
		}
		viper.Set(key, dirs)

	case "scan_timeout", "watch.debounce", "watch.poll_interval":
		if _, err := time.ParseDuration(value); err != nil {
			return errors.Newf("invalid duration %q (try 5s or 500ms)", value)
		}
		viper.Set(key, value)

	case "version", "snapshot.retention":
		n, err := strconv.Atoi(value)
		if err != nil {
			return errors.Newf("%s must be an integer", key)
		}
		viper.Set(key, n)

	default:
		viper.Set(key, value)
	}

	updated, err := writeConfig()
	if err != nil {
		return err
	}
	cfg = updated

	fmt.Fprintf(w, "Set %s = %s\n", key, value)
	return nil
}

func runConfigList(_ *cobra.Command, _ []string) error {
	return runConfigListWithWriter(os.Stdout)
}

func runConfigListWithWriter(w io.Writer) error {
	data, err := yaml.Marshal(toFileConfig(activeConfig()))
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	fmt.Fprint(w, string(data))
	return nil
}

func runConfigEdit(_ *cobra.Command, _ []string) error {
	configPath := configFilePath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return errors.Newf("config file not found at %s\nRun 'pedalctl init' to create it", configPath)
	}

	return editor.Open(configPath)
}

/// configFilePath is where config reads and writes land: the --config
// override when given, the canonical location otherwise.
func configFilePath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return paths.ConfigFile()
}

// splitList splits a comma-separated string, dropping empty segments.
func splitList(s string) []string {
	var items []string
	for item := range strings.SplitSeq(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// writeConfig materializes the effective configuration, validates it, and
// writes it to the config file.
func writeConfig() (*config.Config, error) {
	updated, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if err := writeConfigFile(configFilePath(), updated); err != nil {
		return nil, err
	}
	return updated, nil
}
