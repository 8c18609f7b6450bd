// Package config provides configuration management for the pedalctl CLI.
//
// This package handles loading and validating pedalctl's own configuration
// file. It is distinct from the pedal's on-board configuration tree, which is
// managed by the layout and syncer packages.
//
// # Configuration File
//
// The default configuration file location is ~/.config/pedalctl/config.yaml.
// The configuration file uses YAML format with the following structure:
//
//	version: 1
//	onboard_dir: /home/alice/.local/share/multifx   # optional override
//	mount_dirs:                                     # optional override
//	  - /run/media/alice
//	  - /media/alice
//	marker: multifx
//	scan_timeout: 5s
//	snapshot:
//	  retention: 5
//	watch:
//	  debounce: 500ms
//	  poll_interval: 2s
//
// # Loading Configuration
//
// Call [Init] once at startup, then [Load]:
//
//	config.Init()
//	cfg, err := config.Load("")
//	if err != nil {
//	    return fmt.Errorf("loading config: %w", err)
//	}
//
// An empty path searches the default locations and falls back to defaults
// when no file exists. A non-empty path must name an existing file.
//
// # Environment Variables
//
// Every key can be overridden through the environment with a PEDALCTL_
// prefix, for example PEDALCTL_ONBOARD_DIR or PEDALCTL_SCAN_TIMEOUT.
//
// # Validation
//
// All loaded configurations are validated automatically. Use [Validate] to
// check a configuration built by hand.
package config
