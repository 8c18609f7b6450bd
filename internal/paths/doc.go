// Package paths provides path resolution for pedalctl's host-side directories
// and the locations where removable pedal media appears.
//
// # XDG Base Directory Compliance
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base Directory
// Specification compliance. On Linux and macOS, paths follow XDG conventions
// (~/.config, ~/.local/share, ~/.cache, ~/.local/state).
//
// # Directory Layout
//
//	paths.ConfigFile()        // <ConfigHome>/pedalctl/config.yaml
//	paths.SnapshotsDir()      // <DataHome>/pedalctl/snapshots/
//	paths.StateDir()          // <StateHome>/pedalctl/
//	paths.DefaultOnboardDir() // <DataHome>/multifx/
//
// The on-board directory is the working copy of the pedal's configuration.
// It doubles as the simulated device tree when no physical pedal is mounted.
//
// # Removable Media
//
// [MountRoots] returns the directories where the operating system auto-mounts
// removable volumes, such as /run/media/<user> on Linux or /Volumes on macOS.
// The device scanner walks these roots looking for a pedal marker directory.
package paths
