package paths

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// appName is the directory name used for pedalctl's own config, data, and
// state directories.
const appName = "pedalctl"

// OnboardDirName is the name of the default on-board configuration tree
// under the user's data directory. It matches the marker directory name on
// pedal media so the same tree layout works for both.
const OnboardDirName = "multifx"

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")

	// ErrInvalidPath indicates the provided path is malformed or invalid.
	ErrInvalidPath = errors.New("invalid path")
)

// DefaultDirPerm is the default permission for newly created directories (private).
const DefaultDirPerm = 0o700

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm (0700) is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// Home returns the user's home directory.
// This is a thin wrapper around os.UserHomeDir for consistency.
// Note: It returns an empty string on error for backward compatibility.
// Use ResolveHome for proper error handling.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// DataHome returns the XDG data home directory.
// On Linux: ~/.local/share
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func DataHome() string {
	return xdg.DataHome
}

// CacheHome returns the XDG cache home directory.
// On Linux: ~/.cache
// On macOS: ~/Library/Caches
// On Windows: %LOCALAPPDATA%\cache
func CacheHome() string {
	return xdg.CacheHome
}

// StateHome returns the XDG state home directory.
// On Linux: ~/.local/state
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func StateHome() string {
	return xdg.StateHome
}

// ConfigDir returns pedalctl's configuration directory.
// Returns: <ConfigHome>/pedalctl/
func ConfigDir() string {
	return filepath.Join(ConfigHome(), appName)
}

// ConfigFile returns the path of pedalctl's configuration file.
// Returns: <ConfigDir>/config.yaml
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DataDir returns pedalctl's data directory.
// Returns: <DataHome>/pedalctl/
func DataDir() string {
	return filepath.Join(DataHome(), appName)
}

// SnapshotsDir returns the directory for on-board tree snapshots.
// Returns: <DataDir>/snapshots/
func SnapshotsDir() string {
	return filepath.Join(DataDir(), "snapshots")
}

// StateDir returns pedalctl's state directory, used for watch session logs.
// Returns: <StateHome>/pedalctl/
func StateDir() string {
	return filepath.Join(StateHome(), appName)
}

// DefaultOnboardDir returns the default on-board configuration tree.
// Returns: <DataHome>/multifx/
func DefaultOnboardDir() string {
	return filepath.Join(DataHome(), OnboardDirName)
}

// MountRoots returns the directories where the operating system auto-mounts
// removable volumes, most specific first.
//
// Per platform:
//   - linux: /run/media/<user>, /media/<user>, /media
//   - darwin: /Volumes
//   - windows: none (configure scan directories explicitly)
func MountRoots() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/Volumes"}
	case "windows":
		return nil
	default:
		username := currentUsername()
		if username == "" {
			return []string{"/media"}
		}
		return []string{
			filepath.Join("/run/media", username),
			filepath.Join("/media", username),
			"/media",
		}
	}
}

// currentUsername resolves the current user's name, preferring the USER
// environment variable since os/user can fail in static builds.
func currentUsername() string {
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}
