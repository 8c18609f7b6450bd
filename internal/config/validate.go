package config

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates the version field is not a version this
	// build understands.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidMarker indicates the marker is not a bare directory name.
	ErrInvalidMarker = errors.New("marker must be a bare directory name")

	// ErrInvalidRetention indicates snapshot retention is below the minimum.
	ErrInvalidRetention = errors.New("snapshot retention must be >= 1")

	// ErrInvalidInterval indicates a duration field is zero or negative.
	ErrInvalidInterval = errors.New("interval must be positive")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	// Only version 1 exists so far
	if cfg.Version != 1 {
		errs = append(errs, errors.Wrapf(ErrUnsupportedVersion, "version %d", cfg.Version))
	}

	if cfg.OnboardDir != "" {
		if err := validatePath(cfg.OnboardDir); err != nil {
			errs = append(errs, &PathError{
				Field: "onboard_dir",
				Path:  cfg.OnboardDir,
				Err:   err,
			})
		}
	}

	for _, dir := range cfg.MountDirs {
		if err := validatePath(dir); err != nil {
			errs = append(errs, &PathError{
				Field: "mount_dirs",
				Path:  dir,
				Err:   err,
			})
		}
	}

	// The marker is matched against directory names during scanning, so it
	// must not contain separators.
	if cfg.Marker == "" || strings.ContainsAny(cfg.Marker, `/\`) || cfg.Marker != filepath.Base(cfg.Marker) {
		errs = append(errs, errors.Wrapf(ErrInvalidMarker, "marker %q", cfg.Marker))
	}

	if cfg.ScanTimeout <= 0 {
		errs = append(errs, errors.Wrap(ErrInvalidInterval, "scan_timeout"))
	}

	if cfg.Snapshot.Dir != "" {
		if err := validatePath(cfg.Snapshot.Dir); err != nil {
			errs = append(errs, &PathError{
				Field: "snapshot.dir",
				Path:  cfg.Snapshot.Dir,
				Err:   err,
			})
		}
	}
	if cfg.Snapshot.Retention < 1 {
		errs = append(errs, ErrInvalidRetention)
	}

	if cfg.Watch.Debounce <= 0 {
		errs = append(errs, errors.Wrap(ErrInvalidInterval, "watch.debounce"))
	}
	if cfg.Watch.PollInterval <= 0 {
		errs = append(errs, errors.Wrap(ErrInvalidInterval, "watch.poll_interval"))
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}

	// Check for null bytes which are never valid in paths
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	// Clean the path and check it's not empty after cleaning
	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}
