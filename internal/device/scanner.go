package device

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/multifx/pedalctl/internal/storage"
)

// ErrNoDevice reports that no mounted volume carries a configuration root.
// Scan failures of every flavor, including timeouts, unwrap to it.
var ErrNoDevice = errors.New("no device found")

// Device is a located configuration root on removable media.
type Device struct {
	// Root is the configuration root, anchored at the marker directory.
	Root storage.Root
	// Path is the OS path of the marker directory.
	Path string
	// Identity describes the device when it carries an identity file.
	Identity Identity
}

// Scanner locates configuration roots under a fixed list of mount
// directories.
type Scanner struct {
	fs     afero.Fs
	mounts []string
	marker string
	logger *slog.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithLogger routes scan diagnostics to logger.
func WithLogger(logger *slog.Logger) ScannerOption {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithFS swaps the filesystem the scanner probes. Tests use this to stage
// mount trees in memory.
func WithFS(fsys afero.Fs) ScannerOption {
	return func(s *Scanner) {
		s.fs = fsys
	}
}

// NewScanner returns a scanner probing mounts, in order, for volumes whose
// top level contains a directory named marker.
func NewScanner(mounts []string, marker string, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		fs:     afero.NewOsFs(),
		mounts: slices.Clone(mounts),
		marker: marker,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mounts returns the candidate mount directories in probe order.
func (s *Scanner) Mounts() []string {
	return slices.Clone(s.mounts)
}

// Scan locates a device, honoring ctx. On a missing device or an expired
// context the error unwraps to [ErrNoDevice]; expiry also carries the
// context cause.
func (s *Scanner) Scan(ctx context.Context) (*Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "device scan aborted"), ErrNoDevice)
	}

	type result struct {
		dev *Device
		err error
	}
	ch := make(chan result, 1)
	go func() {
		path, err := s.locate()
		if err != nil {
			ch <- result{nil, err}
			return
		}
		dev := &Device{
			Root: storage.NewRoot(path, afero.NewBasePathFs(s.fs, path)),
			Path: path,
		}
		dev.Identity = LoadIdentity(dev.Root, s.logger)
		ch <- result{dev, nil}
	}()

	select {
	case r := <-ch:
		return r.dev, r.err
	case <-ctx.Done():
		return nil, errors.Mark(errors.Wrap(ctx.Err(), "device scan timed out"), ErrNoDevice)
	}
}

// locate walks the mount directories. The first one that opens is the only
// one searched: a volume under it either carries the marker or the scan is
// over.
func (s *Scanner) locate() (string, error) {
	for _, mount := range s.mounts {
		entries, err := afero.ReadDir(s.fs, mount)
		if err != nil {
			s.logger.Debug("mount directory unavailable",
				"path", mount,
				"error", err)
			continue
		}

		for _, ent := range entries {
			if !ent.IsDir() {
				continue
			}
			markerPath := filepath.Join(mount, ent.Name(), s.marker)
			info, err := s.fs.Stat(markerPath)
			if err != nil || !info.IsDir() {
				continue
			}
			s.logger.Debug("found configuration root", "path", markerPath)
			return markerPath, nil
		}

		s.logger.Debug("no marker under mount directory", "path", mount)
		return "", errors.Wrapf(ErrNoDevice, "no volume under %s carries %s", mount, s.marker)
	}
	return "", errors.Wrap(ErrNoDevice, "no mount directory available")
}
