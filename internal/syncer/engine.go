package syncer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/multifx/pedalctl/internal/device"
	"github.com/multifx/pedalctl/internal/layout"
	"github.com/multifx/pedalctl/internal/snapshot"
	"github.com/multifx/pedalctl/internal/storage"
)

// DefaultScanTimeout bounds the device scan inside Load and Save.
const DefaultScanTimeout = 5 * time.Second

// DefaultFailDelay is how long Save waits before reporting a missing
// device, so retry loops and impatient re-runs do not spin the scan.
const DefaultFailDelay = time.Second

// SnapshotLabel groups the safety snapshots Load takes before overwriting
// the on-board tree.
const SnapshotLabel = "pre-load"

// Result summarizes one Load or Save run.
type Result struct {
	// Op is the correlation id carried by every log line of the run.
	Op string
	// Device is the OS path of the device configuration root.
	Device string
	// Identity describes the device, when it declares one.
	Identity device.Identity
	// Profiles and Plugins report what each mirror pass wrote.
	Profiles storage.CopyStats
	Plugins  storage.CopyStats
	// Snapshot is the id of the safety snapshot, empty when none was taken.
	Snapshot string
	// Duration is the wall-clock time of the whole run.
	Duration time.Duration
}

// Engine synchronizes the on-board configuration tree with a device. A
// mutex serializes runs so watch-triggered loads cannot interleave with a
// manual one.
type Engine struct {
	mu          sync.Mutex
	onboard     storage.Root
	scanner     *device.Scanner
	snapshots   *snapshot.Manager
	logger      *slog.Logger
	scanTimeout time.Duration
	failDelay   time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes engine diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithSnapshots enables the pre-load safety snapshot, stored through m.
// Without this option Load overwrites the on-board tree directly.
func WithSnapshots(m *snapshot.Manager) Option {
	return func(e *Engine) {
		e.snapshots = m
	}
}

// WithScanTimeout bounds the device scan.
func WithScanTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.scanTimeout = d
		}
	}
}

// WithFailDelay sets how long Save waits before reporting a missing device.
func WithFailDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.failDelay = d
		}
	}
}

// NewEngine returns an engine mirroring between the on-board root and
// whatever device the scanner locates.
func NewEngine(onboard storage.Root, scanner *device.Scanner, opts ...Option) *Engine {
	e := &Engine{
		onboard:     onboard,
		scanner:     scanner,
		logger:      slog.Default(),
		scanTimeout: DefaultScanTimeout,
		failDelay:   DefaultFailDelay,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load pulls the device tree onto the on-board root, profiles first, then
// plugins. Both roots are migrated to the structured layout and the
// on-board payload is snapshotted before anything overwrites it. When no
// device is present the on-board tree is left untouched and the error
// unwraps to [device.ErrNoDevice].
func (e *Engine) Load(ctx context.Context) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	op := uuid.NewString()
	logger := e.logger.With("op", op)
	start := time.Now()

	dev, err := e.scan(ctx, logger)
	if err != nil {
		return nil, err
	}

	res := &Result{Op: op, Device: dev.Path, Identity: dev.Identity}

	// Loose on-board files move into their payload directories before the
	// snapshot so it captures them.
	if err := layout.Migrate(e.onboard, logger); err != nil {
		return nil, errors.Wrap(err, "migrating on-board layout")
	}

	if e.snapshots != nil {
		res.Snapshot, err = e.safetySnapshot(logger)
		if err != nil {
			return nil, err
		}
	}

	if err := layout.Migrate(dev.Root, logger); err != nil {
		return nil, errors.Wrap(err, "migrating device layout")
	}

	if res.Profiles, err = Mirror(ctx, e.onboard, dev.Root, layout.ProfilesDir, logger); err != nil {
		return nil, errors.Wrap(err, "loading profiles")
	}
	if res.Plugins, err = Mirror(ctx, e.onboard, dev.Root, layout.PluginsDir, logger); err != nil {
		return nil, errors.Wrap(err, "loading plugins")
	}

	res.Duration = time.Since(start)
	logger.Info("load complete",
		"device", dev.Path,
		"profiles", res.Profiles.Files,
		"plugins", res.Plugins.Files,
		"duration", res.Duration)
	return res, nil
}

// Save pushes the on-board tree onto the device, profiles first, then
// plugins. No snapshot is taken: the on-board side is the one that
// survives. When no device is present Save waits the fail delay, then
// returns an error unwrapping to [device.ErrNoDevice].
func (e *Engine) Save(ctx context.Context) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	op := uuid.NewString()
	logger := e.logger.With("op", op)
	start := time.Now()

	dev, err := e.scan(ctx, logger)
	if err != nil {
		if errors.Is(err, device.ErrNoDevice) {
			e.pause(ctx)
		}
		return nil, err
	}

	res := &Result{Op: op, Device: dev.Path, Identity: dev.Identity}

	if err := layout.Migrate(e.onboard, logger); err != nil {
		return nil, errors.Wrap(err, "migrating on-board layout")
	}
	if err := layout.Migrate(dev.Root, logger); err != nil {
		return nil, errors.Wrap(err, "migrating device layout")
	}

	if res.Profiles, err = Mirror(ctx, dev.Root, e.onboard, layout.ProfilesDir, logger); err != nil {
		return nil, errors.Wrap(err, "saving profiles")
	}
	if res.Plugins, err = Mirror(ctx, dev.Root, e.onboard, layout.PluginsDir, logger); err != nil {
		return nil, errors.Wrap(err, "saving plugins")
	}

	res.Duration = time.Since(start)
	logger.Info("save complete",
		"device", dev.Path,
		"profiles", res.Profiles.Files,
		"plugins", res.Plugins.Files,
		"duration", res.Duration)
	return res, nil
}

// scan locates a device within the engine's scan timeout.
func (e *Engine) scan(ctx context.Context, logger *slog.Logger) (*device.Device, error) {
	scanCtx, cancel := context.WithTimeout(ctx, e.scanTimeout)
	defer cancel()

	dev, err := e.scanner.Scan(scanCtx)
	if err != nil {
		return nil, err
	}
	logger.Debug("device located",
		"path", dev.Path,
		"identity", dev.Identity.String())
	return dev, nil
}

// safetySnapshot captures the on-board payload subtrees and prunes old
// snapshots down to the manager's retention. An empty payload is not worth
// a snapshot; a failed prune is logged and otherwise ignored.
func (e *Engine) safetySnapshot(logger *slog.Logger) (string, error) {
	manifest, err := e.snapshots.Create(SnapshotLabel, e.onboard, layout.ProfilesDir, layout.PluginsDir)
	if err != nil {
		if errors.Is(err, snapshot.ErrNoFiles) {
			logger.Debug("nothing to snapshot")
			return "", nil
		}
		return "", errors.Wrap(err, "snapshotting on-board tree")
	}
	logger.Info("snapshot taken",
		"id", manifest.ID,
		"files", len(manifest.Files))

	if _, err := e.snapshots.Prune(SnapshotLabel, e.snapshots.Retention()); err != nil {
		logger.Warn("pruning old snapshots", "error", err)
	}
	return manifest.ID, nil
}

// pause waits out the fail delay, honoring cancellation.
func (e *Engine) pause(ctx context.Context) {
	if e.failDelay <= 0 {
		return
	}
	t := time.NewTimer(e.failDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
