package device

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// Watcher defaults, used when the configured durations are missing.
const (
	DefaultDebounce     = 500 * time.Millisecond
	DefaultPollInterval = 2 * time.Second
)

// Watcher waits for devices to come and go. Mount directories are watched
// with fsnotify where possible; a polling fallback covers mounts that
// appear under unwatchable paths and events the platform never delivers.
type Watcher struct {
	scanner  *Scanner
	debounce time.Duration
	poll     time.Duration
	logger   *slog.Logger
}

// NewWatcher wraps scanner in hotplug detection. Non-positive durations
// fall back to the package defaults.
func NewWatcher(scanner *Scanner, debounce, poll time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		scanner:  scanner,
		debounce: debounce,
		poll:     poll,
		logger:   logger,
	}
}

// Watch blocks until ctx is done, calling onDevice every time a device
// appears or is replaced by a different one. The callback runs on the
// watch goroutine; overlapping work is the callback's problem to
// serialize. An initial scan runs before the first event so a device that
// is already plugged in triggers immediately.
func (w *Watcher) Watch(ctx context.Context, onDevice func(context.Context, *Device)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating filesystem watcher")
	}
	defer fsw.Close()

	watched := 0
	for _, dir := range w.scanner.Mounts() {
		if err := fsw.Add(dir); err != nil {
			w.logger.Debug("cannot watch mount directory",
				"path", dir,
				"error", err)
			continue
		}
		watched++
	}
	if watched == 0 {
		w.logger.Info("no mount directory watchable, relying on polling",
			"interval", w.poll)
	}

	debounce := time.NewTimer(w.debounce)
	debounce.Stop()
	defer debounce.Stop()

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	var lastPath string
	w.attempt(ctx, &lastPath, onDevice)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename) {
				debounce.Reset(w.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("filesystem watch error", "error", err)

		case <-debounce.C:
			w.attempt(ctx, &lastPath, onDevice)

		case <-ticker.C:
			w.attempt(ctx, &lastPath, onDevice)
		}
	}
}

// attempt runs one scan and fires the callback on an absent-to-present
// transition or a device change.
func (w *Watcher) attempt(ctx context.Context, lastPath *string, onDevice func(context.Context, *Device)) {
	op := uuid.NewString()

	dev, err := w.scanner.Scan(ctx)
	if err != nil {
		if *lastPath != "" {
			w.logger.Info("device removed", "op", op, "path", *lastPath)
		} else {
			w.logger.Debug("no device present", "op", op)
		}
		*lastPath = ""
		return
	}

	if dev.Path == *lastPath {
		w.logger.Debug("device unchanged", "op", op, "path", dev.Path)
		return
	}
	*lastPath = dev.Path
	w.logger.Info("device detected",
		"op", op,
		"path", dev.Path,
		"device", dev.Identity.String())
	onDevice(ctx, dev)
}
