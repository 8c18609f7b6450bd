package syncer

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/multifx/pedalctl/internal/storage"
)

// StagePrefix names the staging directories Mirror creates at the top level
// of the destination root. Staging happens inside the destination so the
// final rename never crosses a filesystem boundary; a leftover directory
// with this prefix means an interrupted swap.
const StagePrefix = ".pedalctl-stage-"

// Mirror makes dst/name an exact copy of src/name.
//
// The copy lands in a fresh staging directory first; only after it completes
// is the old destination subtree removed and the staged copy renamed into
// place. A failure during the copy removes the staging directory and leaves
// the destination as it was.
//
// When src/name is absent, dst/name is removed and recreated empty. A plain
// file at src/name gets the same treatment: loose files are the migrator's
// problem, not the mirror's.
func Mirror(ctx context.Context, dst, src storage.Root, name string, logger *slog.Logger) (storage.CopyStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var stats storage.CopyStats

	present, err := src.Exists(name)
	if err != nil {
		return stats, errors.Wrapf(err, "probing %s on %s", name, src.Name())
	}
	if present {
		dir, err := src.IsDir(name)
		if err != nil {
			return stats, errors.Wrapf(err, "probing %s on %s", name, src.Name())
		}
		if !dir {
			logger.Warn("source subtree is a plain file, treating as absent",
				"subtree", name,
				"root", src.Name())
			present = false
		}
	}

	if !present {
		if err := dst.RemoveAll(name); err != nil {
			return stats, errors.Wrapf(err, "clearing %s on %s", name, dst.Name())
		}
		if err := dst.MkDirAll(name); err != nil {
			return stats, errors.Wrapf(err, "recreating %s on %s", name, dst.Name())
		}
		logger.Info("source subtree absent, destination emptied",
			"subtree", name,
			"root", dst.Name())
		return stats, nil
	}

	stage := StagePrefix + uuid.NewString()

	stats, err = storage.CopyAll(ctx, dst, stage, src, name)
	if err != nil {
		removeStage(dst, stage, logger)
		return stats, errors.Wrapf(err, "staging %s", name)
	}

	if err := dst.RemoveAll(name); err != nil {
		removeStage(dst, stage, logger)
		return stats, errors.Wrapf(err, "replacing %s on %s", name, dst.Name())
	}

	if err := dst.Move(stage, name); err != nil {
		// The old subtree is already gone, so the staged copy is the only
		// replica left. It stays on disk for manual recovery.
		return stats, errors.Wrapf(err, "activating staged copy %s of %s", stage, name)
	}

	logger.Debug("subtree mirrored",
		"subtree", name,
		"files", stats.Files,
		"bytes", stats.Bytes)
	return stats, nil
}

func removeStage(dst storage.Root, stage string, logger *slog.Logger) {
	if err := dst.RemoveAll(stage); err != nil {
		logger.Warn("removing staging directory",
			"path", stage,
			"error", err)
	}
}
