package storage

import (
	"context"
	"io"
	"path"

	"github.com/cockroachdb/errors"
)

// CopyStats reports what a CopyAll pass wrote.
type CopyStats struct {
	// Files is the number of files written.
	Files int
	// Bytes is the total number of bytes written.
	Bytes int64
}

func (s *CopyStats) add(other CopyStats) {
	s.Files += other.Files
	s.Bytes += other.Bytes
}

// CopyAll copies the tree rooted at srcDir in src into dstDir in dst,
// creating directories as needed and overwriting existing files. Files
// already present under dstDir but absent from srcDir are left alone.
//
// The context is checked between entries, so a cancelled copy stops at a
// file boundary and leaves a partial destination tree.
func CopyAll(ctx context.Context, dst Root, dstDir string, src Root, srcDir string) (CopyStats, error) {
	var stats CopyStats

	entries, err := src.List(srcDir)
	if err != nil {
		return stats, err
	}

	if err := dst.MkDirAll(dstDir); err != nil {
		return stats, err
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return stats, errors.Wrap(err, "copy interrupted")
		}

		srcPath := path.Join(srcDir, entry.Name)
		dstPath := path.Join(dstDir, entry.Name)

		if entry.Dir {
			sub, err := CopyAll(ctx, dst, dstPath, src, srcPath)
			stats.add(sub)
			if err != nil {
				return stats, err
			}
			continue
		}

		n, err := copyFile(dst, dstPath, src, srcPath)
		if err != nil {
			return stats, err
		}
		stats.Files++
		stats.Bytes += n
	}

	return stats, nil
}

// copyFile streams a single file from src to dst.
func copyFile(dst Root, dstPath string, src Root, srcPath string) (int64, error) {
	in, err := src.Open(srcPath)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := dst.Create(dstPath)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, errors.Wrapf(err, "copying %s", srcPath)
	}

	if err := out.Close(); err != nil {
		return n, errors.Wrapf(err, "closing %s", dstPath)
	}
	return n, nil
}
