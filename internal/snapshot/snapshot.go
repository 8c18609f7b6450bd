package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/multifx/pedalctl/internal/paths"
	"github.com/multifx/pedalctl/internal/storage"
	"github.com/multifx/pedalctl/pkg/fileutil"
)

// Manager handles snapshot creation, restoration, and pruning.
//
// Snapshots live on the host, grouped by label:
// <dir>/<label>/<ID>/ holds the captured files under their source-relative
// paths plus a manifest.json. File modes are not preserved: the trees being
// protected live on FAT media where modes carry no information.
type Manager struct {
	dir       string
	retention int
	now       func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithDir sets the snapshot root directory.
func WithDir(dir string) Option {
	return func(m *Manager) {
		m.dir = dir
	}
}

// WithRetention sets how many snapshots Prune keeps by default.
func WithRetention(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retention = n
		}
	}
}

// WithClock overrides the time source. Tests use this to get stable,
// distinct snapshot IDs.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a snapshot Manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		dir:       paths.SnapshotsDir(),
		retention: DefaultRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Retention returns the configured keep count for pruning.
func (m *Manager) Retention() int {
	return m.retention
}

// Create captures the named subtrees of root into a new snapshot and
// returns its manifest. Missing subtrees are skipped; if nothing at all is
// captured the snapshot is discarded and ErrNoFiles returned.
func (m *Manager) Create(label string, root storage.Root, subtrees ...string) (*Manifest, error) {
	if err := checkLabel(label); err != nil {
		return nil, err
	}
	if len(subtrees) == 0 {
		return nil, errors.New("at least one subtree is required")
	}

	now := m.now()
	id := now.Format("20060102T150405")
	snapDir := m.snapshotPath(label, id)

	if err := os.MkdirAll(snapDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating snapshot directory")
	}

	var files []File
	for _, sub := range subtrees {
		ok, err := root.Exists(sub)
		if err != nil {
			return nil, errors.Wrapf(err, "checking %s", sub)
		}
		if !ok {
			continue
		}

		dir, err := root.IsDir(sub)
		if err != nil {
			return nil, errors.Wrapf(err, "checking %s", sub)
		}
		if !dir {
			f, err := m.captureFile(root, sub, snapDir)
			if err != nil {
				return nil, err
			}
			files = append(files, f)
			continue
		}

		err = walkFiles(root, sub, func(rel string) error {
			f, err := m.captureFile(root, rel, snapDir)
			if err != nil {
				return err
			}
			files = append(files, f)
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "capturing %s", sub)
		}
	}

	if len(files) == 0 {
		os.RemoveAll(snapDir)
		return nil, errors.Wrapf(ErrNoFiles, "label %s", label)
	}

	manifest := &Manifest{
		Version:   ManifestVersion,
		CreatedAt: now.UTC(),
		Label:     label,
		Root:      root.Name(),
		Files:     files,
		Tool:      Version,
		ID:        id,
	}

	if err := fileutil.AtomicWriteJSON(filepath.Join(snapDir, "manifest.json"), manifest); err != nil {
		return nil, errors.Wrap(err, "writing manifest")
	}
	return manifest, nil
}

// Restore writes the files of a snapshot back into root, verifying each
// stored file against its recorded hash first. Files created since the
// snapshot are left in place; only recorded paths are written.
func (m *Manager) Restore(label, id string, root storage.Root) error {
	manifest, err := m.Get(label, id)
	if err != nil {
		return err
	}

	snapDir := m.snapshotPath(label, id)
	for _, f := range manifest.Files {
		stored := filepath.Join(snapDir, filepath.FromSlash(f.Path))

		hash, err := hashFile(stored)
		if err != nil {
			return errors.Wrapf(err, "reading snapshot file %s", f.Path)
		}
		if hash != f.SHA256 {
			return errors.Wrapf(ErrSnapshotCorrupted, "file %s hash mismatch", f.Path)
		}

		data, err := os.ReadFile(stored)
		if err != nil {
			return errors.Wrapf(err, "reading snapshot file %s", f.Path)
		}
		if err := root.MkDirAll(path.Dir(f.Path)); err != nil {
			return errors.Wrapf(err, "restoring %s", f.Path)
		}
		if err := root.WriteFile(f.Path, data); err != nil {
			return errors.Wrapf(err, "restoring %s", f.Path)
		}
	}
	return nil
}

// List returns all snapshots under a label, newest first.
func (m *Manager) List(label string) ([]Manifest, error) {
	if err := checkLabel(label); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(m.dir, label))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSnapshots
		}
		return nil, errors.Wrap(err, "reading snapshot directory")
	}

	manifests := make([]Manifest, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := m.Get(label, entry.Name())
		if err != nil {
			// Skip invalid snapshot directories
			continue
		}
		manifests = append(manifests, *manifest)
	}

	if len(manifests) == 0 {
		return nil, ErrNoSnapshots
	}

	slices.SortFunc(manifests, func(a, b Manifest) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return manifests, nil
}

// Get returns the manifest of one snapshot.
func (m *Manager) Get(label, id string) (*Manifest, error) {
	if err := checkLabel(label); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, errors.New("snapshot ID is required")
	}

	data, err := os.ReadFile(filepath.Join(m.snapshotPath(label, id), "manifest.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNoSnapshots, "snapshot %s not found", id)
		}
		return nil, errors.Wrap(err, "reading manifest")
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}
	manifest.ID = id
	return &manifest, nil
}

// Prune removes snapshots beyond the newest keep for the label and returns
// how many were removed.
func (m *Manager) Prune(label string, keep int) (int, error) {
	if keep < 0 {
		return 0, errors.New("keep must be non-negative")
	}

	manifests, err := m.List(label)
	if err != nil {
		if errors.Is(err, ErrNoSnapshots) {
			return 0, nil
		}
		return 0, err
	}

	pruned := 0
	for i := keep; i < len(manifests); i++ {
		if err := os.RemoveAll(m.snapshotPath(label, manifests[i].ID)); err != nil {
			return pruned, errors.Wrapf(err, "removing snapshot %s", manifests[i].ID)
		}
		pruned++
	}
	return pruned, nil
}

func (m *Manager) snapshotPath(label, id string) string {
	return filepath.Join(m.dir, label, id)
}

// captureFile copies one source file into the snapshot, hashing as it goes.
func (m *Manager) captureFile(root storage.Root, rel, snapDir string) (File, error) {
	src, err := root.Open(rel)
	if err != nil {
		return File{}, errors.Wrapf(err, "opening %s", rel)
	}
	defer src.Close()

	stored := filepath.Join(snapDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(stored), 0o755); err != nil {
		return File{}, errors.Wrap(err, "creating snapshot subdirectory")
	}

	dst, err := os.OpenFile(stored, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return File{}, errors.Wrapf(err, "creating snapshot file for %s", rel)
	}

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(dst, h), src)
	if err != nil {
		dst.Close()
		return File{}, errors.Wrapf(err, "copying %s", rel)
	}
	if err := dst.Close(); err != nil {
		return File{}, errors.Wrapf(err, "closing snapshot file for %s", rel)
	}

	return File{
		Path:   rel,
		Size:   n,
		SHA256: hex.EncodeToString(h.Sum(nil)),
	}, nil
}

// walkFiles visits every file under dir, depth-first in listing order.
func walkFiles(root storage.Root, dir string, visit func(rel string) error) error {
	entries, err := root.List(dir)
	if err != nil {
		return err
	}
	for _, ent := range entries {
		rel := path.Join(dir, ent.Name)
		if ent.Dir {
			if err := walkFiles(root, rel, visit); err != nil {
				return err
			}
			continue
		}
		if err := visit(rel); err != nil {
			return err
		}
	}
	return nil
}

// hashFile computes the SHA256 hash of a file on the host filesystem.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "opening file")
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrap(err, "reading file")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// checkLabel rejects labels that cannot serve as a single path segment.
func checkLabel(label string) error {
	if label == "" {
		return errors.New("label is required")
	}
	if strings.ContainsAny(label, `/\`) || label != filepath.Base(label) {
		return errors.Newf("invalid label %q", label)
	}
	return nil
}
