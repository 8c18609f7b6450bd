package snapshot

import (
	"time"

	"github.com/cockroachdb/errors"
)

// Manifest format version for forward compatibility.
const ManifestVersion = 1

// DefaultRetention is the number of snapshots kept per label when pruning.
const DefaultRetention = 5

// Version is set at build time via ldflags.
var Version = "dev"

// Sentinel errors for snapshot operations.
var (
	// ErrNoSnapshots indicates no snapshots exist for the requested label.
	ErrNoSnapshots = errors.New("no snapshots found")

	// ErrSnapshotCorrupted indicates stored file integrity verification
	// failed against the manifest.
	ErrSnapshotCorrupted = errors.New("snapshot corrupted")

	// ErrNoFiles indicates the requested subtrees contained nothing to
	// snapshot. Callers protecting a possibly-empty tree treat this as a
	// non-event.
	ErrNoFiles = errors.New("nothing to snapshot")
)

// Manifest describes one snapshot. It is stored as manifest.json in the
// snapshot directory.
type Manifest struct {
	// Version is the manifest format version.
	Version int `json:"version"`

	// CreatedAt is when the snapshot was taken, in UTC.
	CreatedAt time.Time `json:"created_at"`

	// Label groups snapshots by purpose, e.g. "pre-load".
	Label string `json:"label"`

	// Root identifies the tree the snapshot was taken from.
	Root string `json:"root"`

	// Files lists every captured file.
	Files []File `json:"files"`

	// Tool is the pedalctl version that wrote the snapshot.
	Tool string `json:"pedalctl_version"`

	// ID is the snapshot identifier (timestamp format: 20260123T100712).
	// Populated when loading from disk but not stored in JSON.
	ID string `json:"-"`
}

// File records one captured file. Path is relative to the source root and
// doubles as the storage location inside the snapshot directory.
type File struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
}
