package storage

import (
	"io"
	"os"
	"path"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
)

// Entry describes a single item in a directory listing.
type Entry struct {
	// Name is the entry's base name, without any path components.
	Name string
	// Dir reports whether the entry is a directory.
	Dir bool
	// Size is the file size in bytes. Zero for directories.
	Size int64
}

// Root is a bounded view of a directory tree. All paths are slash-separated
// and relative to the root; an empty path means the root itself.
type Root interface {
	// Name returns a human-readable identifier for the root, usually the
	// OS path it wraps.
	Name() string

	// List returns the entries directly under dir, sorted by name.
	List(dir string) ([]Entry, error)

	// Exists reports whether name exists.
	Exists(name string) (bool, error)

	// IsDir reports whether name is a directory. It returns an error when
	// name does not exist.
	IsDir(name string) (bool, error)

	// MkDirAll creates the directory name along with any missing parents.
	MkDirAll(name string) error

	// Move renames src to dst within the root. It moves files and whole
	// directories.
	Move(src, dst string) error

	// RemoveAll deletes name and, for directories, everything under it.
	// It returns nil when name does not exist.
	RemoveAll(name string) error

	// Open opens name for reading.
	Open(name string) (io.ReadCloser, error)

	// Create opens name for writing, truncating it if it already exists.
	Create(name string) (io.WriteCloser, error)

	// ReadFile returns the contents of name.
	ReadFile(name string) ([]byte, error)

	// WriteFile replaces the contents of name atomically via a temp file
	// and rename in the same directory.
	WriteFile(name string, data []byte) error
}

// dirPerm is the permission for directories created inside a root. Pedal
// media is FAT32 and ignores it; host-side trees get group/world read.
const dirPerm = 0o755

// filePerm is the permission for files created inside a root.
const filePerm = 0o644

// fsRoot implements Root over an afero filesystem.
type fsRoot struct {
	name string
	fs   afero.Fs
}

// NewDirRoot returns a Root over the directory at osPath. The directory does
// not have to exist yet; operations fail until something creates it.
func NewDirRoot(osPath string) Root {
	return NewRoot(osPath, afero.NewBasePathFs(afero.NewOsFs(), osPath))
}

// NewMemRoot returns an in-memory Root, used by tests and dry runs.
func NewMemRoot(label string) Root {
	return NewRoot(label, afero.NewMemMapFs())
}

// NewRoot returns a Root over an arbitrary afero filesystem. The label shows
// up in errors and logs.
func NewRoot(label string, fsys afero.Fs) Root {
	return &fsRoot{
		name: label,
		fs:   fsys,
	}
}

// clean normalizes a root-relative path. Leading slashes and ".." segments
// cannot escape the root.
func clean(name string) string {
	cleaned := path.Clean("/" + name)[1:]
	if cleaned == "" {
		return "."
	}
	return cleaned
}

func (r *fsRoot) Name() string {
	return r.name
}

func (r *fsRoot) List(dir string) ([]Entry, error) {
	infos, err := afero.ReadDir(r.fs, clean(dir))
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", path.Join(r.name, dir))
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		size := info.Size()
		if info.IsDir() {
			size = 0
		}
		entries = append(entries, Entry{
			Name: info.Name(),
			Dir:  info.IsDir(),
			Size: size,
		})
	}
	return entries, nil
}

func (r *fsRoot) Exists(name string) (bool, error) {
	ok, err := afero.Exists(r.fs, clean(name))
	if err != nil {
		return false, errors.Wrapf(err, "checking %s", path.Join(r.name, name))
	}
	return ok, nil
}

func (r *fsRoot) IsDir(name string) (bool, error) {
	info, err := r.fs.Stat(clean(name))
	if err != nil {
		return false, errors.Wrapf(err, "stating %s", path.Join(r.name, name))
	}
	return info.IsDir(), nil
}

func (r *fsRoot) MkDirAll(name string) error {
	if err := r.fs.MkdirAll(clean(name), dirPerm); err != nil {
		return errors.Wrapf(err, "creating directory %s", path.Join(r.name, name))
	}
	return nil
}

func (r *fsRoot) Move(src, dst string) error {
	if err := r.fs.Rename(clean(src), clean(dst)); err != nil {
		return errors.Wrapf(err, "moving %s to %s", src, dst)
	}
	return nil
}

func (r *fsRoot) RemoveAll(name string) error {
	if err := r.fs.RemoveAll(clean(name)); err != nil {
		return errors.Wrapf(err, "removing %s", path.Join(r.name, name))
	}
	return nil
}

func (r *fsRoot) Open(name string) (io.ReadCloser, error) {
	f, err := r.fs.Open(clean(name))
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path.Join(r.name, name))
	}
	return f, nil
}

func (r *fsRoot) Create(name string) (io.WriteCloser, error) {
	f, err := r.fs.OpenFile(clean(name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", path.Join(r.name, name))
	}
	return f, nil
}

func (r *fsRoot) ReadFile(name string) ([]byte, error) {
	data, err := afero.ReadFile(r.fs, clean(name))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path.Join(r.name, name))
	}
	return data, nil
}

func (r *fsRoot) WriteFile(name string, data []byte) error {
	cleaned := clean(name)
	dir := path.Dir(cleaned)

	// Temp file in the same directory so the rename stays on one filesystem
	tmp, err := afero.TempFile(r.fs, dir, ".pedalctl-atomic-*")
	if err != nil {
		return errors.Wrapf(err, "creating temp file in %s", path.Join(r.name, dir))
	}
	tmpName := tmp.Name()
	defer func() {
		if exists, _ := afero.Exists(r.fs, tmpName); exists {
			r.fs.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "writing %s", path.Join(r.name, name))
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing temp file for %s", path.Join(r.name, name))
	}

	if err := r.fs.Rename(tmpName, cleaned); err != nil {
		return errors.Wrapf(err, "replacing %s", path.Join(r.name, name))
	}
	return nil
}
