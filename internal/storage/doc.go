// Package storage provides a bounded filesystem view used for configuration
// trees on both the host and mounted pedal media.
//
// A [Root] scopes all operations to a single directory. Paths passed to its
// methods are slash-separated and relative to the root; leading slashes and
// ".." segments are normalized away, so a Root can never reach outside the
// tree it wraps.
//
// Roots are backed by afero filesystems. [NewDirRoot] wraps a directory on
// the real filesystem, while [NewMemRoot] builds an in-memory tree for tests
// and dry runs. [CopyAll] copies whole subtrees between any two roots, which
// is how configuration moves between the on-board tree and a mounted pedal.
package storage
