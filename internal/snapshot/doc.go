// Package snapshot captures point-in-time copies of configuration subtrees
// before they are overwritten.
//
// A snapshot is a directory of verbatim file copies plus a manifest
// recording per-file SHA256 hashes. Snapshots are grouped by label (the
// operation that took them, e.g. "pre-load") and identified by a timestamp.
// Restore verifies every stored file against its recorded hash before
// writing anything back, so a damaged snapshot never half-applies.
package snapshot
