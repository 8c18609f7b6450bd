// Package syncer mirrors configuration trees between the on-board root and
// removable devices.
//
// Mirroring is destructive by design: after a pass the destination subtree
// matches the source exactly, extra files included. What protects the data
// is the order of operations, not the mirror itself. Mirror stages the full
// copy beside the destination and swaps it in with a rename, so an
// interrupted run leaves either the old tree or the new one, never a blend.
// Engine.Load snapshots the on-board payload before the first overwrite.
package syncer
