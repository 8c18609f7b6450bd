// Package manifest loads, merges, and generates the JSON plugin manifests
// stored under a configuration root.
//
// Loading is deliberately tolerant: the card may carry hand-edited or
// half-written files, and one bad manifest must not take down the rest of
// the set. Unreadable or malformed files are skipped with a warning, as are
// individual entries that cannot be decoded. Duplicate plugin URIs across
// the merged set and duplicate parameter symbols within one plugin are
// resolved first-wins, and every dropped duplicate is reported as a
// [Conflict] so callers can surface them.
//
// The generator rebuilds manifests from per-plugin metadata directories,
// used to seed a fresh configuration tree.
package manifest
