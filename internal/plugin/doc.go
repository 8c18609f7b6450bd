// Package plugin defines the typed model for audio-effect plugins and their
// user-adjustable parameters, plus the ordered collection manager the rest of
// the application queries and mutates.
//
// A [Plugin] describes one effect: identity (name, uri), channel wiring
// (channels, input and output port names), a bypass default, and an ordered
// list of [Parameter]. Parameters carry an interaction mode (dial, button,
// selector) from which a step increment is derived at construction time.
//
// [Manager] owns its plugins exclusively and addresses them by position.
// It is populated once at startup from manifest files and mutated in place
// during a session. It is not thread-safe: keep it confined to a single
// owning goroutine or guard it externally.
package plugin
