// Package layout knows the structured shape of a configuration root and how
// to migrate older flat trees into it.
//
// A structured root holds exactly two payload directories, profiles/ and
// plugins/. Cards written by early firmware kept everything loose at the
// top level instead; Migrate moves that content into place once and is a
// no-op ever after.
package layout

import (
	"log/slog"
	"path"
	"strings"

	"github.com/multifx/pedalctl/internal/storage"
)

// Payload directories of a structured configuration root.
const (
	ProfilesDir = "profiles"
	PluginsDir  = "plugins"
)

// reserved names stay at the top level during migration. The identity file
// describes the root itself and belongs to no payload directory.
var reserved = map[string]bool{
	"device.toml": true,
}

// State classifies the shape of a configuration root.
type State int

const (
	// StateEmpty is a root with no payload content at all.
	StateEmpty State = iota
	// StateFlat is a pre-migration root: loose content at the top level and
	// neither payload directory.
	StateFlat
	// StatePartial is a root with exactly one of the two payload directories.
	StatePartial
	// StateStructured is a fully migrated root.
	StateStructured
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateFlat:
		return "flat"
	case StatePartial:
		return "partial"
	case StateStructured:
		return "structured"
	default:
		return "unknown"
	}
}

// Migrate brings root to the structured layout. When neither payload
// directory exists yet, top-level loose files are classified by extension,
// .json to profiles and everything else to plugins, case-insensitively.
// When at least one payload directory already exists, nothing is
// reclassified; only the missing directory is created. Running Migrate on a
// structured root changes nothing.
func Migrate(root storage.Root, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	hasProfiles, err := root.Exists(ProfilesDir)
	if err != nil {
		return err
	}
	hasPlugins, err := root.Exists(PluginsDir)
	if err != nil {
		return err
	}

	if !hasProfiles && !hasPlugins {
		if err := classifyLoose(root, logger); err != nil {
			return err
		}
	}

	for _, dir := range []string{ProfilesDir, PluginsDir} {
		ok, err := root.Exists(dir)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if err := root.MkDirAll(dir); err != nil {
			return err
		}
		logger.Debug("created payload directory",
			"root", root.Name(),
			"dir", dir)
	}
	return nil
}

// classifyLoose moves top-level files into their payload directory.
// Subdirectories are left where they are; migration never recurses.
func classifyLoose(root storage.Root, logger *slog.Logger) error {
	entries, err := root.List("")
	if err != nil {
		return err
	}

	for _, ent := range entries {
		if ent.Dir || reserved[ent.Name] {
			continue
		}

		dest := PluginsDir
		if strings.HasSuffix(strings.ToLower(ent.Name), ".json") {
			dest = ProfilesDir
		}
		if err := root.MkDirAll(dest); err != nil {
			return err
		}
		if err := root.Move(ent.Name, path.Join(dest, ent.Name)); err != nil {
			return err
		}
		logger.Info("migrated loose file",
			"root", root.Name(),
			"file", ent.Name,
			"dest", dest)
	}
	return nil
}

// Probe reports the current layout state of root.
func Probe(root storage.Root) (State, error) {
	hasProfiles, err := root.Exists(ProfilesDir)
	if err != nil {
		return StateEmpty, err
	}
	hasPlugins, err := root.Exists(PluginsDir)
	if err != nil {
		return StateEmpty, err
	}

	switch {
	case hasProfiles && hasPlugins:
		return StateStructured, nil
	case hasProfiles || hasPlugins:
		return StatePartial, nil
	}

	entries, err := root.List("")
	if err != nil {
		return StateEmpty, err
	}
	for _, ent := range entries {
		if !reserved[ent.Name] {
			return StateFlat, nil
		}
	}
	return StateEmpty, nil
}
