package manifest

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/multifx/pedalctl/internal/plugin"
	"github.com/multifx/pedalctl/internal/storage"
)

// DefaultDir is where manifests live inside a configuration root.
const DefaultDir = "plugins/manifests"

// Conflict records a duplicate dropped during merge. Symbol is empty when
// the plugin uri itself collided.
type Conflict struct {
	URI    string
	Symbol string
}

func (c Conflict) String() string {
	if c.Symbol == "" {
		return fmt.Sprintf("duplicate plugin uri %s", c.URI)
	}
	return fmt.Sprintf("duplicate parameter symbol %s in %s", c.Symbol, c.URI)
}

// Result is the outcome of loading a manifest directory.
type Result struct {
	Plugins        []*plugin.Plugin
	Files          []string   // manifests that parsed, in load order
	SkippedFiles   []string   // manifests dropped as unreadable or malformed
	SkippedEntries int        // entries dropped inside otherwise good files
	Conflicts      []Conflict // duplicates resolved first-wins
}

// Loader reads manifest documents from a configuration root.
type Loader struct {
	root   storage.Root
	logger *slog.Logger
}

// NewLoader returns a loader over root. A nil logger falls back to
// slog.Default.
func NewLoader(root storage.Root, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{root: root, logger: logger}
}

// LoadDir loads every .json manifest under dir, in sorted filename order,
// and merges the entries. A missing directory is an empty result, not an
// error: a fresh card simply has no manifests yet. Files that cannot be
// read or parsed are skipped with a warning, and so are entries that fail
// to decode, so the rest of the set still loads.
func (l *Loader) LoadDir(dir string) (*Result, error) {
	res := &Result{}

	entries, err := l.root.List(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Debug("manifest directory missing",
				"root", l.root.Name(),
				"dir", dir)
			return res, nil
		}
		return nil, errors.Wrapf(err, "listing manifest directory %s", dir)
	}

	for _, ent := range entries {
		if ent.Dir || !strings.HasSuffix(ent.Name, ".json") {
			continue
		}

		data, err := l.root.ReadFile(path.Join(dir, ent.Name))
		if err != nil {
			res.SkippedFiles = append(res.SkippedFiles, ent.Name)
			l.logger.Warn("skipping unreadable manifest",
				"file", ent.Name,
				"error", err)
			continue
		}

		raws, err := decodeDocument(data)
		if err != nil {
			res.SkippedFiles = append(res.SkippedFiles, ent.Name)
			l.logger.Warn("skipping malformed manifest",
				"file", ent.Name,
				"error", err)
			continue
		}

		res.Files = append(res.Files, ent.Name)
		for i, raw := range raws {
			p, err := plugin.ParseEntry(raw, l.logger)
			if err != nil {
				res.SkippedEntries++
				l.logger.Warn("skipping plugin entry",
					"file", ent.Name,
					"index", i,
					"error", err)
				continue
			}
			res.Plugins = append(res.Plugins, p)
		}
	}

	l.merge(res)
	return res, nil
}

// decodeDocument splits one manifest document into its raw plugin entries.
// Documents come in two shapes: an object carrying a plugins list, or a
// bare plugin object. Valid JSON that is neither (an array, a scalar) holds
// no entries and is not an error.
func decodeDocument(data []byte) ([]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		if json.Valid(data) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "parsing manifest document")
	}

	rawPlugins, ok := obj["plugins"]
	if !ok {
		return []json.RawMessage{json.RawMessage(data)}, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(rawPlugins, &raws); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parsing plugins list"), plugin.ErrInvalidDocument)
	}
	if raws == nil {
		return nil, errors.Wrap(plugin.ErrInvalidDocument, "plugins list is null")
	}
	return raws, nil
}

// merge resolves duplicates across the loaded set, first occurrence wins.
func (l *Loader) merge(res *Result) {
	seen := make(map[string]bool, len(res.Plugins))
	kept := res.Plugins[:0]
	for _, p := range res.Plugins {
		if seen[p.URI] {
			res.Conflicts = append(res.Conflicts, Conflict{URI: p.URI})
			l.logger.Warn("dropping duplicate plugin",
				"uri", p.URI,
				"name", p.Name)
			continue
		}
		seen[p.URI] = true
		l.dedupeSymbols(p, res)
		kept = append(kept, p)
	}
	res.Plugins = kept
}

func (l *Loader) dedupeSymbols(p *plugin.Plugin, res *Result) {
	seen := make(map[string]bool, len(p.Parameters))
	kept := p.Parameters[:0]
	for _, param := range p.Parameters {
		if seen[param.Symbol] {
			res.Conflicts = append(res.Conflicts, Conflict{URI: p.URI, Symbol: param.Symbol})
			l.logger.Warn("dropping duplicate parameter",
				"uri", p.URI,
				"symbol", param.Symbol)
			continue
		}
		seen[param.Symbol] = true
		kept = append(kept, param)
	}
	p.Parameters = kept
}
