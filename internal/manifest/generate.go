package manifest

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/multifx/pedalctl/internal/plugin"
	"github.com/multifx/pedalctl/internal/storage"
)

// DefaultMetadataName is the per-plugin metadata file the generator reads.
const DefaultMetadataName = "metadata.json"

// manifestParam is the generated wire form of one parameter.
type manifestParam struct {
	Type    string  `json:"type"`
	Name    string  `json:"name"`
	Symbol  string  `json:"symbol"`
	Mode    string  `json:"mode"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
}

// manifestEntry is the generated wire form of one plugin.
type manifestEntry struct {
	Name       string          `json:"name"`
	URI        string          `json:"uri"`
	Channels   string          `json:"channels"`
	Inputs     []string        `json:"inputs"`
	Outputs    []string        `json:"outputs"`
	Bypass     float64         `json:"bypass"`
	Parameters []manifestParam `json:"parameters"`
}

type manifestDoc struct {
	Plugins []manifestEntry `json:"plugins"`
}

// metadataDoc mirrors a plugin's metadata file. Port names may sit at the
// top level or under an io object; pointer fields distinguish absent keys
// from explicit zeros.
type metadataDoc struct {
	Name       *string           `json:"name"`
	URI        *string           `json:"uri"`
	Channels   *string           `json:"channels"`
	Bypass     *float64          `json:"bypass"`
	Inputs     []string          `json:"inputs"`
	Outputs    []string          `json:"outputs"`
	IO         *metadataIO       `json:"io"`
	Parameters []json.RawMessage `json:"parameters"`
}

type metadataIO struct {
	Inputs  []string `json:"inputs"`
	Outputs []string `json:"outputs"`
}

type metadataParam struct {
	Type    *string  `json:"type"`
	Name    *string  `json:"name"`
	Symbol  *string  `json:"symbol"`
	Mode    *string  `json:"mode"`
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
	Default *float64 `json:"default"`
	Value   *float64 `json:"value"`
}

// Generator rebuilds manifest files from per-plugin metadata directories.
type Generator struct {
	root         storage.Root
	metadataName string
	logger       *slog.Logger
}

// NewGenerator returns a generator over root. An empty metadataName selects
// [DefaultMetadataName]; a nil logger falls back to slog.Default.
func NewGenerator(root storage.Root, metadataName string, logger *slog.Logger) *Generator {
	if metadataName == "" {
		metadataName = DefaultMetadataName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{root: root, metadataName: metadataName, logger: logger}
}

// Generate writes one manifest per plugin directory under pluginDir into
// manifestDir, named <slug>.json, and returns the written paths. Plugin
// directories without usable metadata still get a manifest built from slug
// defaults, so every installed plugin ends up addressable.
func (g *Generator) Generate(pluginDir, manifestDir string) ([]string, error) {
	if err := g.root.MkDirAll(manifestDir); err != nil {
		return nil, errors.Wrapf(err, "creating manifest directory %s", manifestDir)
	}

	entries, err := g.root.List(pluginDir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing plugin directory %s", pluginDir)
	}

	var written []string
	for _, ent := range entries {
		if !ent.Dir || ent.Name == "manifests" {
			continue
		}

		entry := g.buildEntry(pluginDir, ent.Name)
		data, err := json.MarshalIndent(manifestDoc{Plugins: []manifestEntry{entry}}, "", "  ")
		if err != nil {
			return written, errors.Wrapf(err, "encoding manifest for %s", ent.Name)
		}

		out := path.Join(manifestDir, ent.Name+".json")
		if err := g.root.WriteFile(out, append(data, '\n')); err != nil {
			return written, errors.Wrapf(err, "writing manifest %s", out)
		}
		g.logger.Debug("wrote manifest", "path", out)
		written = append(written, out)
	}
	return written, nil
}

// Ensure generates manifests only when manifestDir holds none, so a seeded
// card is never overwritten on startup.
func (g *Generator) Ensure(pluginDir, manifestDir string) ([]string, error) {
	entries, err := g.root.List(manifestDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(err, "listing manifest directory %s", manifestDir)
	}
	for _, ent := range entries {
		if !ent.Dir && strings.HasSuffix(ent.Name, ".json") {
			return nil, nil
		}
	}
	return g.Generate(pluginDir, manifestDir)
}

// buildEntry loads and normalizes one plugin's metadata. Metadata that is
// missing, unreadable, or not an object falls back to slug-derived defaults.
func (g *Generator) buildEntry(pluginDir, slug string) manifestEntry {
	entry := manifestEntry{
		Name:       strings.ReplaceAll(slug, "_", " "),
		URI:        "urn:multifx:" + strings.ToLower(slug),
		Channels:   "mono",
		Inputs:     []string{"in"},
		Outputs:    []string{"out"},
		Parameters: []manifestParam{},
	}

	metaPath := path.Join(pluginDir, slug, g.metadataName)
	data, err := g.root.ReadFile(metaPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			g.logger.Warn("skipping unreadable metadata",
				"plugin", slug,
				"error", err)
		}
		return entry
	}

	var doc metadataDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		g.logger.Warn("ignoring malformed metadata",
			"plugin", slug,
			"error", err)
		return entry
	}

	if doc.Name != nil {
		entry.Name = *doc.Name
	}
	if doc.URI != nil {
		entry.URI = *doc.URI
	}
	if doc.Channels != nil {
		entry.Channels = *doc.Channels
	}
	if doc.Bypass != nil {
		entry.Bypass = *doc.Bypass
	}
	entry.Inputs, entry.Outputs = extractIO(&doc)

	for _, raw := range doc.Parameters {
		var pd metadataParam
		if err := json.Unmarshal(raw, &pd); err != nil {
			g.logger.Warn("skipping malformed parameter metadata", "plugin", slug)
			continue
		}
		if pd.Symbol == nil || *pd.Symbol == "" {
			g.logger.Warn("skipping parameter without symbol", "plugin", slug)
			continue
		}
		entry.Parameters = append(entry.Parameters, normalizeParam(pd))
	}
	return entry
}

// extractIO resolves port names, preferring top-level keys over the nested
// io object and replacing empty lists with the mono defaults.
func extractIO(doc *metadataDoc) (inputs, outputs []string) {
	inputs = doc.Inputs
	outputs = doc.Outputs
	if doc.IO != nil {
		if inputs == nil {
			inputs = doc.IO.Inputs
		}
		if outputs == nil {
			outputs = doc.IO.Outputs
		}
	}
	if len(inputs) == 0 {
		inputs = []string{"in"}
	}
	if len(outputs) == 0 {
		outputs = []string{"out"}
	}
	return inputs, outputs
}

// normalizeParam fills metadata gaps. Unlike manifest loading, metadata is
// authored by hand, so a missing range defaults to the unit interval and
// the display name falls back to the symbol.
func normalizeParam(pd metadataParam) manifestParam {
	p := manifestParam{
		Type:   "lv2",
		Symbol: *pd.Symbol,
		Name:   *pd.Symbol,
		Mode:   plugin.ModeDial,
		Min:    0,
		Max:    1,
	}
	if pd.Type != nil {
		p.Type = *pd.Type
	}
	if pd.Name != nil {
		p.Name = *pd.Name
	}
	if pd.Mode != nil {
		p.Mode = *pd.Mode
	}
	if pd.Min != nil {
		p.Min = *pd.Min
	}
	if pd.Max != nil {
		p.Max = *pd.Max
	}
	switch {
	case pd.Default != nil:
		p.Default = *pd.Default
	case pd.Value != nil:
		p.Default = *pd.Value
	}
	return p
}
