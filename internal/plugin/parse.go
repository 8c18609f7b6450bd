package plugin

import (
	"encoding/json"
	"log/slog"

	"github.com/cockroachdb/errors"
)

var (
	// ErrMissingURI marks a plugin entry that lacks the required uri field.
	ErrMissingURI = errors.New("plugin entry missing uri")

	// ErrInvalidDocument marks a manifest whose top-level document is not an
	// object carrying a plugins list.
	ErrInvalidDocument = errors.New("manifest document must be an object with a plugins list")
)

// paramDoc mirrors one parameter entry on the wire. Pointer fields let the
// parser tell an absent key from an explicit zero.
type paramDoc struct {
	Type    *string  `json:"type"`
	Name    *string  `json:"name"`
	Symbol  *string  `json:"symbol"`
	Mode    *string  `json:"mode"`
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
	Default *float64 `json:"default"`
}

// entryDoc mirrors one plugin entry on the wire.
type entryDoc struct {
	Name        *string    `json:"name"`
	URI         *string    `json:"uri"`
	Bypass      *float64   `json:"bypass"`
	Channels    *string    `json:"channels"`
	Inputs      []string   `json:"inputs"`
	Outputs     []string   `json:"outputs"`
	Category    *string    `json:"category"`
	Description *string    `json:"description"`
	Parameters  []paramDoc `json:"parameters"`
}

// ParseEntry decodes one plugin entry from a manifest document. Every field
// except uri is optional and falls back to a usable default; an entry without
// a uri is rejected with [ErrMissingURI]. Parameters missing their symbol or
// range are skipped with a warning rather than failing the whole entry, and
// an unrecognised mode is demoted to dial.
func ParseEntry(raw []byte, logger *slog.Logger) (*Plugin, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var doc entryDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding plugin entry")
	}
	if doc.URI == nil {
		return nil, ErrMissingURI
	}

	p := &Plugin{
		Name:     "plugin",
		URI:      *doc.URI,
		Channels: "mono",
		Inputs:   []string{"in"},
		Outputs:  []string{"out"},
	}
	if doc.Name != nil {
		p.Name = *doc.Name
	}
	if doc.Bypass != nil {
		p.Bypass = *doc.Bypass
	}
	if doc.Channels != nil {
		p.Channels = *doc.Channels
	}
	if doc.Inputs != nil {
		p.Inputs = doc.Inputs
	}
	if doc.Outputs != nil {
		p.Outputs = doc.Outputs
	}
	if doc.Category != nil {
		p.Category = *doc.Category
	}
	if doc.Description != nil {
		p.Description = *doc.Description
	}

	for i, pd := range doc.Parameters {
		if pd.Symbol == nil || pd.Min == nil || pd.Max == nil {
			logger.Warn("skipping incomplete parameter",
				"plugin", p.Name,
				"index", i)
			continue
		}

		typ := "lv2"
		if pd.Type != nil {
			typ = *pd.Type
		}
		name := "parameter"
		if pd.Name != nil {
			name = *pd.Name
		}
		mode := ModeDial
		if pd.Mode != nil {
			mode = *pd.Mode
		}
		switch mode {
		case ModeDial, ModeButton, ModeSelector:
		default:
			logger.Warn("unknown parameter mode, treating as dial",
				"plugin", p.Name,
				"symbol", *pd.Symbol,
				"mode", mode)
			mode = ModeDial
		}
		value := 1.0
		if pd.Default != nil {
			value = *pd.Default
		}

		p.AddParameter(NewParameter(typ, name, *pd.Symbol, mode, value, *pd.Min, *pd.Max))
	}

	return p, nil
}
