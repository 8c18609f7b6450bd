package plugin

import (
	"encoding/json"
	"log/slog"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/multifx/pedalctl/pkg/fileutil"
)

// Manager holds an ordered, index-addressed set of plugins. It owns the
// plugins it holds; callers mutate them through the manager. Not safe for
// concurrent use.
type Manager struct {
	plugins []*Plugin
	logger  *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger routes the manager's diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager returns an empty manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add appends a plugin to the end of the chain.
func (m *Manager) Add(p *Plugin) {
	m.plugins = append(m.plugins, p)
}

// Len reports the number of plugins held.
func (m *Manager) Len() int {
	return len(m.plugins)
}

// Get returns the plugin at index i, reporting whether the index was in
// range.
func (m *Manager) Get(i int) (*Plugin, bool) {
	if i < 0 || i >= len(m.plugins) {
		return nil, false
	}
	return m.plugins[i], true
}

// Plugins returns the plugins in order. The slice is a copy; the plugins it
// points at are shared with the manager.
func (m *Manager) Plugins() []*Plugin {
	return slices.Clone(m.plugins)
}

// Names returns the plugin names in chain order.
func (m *Manager) Names() []string {
	names := make([]string, len(m.plugins))
	for i, p := range m.plugins {
		names[i] = p.Name
	}
	return names
}

// ParamLen reports how many parameters the plugin at index i exposes, or
// zero when the index is out of range.
func (m *Manager) ParamLen(i int) int {
	p, ok := m.Get(i)
	if !ok {
		return 0
	}
	return len(p.Parameters)
}

// ParameterNames returns the parameter labels of the plugin at index i, or
// nil when the index is out of range.
func (m *Manager) ParameterNames(i int) []string {
	p, ok := m.Get(i)
	if !ok {
		m.logger.Warn("plugin index out of range",
			"index", i,
			"plugins", len(m.plugins))
		return nil
	}
	return p.ParameterNames()
}

// SetParameterValue updates one parameter in place. An out-of-range plugin
// or parameter index is reported and ignored; the chain is left untouched.
func (m *Manager) SetParameterValue(plugin, param int, value float64) {
	p, ok := m.Get(plugin)
	if !ok {
		m.logger.Warn("plugin index out of range",
			"index", plugin,
			"plugins", len(m.plugins))
		return
	}
	pr, ok := p.Parameter(param)
	if !ok {
		m.logger.Warn("parameter index out of range",
			"plugin", p.Name,
			"index", param,
			"parameters", len(p.Parameters))
		return
	}
	pr.SetValue(value)
}

// LoadFile reads one manifest document from path and appends its entries in
// order. The document must be a JSON object carrying a plugins list; any
// other shape fails with [ErrInvalidDocument]. Entries are decoded
// independently, so one bad entry is skipped with a warning instead of
// poisoning the rest of the file.
func (m *Manager) LoadFile(path string) error {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return errors.Wrapf(err, "reading manifest %s", path)
	}

	var doc struct {
		Plugins []json.RawMessage `json:"plugins"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Mark(errors.Wrapf(err, "parsing manifest %s", path), ErrInvalidDocument)
	}
	if doc.Plugins == nil {
		return errors.Wrapf(ErrInvalidDocument, "manifest %s", path)
	}

	for i, raw := range doc.Plugins {
		p, err := ParseEntry(raw, m.logger)
		if err != nil {
			m.logger.Warn("skipping plugin entry",
				"path", path,
				"index", i,
				"error", err)
			continue
		}
		m.Add(p)
	}
	return nil
}
