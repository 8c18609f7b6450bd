package plugin

import "slices"

// Plugin is one effect in a signal chain: identity, channel wiring, and the
// ordered set of parameters it exposes.
type Plugin struct {
	Name        string
	URI         string
	Bypass      float64
	Channels    string
	Inputs      []string
	Outputs     []string
	Category    string
	Description string
	Parameters  []*Parameter
}

// AddParameter appends a parameter, preserving manifest order.
func (p *Plugin) AddParameter(param *Parameter) {
	p.Parameters = append(p.Parameters, param)
}

// ParameterNames returns the parameter labels in order.
func (p *Plugin) ParameterNames() []string {
	names := make([]string, len(p.Parameters))
	for i, param := range p.Parameters {
		names[i] = param.Name
	}
	return names
}

// Parameter returns the parameter at index i, reporting whether the index
// was in range.
func (p *Plugin) Parameter(i int) (*Parameter, bool) {
	if i < 0 || i >= len(p.Parameters) {
		return nil, false
	}
	return p.Parameters[i], true
}

// Clone returns a deep copy: mutating the copy's parameters or port slices
// leaves the original untouched.
func (p *Plugin) Clone() *Plugin {
	c := *p
	c.Inputs = slices.Clone(p.Inputs)
	c.Outputs = slices.Clone(p.Outputs)
	c.Parameters = make([]*Parameter, len(p.Parameters))
	for i, param := range p.Parameters {
		c.Parameters[i] = param.Clone()
	}
	return &c
}
