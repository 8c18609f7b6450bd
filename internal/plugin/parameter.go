package plugin

// Interaction modes for a parameter. The mode decides how a front panel or
// editor steps the value: dials sweep a continuous range, buttons toggle,
// selectors walk a small set of discrete choices.
const (
	ModeDial     = "dial"
	ModeButton   = "button"
	ModeSelector = "selector"
)

// Parameter is one adjustable control exposed by a plugin. Symbol is the
// host-facing port identifier; Name is the human-readable label.
type Parameter struct {
	Type      string
	Name      string
	Symbol    string
	Mode      string
	Value     float64
	Min       float64
	Max       float64
	Increment float64
}

// NewParameter builds a parameter and derives its step increment from the
// mode: buttons and selectors step by one, every other mode steps by a
// hundredth of the range, dial-style.
func NewParameter(typ, name, symbol, mode string, value, min, max float64) *Parameter {
	p := &Parameter{
		Type:   typ,
		Name:   name,
		Symbol: symbol,
		Mode:   mode,
		Value:  value,
		Min:    min,
		Max:    max,
	}
	switch mode {
	case ModeButton, ModeSelector:
		p.Increment = 1
	default:
		p.Increment = (max - min) / 100
	}
	return p
}

// SetValue overwrites the current value. Values are stored as given; range
// enforcement is the caller's concern.
func (p *Parameter) SetValue(v float64) {
	p.Value = v
}

// Clone returns an independent copy of the parameter.
func (p *Parameter) Clone() *Parameter {
	c := *p
	return &c
}
