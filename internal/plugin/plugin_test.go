package plugin

import (
	"slices"
	"testing"
)

func testPlugin() *Plugin {
	p := &Plugin{
		Name:     "Tape Delay",
		URI:      "urn:multifx:tape-delay",
		Channels: "stereo",
		Inputs:   []string{"in_l", "in_r"},
		Outputs:  []string{"out_l", "out_r"},
	}
	p.AddParameter(NewParameter("lv2", "Time", "time", ModeDial, 0.3, 0, 1))
	p.AddParameter(NewParameter("lv2", "Sync", "sync", ModeButton, 0, 0, 1))
	return p
}

func TestPlugin_ParameterNames(t *testing.T) {
	p := testPlugin()

	want := []string{"Time", "Sync"}
	if got := p.ParameterNames(); !slices.Equal(got, want) {
		t.Errorf("ParameterNames() = %v, want %v", got, want)
	}
}

func TestPlugin_Parameter(t *testing.T) {
	p := testPlugin()

	param, ok := p.Parameter(1)
	if !ok {
		t.Fatal("Parameter(1) reported out of range")
	}
	if param.Symbol != "sync" {
		t.Errorf("Symbol = %q, want %q", param.Symbol, "sync")
	}

	if _, ok := p.Parameter(2); ok {
		t.Error("Parameter(2) reported in range for a two-parameter plugin")
	}
	if _, ok := p.Parameter(-1); ok {
		t.Error("Parameter(-1) reported in range")
	}
}

func TestPlugin_Clone(t *testing.T) {
	p := testPlugin()
	c := p.Clone()

	c.Parameters[0].SetValue(0.9)
	c.Inputs[0] = "mutated"
	c.Inputs = append(c.Inputs, "extra")
	c.AddParameter(NewParameter("lv2", "Mix", "mix", ModeDial, 0.5, 0, 1))

	if p.Parameters[0].Value != 0.3 {
		t.Errorf("original parameter value = %v after mutating clone, want 0.3", p.Parameters[0].Value)
	}
	if p.Inputs[0] != "in_l" {
		t.Errorf("original input = %q after mutating clone, want %q", p.Inputs[0], "in_l")
	}
	if len(p.Parameters) != 2 {
		t.Errorf("original has %d parameters after growing clone, want 2", len(p.Parameters))
	}
}
