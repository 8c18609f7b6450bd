package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/multifx/pedalctl/internal/logging"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(WithLogger(logging.ForTest(t)))
	m.Add(testPlugin())

	fuzz := &Plugin{Name: "Fuzz", URI: "urn:multifx:fuzz", Channels: "mono"}
	fuzz.AddParameter(NewParameter("lv2", "Gain", "gain", ModeDial, 5, 0, 10))
	m.Add(fuzz)
	return m
}

func TestManager_Get(t *testing.T) {
	m := testManager(t)

	p, ok := m.Get(0)
	if !ok {
		t.Fatal("Get(0) reported out of range")
	}
	if p.Name != "Tape Delay" {
		t.Errorf("Name = %q, want %q", p.Name, "Tape Delay")
	}

	if _, ok := m.Get(2); ok {
		t.Error("Get(2) reported in range for a two-plugin chain")
	}
	if _, ok := m.Get(-1); ok {
		t.Error("Get(-1) reported in range")
	}
}

func TestManager_Names(t *testing.T) {
	m := testManager(t)

	want := []string{"Tape Delay", "Fuzz"}
	if got := m.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestManager_ParamLen(t *testing.T) {
	m := testManager(t)

	if got := m.ParamLen(0); got != 2 {
		t.Errorf("ParamLen(0) = %d, want 2", got)
	}
	if got := m.ParamLen(5); got != 0 {
		t.Errorf("ParamLen(5) = %d, want 0", got)
	}
}

func TestManager_ParameterNames(t *testing.T) {
	m := testManager(t)

	want := []string{"Time", "Sync"}
	if got := m.ParameterNames(0); !slices.Equal(got, want) {
		t.Errorf("ParameterNames(0) = %v, want %v", got, want)
	}
	if got := m.ParameterNames(7); got != nil {
		t.Errorf("ParameterNames(7) = %v, want nil", got)
	}
}

func TestManager_SetParameterValue(t *testing.T) {
	m := testManager(t)

	m.SetParameterValue(1, 0, 8.5)
	p, _ := m.Get(1)
	if p.Parameters[0].Value != 8.5 {
		t.Errorf("Value = %v, want 8.5", p.Parameters[0].Value)
	}

	// Out-of-range indexes are ignored without touching the chain.
	m.SetParameterValue(9, 0, 1)
	m.SetParameterValue(1, 9, 1)
	if p.Parameters[0].Value != 8.5 {
		t.Errorf("Value = %v after out-of-range sets, want 8.5", p.Parameters[0].Value)
	}
}

func TestManager_PluginsIsACopy(t *testing.T) {
	m := testManager(t)

	got := m.Plugins()
	got[0] = nil
	if p, ok := m.Get(0); !ok || p == nil {
		t.Error("mutating the returned slice reached into the manager")
	}
}

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestManager_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "drive.json", `{
		"plugins": [
			{"name": "Overdrive", "uri": "urn:multifx:overdrive"},
			{"name": "No URI"},
			{"name": "Chorus", "uri": "urn:multifx:chorus"}
		]
	}`)

	m := NewManager(WithLogger(logging.ForTest(t)))
	if err := m.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	// The entry without a uri is skipped; the rest load in file order.
	want := []string{"Overdrive", "Chorus"}
	if got := m.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestManager_LoadFile_Appends(t *testing.T) {
	dir := t.TempDir()
	first := writeManifest(t, dir, "first.json", `{"plugins":[{"uri":"urn:multifx:a","name":"A"}]}`)
	second := writeManifest(t, dir, "second.json", `{"plugins":[{"uri":"urn:multifx:b","name":"B"}]}`)

	m := NewManager(WithLogger(logging.ForTest(t)))
	if err := m.LoadFile(first); err != nil {
		t.Fatalf("LoadFile(first) error = %v", err)
	}
	if err := m.LoadFile(second); err != nil {
		t.Fatalf("LoadFile(second) error = %v", err)
	}

	want := []string{"A", "B"}
	if got := m.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestManager_LoadFile_InvalidDocument(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{name: "top-level array", content: `[{"uri":"urn:multifx:a"}]`},
		{name: "missing plugins list", content: `{"presets":[]}`},
		{name: "plugins not a list", content: `{"plugins":{"uri":"urn:multifx:a"}}`},
		{name: "truncated", content: `{"plugins":[`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, dir, "bad-"+tt.name+".json", tt.content)
			m := NewManager(WithLogger(logging.ForTest(t)))
			err := m.LoadFile(path)
			if !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("LoadFile() error = %v, want ErrInvalidDocument", err)
			}
			if m.Len() != 0 {
				t.Errorf("Len() = %d after failed load, want 0", m.Len())
			}
		})
	}
}

func TestManager_LoadFile_MissingFile(t *testing.T) {
	m := NewManager(WithLogger(logging.ForTest(t)))
	if err := m.LoadFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("LoadFile() accepted a missing file")
	}
}
