package layout

import (
	"path"
	"testing"

	"github.com/multifx/pedalctl/internal/logging"
	"github.com/multifx/pedalctl/internal/storage"
)

func seedFile(t *testing.T, root storage.Root, name string) {
	t.Helper()
	if err := root.MkDirAll(path.Dir(name)); err != nil {
		t.Fatalf("seeding %s: %v", name, err)
	}
	if err := root.WriteFile(name, []byte("x")); err != nil {
		t.Fatalf("seeding %s: %v", name, err)
	}
}

func mustExist(t *testing.T, root storage.Root, name string) {
	t.Helper()
	ok, err := root.Exists(name)
	if err != nil {
		t.Fatalf("Exists(%s): %v", name, err)
	}
	if !ok {
		t.Errorf("%s does not exist", name)
	}
}

func mustNotExist(t *testing.T, root storage.Root, name string) {
	t.Helper()
	ok, err := root.Exists(name)
	if err != nil {
		t.Fatalf("Exists(%s): %v", name, err)
	}
	if ok {
		t.Errorf("%s exists, want absent", name)
	}
}

func TestMigrate_FlatLayout(t *testing.T) {
	root := storage.NewMemRoot("card")
	seedFile(t, root, "Rig Clean.json")
	seedFile(t, root, "LEAD.JSON")
	seedFile(t, root, "pedal_a.cfg")
	seedFile(t, root, "notes.txt")
	seedFile(t, root, "device.toml")
	seedFile(t, root, "stray/inner.json")

	if err := Migrate(root, logging.ForTest(t)); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// .json files, case-insensitively, land in profiles; other files in
	// plugins.
	mustExist(t, root, "profiles/Rig Clean.json")
	mustExist(t, root, "profiles/LEAD.JSON")
	mustExist(t, root, "plugins/pedal_a.cfg")
	mustExist(t, root, "plugins/notes.txt")

	// The identity file stays at the root, and directories are not touched.
	mustExist(t, root, "device.toml")
	mustExist(t, root, "stray/inner.json")
	mustNotExist(t, root, "plugins/device.toml")
	mustNotExist(t, root, "plugins/stray")

	mustNotExist(t, root, "Rig Clean.json")
	mustNotExist(t, root, "pedal_a.cfg")
}

func TestMigrate_EmptyRoot(t *testing.T) {
	root := storage.NewMemRoot("card")
	if err := root.MkDirAll(""); err != nil {
		t.Fatal(err)
	}

	if err := Migrate(root, logging.ForTest(t)); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	mustExist(t, root, ProfilesDir)
	mustExist(t, root, PluginsDir)
}

func TestMigrate_PartialDoesNotReclassify(t *testing.T) {
	root := storage.NewMemRoot("card")
	seedFile(t, root, "profiles/clean.json")
	seedFile(t, root, "loose.json")
	seedFile(t, root, "loose.cfg")

	if err := Migrate(root, logging.ForTest(t)); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// Only the missing directory appears; loose files stay put.
	mustExist(t, root, PluginsDir)
	mustExist(t, root, "loose.json")
	mustExist(t, root, "loose.cfg")
	mustNotExist(t, root, "profiles/loose.json")
	mustNotExist(t, root, "plugins/loose.cfg")
}

func TestMigrate_Idempotent(t *testing.T) {
	root := storage.NewMemRoot("card")
	seedFile(t, root, "clean.json")

	for range 2 {
		if err := Migrate(root, logging.ForTest(t)); err != nil {
			t.Fatalf("Migrate() error = %v", err)
		}
	}

	mustExist(t, root, "profiles/clean.json")
	mustNotExist(t, root, "profiles/profiles")
	mustNotExist(t, root, "plugins/profiles")
}

func TestMigrate_ProfilesAsFile(t *testing.T) {
	root := storage.NewMemRoot("card")
	seedFile(t, root, "profiles")

	// An existence check, not a directory check: a file named profiles
	// suppresses classification and survives migration.
	if err := Migrate(root, logging.ForTest(t)); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	mustExist(t, root, "profiles")
	mustExist(t, root, PluginsDir)

	if dir, err := root.IsDir("profiles"); err != nil || dir {
		t.Errorf("IsDir(profiles) = %v, %v; want file kept as-is", dir, err)
	}
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name string
		seed func(t *testing.T, root storage.Root)
		want State
	}{
		{
			name: "empty",
			seed: func(t *testing.T, root storage.Root) {
				if err := root.MkDirAll(""); err != nil {
					t.Fatal(err)
				}
			},
			want: StateEmpty,
		},
		{
			name: "identity only is still empty",
			seed: func(t *testing.T, root storage.Root) {
				seedFile(t, root, "device.toml")
			},
			want: StateEmpty,
		},
		{
			name: "flat",
			seed: func(t *testing.T, root storage.Root) {
				seedFile(t, root, "clean.json")
			},
			want: StateFlat,
		},
		{
			name: "partial",
			seed: func(t *testing.T, root storage.Root) {
				if err := root.MkDirAll(ProfilesDir); err != nil {
					t.Fatal(err)
				}
			},
			want: StatePartial,
		},
		{
			name: "structured",
			seed: func(t *testing.T, root storage.Root) {
				if err := root.MkDirAll(ProfilesDir); err != nil {
					t.Fatal(err)
				}
				if err := root.MkDirAll(PluginsDir); err != nil {
					t.Fatal(err)
				}
			},
			want: StateStructured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := storage.NewMemRoot("card")
			tt.seed(t, root)

			got, err := Probe(root)
			if err != nil {
				t.Fatalf("Probe() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Probe() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_String(t *testing.T) {
	if got := StateStructured.String(); got != "structured" {
		t.Errorf("String() = %q, want %q", got, "structured")
	}
	if got := State(42).String(); got != "unknown" {
		t.Errorf("String() = %q, want %q", got, "unknown")
	}
}
