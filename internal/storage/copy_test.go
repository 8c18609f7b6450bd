package storage

import (
	"context"
	"path"
	"testing"
)

// seedTree writes a small configuration tree into root.
func seedTree(t *testing.T, root Root) {
	t.Helper()
	files := map[string]string{
		"profiles/clean.json":         `{"name":"Clean"}`,
		"profiles/lead.json":          `{"name":"Lead"}`,
		"plugins/delay/metadata.json": `{"name":"Tape Delay"}`,
	}
	for name, content := range files {
		if err := root.MkDirAll(path.Dir(name)); err != nil {
			t.Fatalf("MkDirAll(%s): %v", name, err)
		}
		if err := root.WriteFile(name, []byte(content)); err != nil {
			t.Fatalf("WriteFile(%s): %v", name, err)
		}
	}
	if err := root.MkDirAll("profiles/empty"); err != nil {
		t.Fatal(err)
	}
}

func TestCopyAll(t *testing.T) {
	src := NewMemRoot("mem:src")
	seedTree(t, src)

	tests := []struct {
		name string
		dst  Root
	}{
		{"mem to mem", NewMemRoot("mem:dst")},
		{"mem to dir", NewDirRoot(t.TempDir())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := CopyAll(context.Background(), tt.dst, "", src, "")
			if err != nil {
				t.Fatalf("CopyAll: %v", err)
			}

			if stats.Files != 3 {
				t.Errorf("stats.Files = %d, want 3", stats.Files)
			}
			if stats.Bytes == 0 {
				t.Error("stats.Bytes should be non-zero")
			}

			data, err := tt.dst.ReadFile("plugins/delay/metadata.json")
			if err != nil {
				t.Fatalf("nested file missing: %v", err)
			}
			if string(data) != `{"name":"Tape Delay"}` {
				t.Errorf("content = %q", data)
			}

			// Empty directories are preserved
			isDir, err := tt.dst.IsDir("profiles/empty")
			if err != nil || !isDir {
				t.Errorf("empty directory not copied: isDir=%v err=%v", isDir, err)
			}
		})
	}
}

func TestCopyAll_Subtree(t *testing.T) {
	src := NewMemRoot("mem:src")
	seedTree(t, src)
	dst := NewMemRoot("mem:dst")

	stats, err := CopyAll(context.Background(), dst, "profiles", src, "profiles")
	if err != nil {
		t.Fatalf("CopyAll: %v", err)
	}
	if stats.Files != 2 {
		t.Errorf("stats.Files = %d, want 2", stats.Files)
	}

	if exists, _ := dst.Exists("plugins"); exists {
		t.Error("plugins subtree should not have been copied")
	}
	if exists, _ := dst.Exists("profiles/clean.json"); !exists {
		t.Error("profiles/clean.json missing from destination")
	}
}

func TestCopyAll_OverwritesButKeepsExtras(t *testing.T) {
	src := NewMemRoot("mem:src")
	seedTree(t, src)

	dst := NewMemRoot("mem:dst")
	if err := dst.MkDirAll("profiles"); err != nil {
		t.Fatal(err)
	}
	// Stale copy of a synced file plus an unrelated extra
	if err := dst.WriteFile("profiles/clean.json", []byte("stale")); err != nil {
		t.Fatal(err)
	}
	if err := dst.WriteFile("profiles/extra.json", []byte("keep me")); err != nil {
		t.Fatal(err)
	}

	if _, err := CopyAll(context.Background(), dst, "", src, ""); err != nil {
		t.Fatalf("CopyAll: %v", err)
	}

	data, _ := dst.ReadFile("profiles/clean.json")
	if string(data) != `{"name":"Clean"}` {
		t.Errorf("stale file not overwritten: %q", data)
	}

	data, err := dst.ReadFile("profiles/extra.json")
	if err != nil {
		t.Fatalf("extra file should be untouched: %v", err)
	}
	if string(data) != "keep me" {
		t.Errorf("extra file content = %q, want %q", data, "keep me")
	}
}

func TestCopyAll_MissingSource(t *testing.T) {
	src := NewMemRoot("mem:src")
	dst := NewMemRoot("mem:dst")

	if _, err := CopyAll(context.Background(), dst, "", src, "no-such-dir"); err == nil {
		t.Error("CopyAll with missing source should error")
	}
}

func TestCopyAll_Cancelled(t *testing.T) {
	src := NewMemRoot("mem:src")
	seedTree(t, src)
	dst := NewMemRoot("mem:dst")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := CopyAll(ctx, dst, "", src, ""); err == nil {
		t.Error("CopyAll with cancelled context should error")
	}
}

func TestCopyAll_EmptySource(t *testing.T) {
	src := NewMemRoot("mem:src")
	if err := src.MkDirAll("profiles"); err != nil {
		t.Fatal(err)
	}
	dst := NewMemRoot("mem:dst")

	stats, err := CopyAll(context.Background(), dst, "profiles", src, "profiles")
	if err != nil {
		t.Fatalf("CopyAll: %v", err)
	}
	if stats.Files != 0 {
		t.Errorf("stats.Files = %d, want 0", stats.Files)
	}

	// Destination directory is still created
	if isDir, err := dst.IsDir("profiles"); err != nil || !isDir {
		t.Errorf("destination dir not created: isDir=%v err=%v", isDir, err)
	}
}
