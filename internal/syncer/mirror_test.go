package syncer

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"testing"

	"github.com/multifx/pedalctl/internal/logging"
	"github.com/multifx/pedalctl/internal/storage"
)

func seedTree(t *testing.T, root storage.Root, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := root.MkDirAll(path.Dir(name)); err != nil {
			t.Fatal(err)
		}
		if err := root.WriteFile(name, []byte(content)); err != nil {
			t.Fatal(err)
		}
	}
}

func assertNoStage(t *testing.T, root storage.Root) {
	t.Helper()
	entries, err := root.List("")
	if err != nil {
		t.Fatalf("listing root: %v", err)
	}
	for _, ent := range entries {
		if strings.HasPrefix(ent.Name, StagePrefix) {
			t.Errorf("staging directory %s left behind", ent.Name)
		}
	}
}

// flakyRoot fails Create calls once its budget runs out, standing in for a
// device yanked mid-copy.
type flakyRoot struct {
	storage.Root
	budget  int
	creates int
}

func (r *flakyRoot) Create(name string) (io.WriteCloser, error) {
	r.creates++
	if r.creates > r.budget {
		return nil, errors.New("device yanked")
	}
	return r.Root.Create(name)
}

func TestMirror(t *testing.T) {
	src := storage.NewMemRoot("device")
	dst := storage.NewMemRoot("onboard")
	seedTree(t, src, map[string]string{
		"profiles/clean.json":      `{"name":"Clean"}`,
		"profiles/banks/lead.json": `{"name":"Lead"}`,
	})
	if err := src.MkDirAll("profiles/scratch"); err != nil {
		t.Fatal(err)
	}
	seedTree(t, dst, map[string]string{
		"profiles/stale.json": `{"name":"Stale"}`,
	})

	stats, err := Mirror(t.Context(), dst, src, "profiles", logging.ForTest(t))
	if err != nil {
		t.Fatalf("Mirror() error = %v", err)
	}
	if stats.Files != 2 {
		t.Errorf("stats.Files = %d, want 2", stats.Files)
	}

	data, err := dst.ReadFile("profiles/banks/lead.json")
	if err != nil {
		t.Fatalf("reading mirrored file: %v", err)
	}
	if string(data) != `{"name":"Lead"}` {
		t.Errorf("mirrored content = %s", data)
	}

	if exists, _ := dst.Exists("profiles/stale.json"); exists {
		t.Error("stale destination file survived the mirror")
	}
	if dir, err := dst.IsDir("profiles/scratch"); err != nil || !dir {
		t.Errorf("empty source directory not mirrored: dir=%v err=%v", dir, err)
	}
	assertNoStage(t, dst)
}

func TestMirror_AbsentSource(t *testing.T) {
	src := storage.NewMemRoot("device")
	dst := storage.NewMemRoot("onboard")
	seedTree(t, dst, map[string]string{
		"profiles/clean.json": `{"name":"Clean"}`,
	})

	stats, err := Mirror(t.Context(), dst, src, "profiles", logging.ForTest(t))
	if err != nil {
		t.Fatalf("Mirror() error = %v", err)
	}
	if stats.Files != 0 {
		t.Errorf("stats.Files = %d, want 0", stats.Files)
	}

	// The destination is recreated empty.
	if dir, err := dst.IsDir("profiles"); err != nil || !dir {
		t.Fatalf("destination dir missing: dir=%v err=%v", dir, err)
	}
	entries, err := dst.List("profiles")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("destination holds %d entries after absent-source mirror, want 0", len(entries))
	}
}

func TestMirror_FileSource(t *testing.T) {
	src := storage.NewMemRoot("device")
	dst := storage.NewMemRoot("onboard")
	seedTree(t, src, map[string]string{"profiles": "not a directory"})
	seedTree(t, dst, map[string]string{
		"profiles/clean.json": `{"name":"Clean"}`,
	})

	if _, err := Mirror(t.Context(), dst, src, "profiles", logging.ForTest(t)); err != nil {
		t.Fatalf("Mirror() error = %v", err)
	}

	if dir, err := dst.IsDir("profiles"); err != nil || !dir {
		t.Fatalf("destination dir missing: dir=%v err=%v", dir, err)
	}
	entries, err := dst.List("profiles")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("destination holds %d entries, want 0", len(entries))
	}
}

func TestMirror_CopyFailureLeavesDestination(t *testing.T) {
	src := storage.NewMemRoot("device")
	seedTree(t, src, map[string]string{
		"profiles/a.json": `{"name":"A"}`,
		"profiles/b.json": `{"name":"B"}`,
	})
	dst := &flakyRoot{Root: storage.NewMemRoot("onboard"), budget: 1}
	seedTree(t, dst.Root, map[string]string{
		"profiles/keep.json": `{"name":"Keep"}`,
	})

	_, err := Mirror(t.Context(), dst, src, "profiles", logging.ForTest(t))
	if err == nil {
		t.Fatal("Mirror() succeeded despite failing writes")
	}

	data, err := dst.ReadFile("profiles/keep.json")
	if err != nil {
		t.Fatalf("destination damaged by failed mirror: %v", err)
	}
	if string(data) != `{"name":"Keep"}` {
		t.Errorf("destination content changed: %s", data)
	}
	assertNoStage(t, dst)
}

func TestMirror_CancelledContext(t *testing.T) {
	src := storage.NewMemRoot("device")
	seedTree(t, src, map[string]string{
		"profiles/clean.json": `{"name":"Clean"}`,
	})
	dst := storage.NewMemRoot("onboard")
	seedTree(t, dst, map[string]string{
		"profiles/keep.json": `{"name":"Keep"}`,
	})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := Mirror(ctx, dst, src, "profiles", logging.ForTest(t))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Mirror() error = %v, want context.Canceled", err)
	}

	if _, err := dst.ReadFile("profiles/keep.json"); err != nil {
		t.Errorf("destination damaged by cancelled mirror: %v", err)
	}
	assertNoStage(t, dst)
}
