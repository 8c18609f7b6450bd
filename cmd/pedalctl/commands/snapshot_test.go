package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/multifx/pedalctl/internal/config"
	"github.com/multifx/pedalctl/internal/layout"
	"github.com/multifx/pedalctl/internal/snapshot"
	"github.com/multifx/pedalctl/internal/storage"
	"github.com/multifx/pedalctl/internal/syncer"
)

// seedSnapshots captures the seeded on-board tree n times under label, a
// minute apart, and returns the snapshot IDs oldest first.
func seedSnapshots(t *testing.T, c *config.Config, label string, n int) []string {
	t.Helper()
	seedOnboard(t, c)
	root := storage.NewDirRoot(c.OnboardDir)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		mgr := snapshot.NewManager(
			snapshot.WithDir(c.Snapshot.Dir),
			snapshot.WithClock(func() time.Time { return at }),
		)
		m, err := mgr.Create(label, root, layout.ProfilesDir, layout.PluginsDir)
		if err != nil {
			t.Fatalf("seeding snapshot %d: %v", i, err)
		}
		ids = append(ids, m.ID)
	}
	return ids
}

// resetSnapshotFlags restores the snapshot flag globals to their defaults
// when the test finishes.
func resetSnapshotFlags(t *testing.T) {
	t.Helper()
	origListJSON, origListLabel := snapshotListJSON, snapshotListLabel
	origRestoreLabel := snapshotRestoreLabel
	origPruneKeep, origPruneLabel := snapshotPruneKeep, snapshotPruneLabel
	t.Cleanup(func() {
		snapshotListJSON, snapshotListLabel = origListJSON, origListLabel
		snapshotRestoreLabel = origRestoreLabel
		snapshotPruneKeep, snapshotPruneLabel = origPruneKeep, origPruneLabel
	})
	snapshotListJSON = false
	snapshotListLabel = syncer.SnapshotLabel
	snapshotRestoreLabel = syncer.SnapshotLabel
	snapshotPruneKeep = -1
	snapshotPruneLabel = syncer.SnapshotLabel
}

func TestRunSnapshotList(t *testing.T) {
	t.Run("empty list explains itself", func(t *testing.T) {
		resetSnapshotFlags(t)
		c := testConfig(t)

		var buf bytes.Buffer
		if err := runSnapshotListWithWriter(&buf, c); err != nil {
			t.Fatalf("runSnapshotListWithWriter() error = %v", err)
		}

		if !strings.Contains(buf.String(), "No snapshots available") {
			t.Errorf("output = %q, want the empty explanation", buf.String())
		}
	})

	t.Run("lists snapshots newest first", func(t *testing.T) {
		resetSnapshotFlags(t)
		c := testConfig(t)
		ids := seedSnapshots(t, c, syncer.SnapshotLabel, 2)

		var buf bytes.Buffer
		if err := runSnapshotListWithWriter(&buf, c); err != nil {
			t.Fatalf("runSnapshotListWithWriter() error = %v", err)
		}

		output := buf.String()
		for _, id := range ids {
			if !strings.Contains(output, id) {
				t.Errorf("output missing snapshot %s:\n%s", id, output)
			}
		}
		if strings.Index(output, ids[1]) > strings.Index(output, ids[0]) {
			t.Errorf("newest snapshot should be listed first:\n%s", output)
		}
	})

	t.Run("json output", func(t *testing.T) {
		resetSnapshotFlags(t)
		snapshotListJSON = true
		c := testConfig(t)
		ids := seedSnapshots(t, c, syncer.SnapshotLabel, 2)

		var buf bytes.Buffer
		if err := runSnapshotListWithWriter(&buf, c); err != nil {
			t.Fatalf("runSnapshotListWithWriter() error = %v", err)
		}

		var infos []snapshotInfoOutput
		if err := json.Unmarshal(buf.Bytes(), &infos); err != nil {
			t.Fatalf("output should be valid JSON: %v\nOutput:\n%s", err, buf.String())
		}
		if len(infos) != 2 {
			t.Fatalf("snapshots = %d, want 2", len(infos))
		}
		if infos[0].ID != ids[1] {
			t.Errorf("first entry = %s, want newest %s", infos[0].ID, ids[1])
		}
		if infos[0].Label != syncer.SnapshotLabel {
			t.Errorf("label = %q, want %q", infos[0].Label, syncer.SnapshotLabel)
		}
		if infos[0].FileCount != 3 {
			t.Errorf("file count = %d, want 3", infos[0].FileCount)
		}
		if infos[0].SizeBytes == 0 {
			t.Error("size should not be zero")
		}
	})
}

func TestRunSnapshotRestore(t *testing.T) {
	t.Run("restores most recent snapshot", func(t *testing.T) {
		resetSnapshotFlags(t)
		c := testConfig(t)
		ids := seedSnapshots(t, c, syncer.SnapshotLabel, 1)

		profile := filepath.Join(c.OnboardDir, "profiles", "clean.json")
		writeTestFile(t, profile, `{"edited":true}`)

		var buf bytes.Buffer
		if err := runSnapshotRestoreWithWriter(&buf, c, nil); err != nil {
			t.Fatalf("runSnapshotRestoreWithWriter() error = %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Using most recent snapshot: "+ids[0]) {
			t.Errorf("output = %q, want the picked snapshot reported", output)
		}
		if !strings.Contains(output, "✓ Restored on-board tree") {
			t.Errorf("output = %q, want the restore confirmation", output)
		}

		content, err := os.ReadFile(profile)
		if err != nil {
			t.Fatalf("reading restored profile: %v", err)
		}
		if string(content) != "{}" {
			t.Errorf("profile content = %q, want the snapshot version", content)
		}
	})

	t.Run("restores a specific snapshot by id", func(t *testing.T) {
		resetSnapshotFlags(t)
		c := testConfig(t)
		ids := seedSnapshots(t, c, syncer.SnapshotLabel, 1)

		// Change the tree, snapshot the changed state, then roll back to
		// the first snapshot by ID.
		profile := filepath.Join(c.OnboardDir, "profiles", "clean.json")
		writeTestFile(t, profile, `{"edited":true}`)

		later := time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC)
		mgr := snapshot.NewManager(
			snapshot.WithDir(c.Snapshot.Dir),
			snapshot.WithClock(func() time.Time { return later }),
		)
		if _, err := mgr.Create(syncer.SnapshotLabel, storage.NewDirRoot(c.OnboardDir),
			layout.ProfilesDir, layout.PluginsDir); err != nil {
			t.Fatalf("creating second snapshot: %v", err)
		}

		var buf bytes.Buffer
		if err := runSnapshotRestoreWithWriter(&buf, c, []string{ids[0]}); err != nil {
			t.Fatalf("runSnapshotRestoreWithWriter() error = %v", err)
		}

		if !strings.Contains(buf.String(), "Restoring 3 files from snapshot "+ids[0]) {
			t.Errorf("output = %q, want the file count reported", buf.String())
		}

		content, err := os.ReadFile(profile)
		if err != nil {
			t.Fatalf("reading restored profile: %v", err)
		}
		if string(content) != "{}" {
			t.Errorf("profile content = %q, want the first snapshot version", content)
		}
	})

	t.Run("no snapshots errors", func(t *testing.T) {
		resetSnapshotFlags(t)
		c := testConfig(t)

		var buf bytes.Buffer
		err := runSnapshotRestoreWithWriter(&buf, c, nil)
		if err == nil || !strings.Contains(err.Error(), "no pre-load snapshots found") {
			t.Errorf("error = %v, want no snapshots reported", err)
		}
	})
}

func TestRunSnapshotPrune(t *testing.T) {
	t.Run("nothing to prune", func(t *testing.T) {
		resetSnapshotFlags(t)
		c := testConfig(t)

		var buf bytes.Buffer
		if err := runSnapshotPruneWithWriter(&buf, c, 5); err != nil {
			t.Fatalf("runSnapshotPruneWithWriter() error = %v", err)
		}
		if !strings.Contains(buf.String(), "No snapshots to prune") {
			t.Errorf("output = %q, want nothing to prune", buf.String())
		}
	})

	t.Run("prunes beyond keep", func(t *testing.T) {
		resetSnapshotFlags(t)
		c := testConfig(t)
		ids := seedSnapshots(t, c, syncer.SnapshotLabel, 3)

		var buf bytes.Buffer
		if err := runSnapshotPruneWithWriter(&buf, c, 1); err != nil {
			t.Fatalf("runSnapshotPruneWithWriter() error = %v", err)
		}

		if !strings.Contains(buf.String(), "Removed 2 old snapshot(s), keeping the 1 most recent") {
			t.Errorf("output = %q, want the prune summary", buf.String())
		}

		remaining, err := newSnapshots(c).List(syncer.SnapshotLabel)
		if err != nil {
			t.Fatalf("listing after prune: %v", err)
		}
		if len(remaining) != 1 || remaining[0].ID != ids[2] {
			t.Errorf("remaining = %v, want only the newest %s", remaining, ids[2])
		}
	})

	t.Run("negative keep uses configured retention", func(t *testing.T) {
		resetSnapshotFlags(t)
		c := testConfig(t)
		c.Snapshot.Retention = 2
		seedSnapshots(t, c, syncer.SnapshotLabel, 3)

		var buf bytes.Buffer
		if err := runSnapshotPruneWithWriter(&buf, c, -1); err != nil {
			t.Fatalf("runSnapshotPruneWithWriter() error = %v", err)
		}

		if !strings.Contains(buf.String(), "keeping the 2 most recent") {
			t.Errorf("output = %q, want the configured retention applied", buf.String())
		}
	})

	t.Run("keep zero removes all", func(t *testing.T) {
		resetSnapshotFlags(t)
		c := testConfig(t)
		seedSnapshots(t, c, syncer.SnapshotLabel, 2)

		var buf bytes.Buffer
		if err := runSnapshotPruneWithWriter(&buf, c, 0); err != nil {
			t.Fatalf("runSnapshotPruneWithWriter() error = %v", err)
		}

		if !strings.Contains(buf.String(), "Removed 2 old snapshot(s)") {
			t.Errorf("output = %q, want both snapshots removed", buf.String())
		}
	})
}

func TestSnapshotCommand_Metadata(t *testing.T) {
	if snapshotCmd.Use != "snapshot" {
		t.Errorf("Use = %q, want %q", snapshotCmd.Use, "snapshot")
	}

	want := map[string]bool{"list": false, "restore": false, "prune": false}
	for _, sub := range snapshotCmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
