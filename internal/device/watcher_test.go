package device

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/multifx/pedalctl/internal/logging"
)

// startWatch runs w.Watch on its own goroutine and returns a channel of
// detected devices plus a stop function that blocks until the watcher has
// exited, so no callback or log write can outlive the test.
func startWatch(t *testing.T, w *Watcher) (<-chan *Device, func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	found := make(chan *Device, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Watch(ctx, func(_ context.Context, dev *Device) {
			select {
			case found <- dev:
			default:
			}
		})
	}()

	return found, func() {
		cancel()
		<-done
	}
}

func TestWatcher_DetectsPresentDevice(t *testing.T) {
	mount := t.TempDir()
	if err := os.MkdirAll(filepath.Join(mount, "STICK", "multifx"), 0o755); err != nil {
		t.Fatal(err)
	}

	s := NewScanner([]string{mount}, "multifx", WithLogger(logging.ForTest(t)))
	w := NewWatcher(s, 10*time.Millisecond, 200*time.Millisecond, logging.ForTest(t))

	found, stop := startWatch(t, w)
	defer stop()

	select {
	case dev := <-found:
		want := filepath.Join(mount, "STICK", "multifx")
		if dev.Path != want {
			t.Errorf("Path = %q, want %q", dev.Path, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("present device was never reported")
	}
}

func TestWatcher_DetectsHotplug(t *testing.T) {
	mount := t.TempDir()

	s := NewScanner([]string{mount}, "multifx", WithLogger(logging.ForTest(t)))
	w := NewWatcher(s, 10*time.Millisecond, 200*time.Millisecond, logging.ForTest(t))

	found, stop := startWatch(t, w)
	defer stop()

	// Simulate media appearing after the watch has started. The polling
	// fallback reports it even if no create event is delivered.
	if err := os.MkdirAll(filepath.Join(mount, "STICK", "multifx"), 0o755); err != nil {
		t.Fatal(err)
	}

	select {
	case dev := <-found:
		want := filepath.Join(mount, "STICK", "multifx")
		if dev.Path != want {
			t.Errorf("Path = %q, want %q", dev.Path, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("hotplugged device was never reported")
	}
}

func TestWatcher_ReportsSameDeviceOnce(t *testing.T) {
	mount := t.TempDir()
	if err := os.MkdirAll(filepath.Join(mount, "STICK", "multifx"), 0o755); err != nil {
		t.Fatal(err)
	}

	s := NewScanner([]string{mount}, "multifx", WithLogger(logging.ForTest(t)))
	w := NewWatcher(s, 10*time.Millisecond, 50*time.Millisecond, logging.ForTest(t))

	found, stop := startWatch(t, w)

	<-found
	// Let several poll intervals pass; an unchanged device must not fire
	// the callback again.
	time.Sleep(300 * time.Millisecond)
	stop()

	select {
	case dev := <-found:
		t.Errorf("unchanged device reported again: %s", dev.Path)
	default:
	}
}
